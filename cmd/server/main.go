package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/config"
	"github.com/stefa168/ottimizzatore-lauree/internal/api/handler"
	"github.com/stefa168/ottimizzatore-lauree/internal/api/router"
	"github.com/stefa168/ottimizzatore-lauree/internal/repository"
	"github.com/stefa168/ottimizzatore-lauree/internal/service"
	"github.com/stefa168/ottimizzatore-lauree/internal/solver"
	"github.com/stefa168/ottimizzatore-lauree/pkg/database"
	"github.com/stefa168/ottimizzatore-lauree/pkg/jwt"
	applogger "github.com/stefa168/ottimizzatore-lauree/pkg/logger"
	"github.com/stefa168/ottimizzatore-lauree/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("auth_enabled", cfg.Auth.Enabled),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级为无缓存、无限流运行）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，委员会缓存与求解限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器（未启用认证时为 nil）
	var jwtMgr *jwt.Manager
	if cfg.Auth.Enabled {
		jwtMgr = jwt.NewManager(&cfg.Auth)
	}

	// 6. 依赖注入: Repository → Runner → Service → Handler
	repo := repository.NewRepository(db)
	cache := service.NewRedisCommissionCache(rdb, cfg.Redis.CommissionTTL, logger)

	runner := solver.NewRunner(solver.RunnerConfig{
		WorkDir:   cfg.Solver.WorkDir,
		Workers:   cfg.Solver.Workers,
		QueueSize: cfg.Solver.QueueSize,
	},
		&solver.CommandExecutor{Executables: cfg.Solver.Executables},
		service.NewExecutionStore(repo, cache),
		applogger.Component(logger, "solver"),
	)
	runCtx, stopRunner := context.WithCancel(context.Background())
	defer stopRunner()
	runner.Start(runCtx)

	svc := service.NewService(cfg, repo, cache, runner, logger)
	h := handler.NewHandler(svc)

	// 6.1 上次进程退出时遗留的运行锁
	sweepCtx, sweepCancel := context.WithTimeout(context.Background(), 30*time.Second)
	anomalies, err := svc.Solve.SweepStalled(sweepCtx)
	sweepCancel()
	if err != nil {
		logger.Error("巡检运行锁失败", zap.Error(err))
	} else if len(anomalies) > 0 {
		logger.Warn("存在停滞的配置，需人工处理", zap.Int("count", len(anomalies)))
	}

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, runner.Stats, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止求解执行器：正在运行的求解被取消，并记录为失败的执行
	runner.Stop()

	// 关闭数据库连接
	if err := database.Close(db); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
