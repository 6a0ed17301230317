package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/config"
	"github.com/stefa168/ottimizzatore-lauree/internal/api/handler"
	"github.com/stefa168/ottimizzatore-lauree/internal/api/middleware"
	"github.com/stefa168/ottimizzatore-lauree/pkg/jwt"
	"github.com/stefa168/ottimizzatore-lauree/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// jwtMgr 为 nil 表示未启用认证；rdb 为 nil 时不做限流；solverStats 为 nil 时健康检查不带队列状态
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	solverStats func() map[string]interface{},
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxUploadSize))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if solverStats != nil {
			body["solver"] = solverStats()
		}
		c.JSON(http.StatusOK, body)
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 委员会模块
		v1.GET("/commission", h.Commission.ListPreviews)
		v1.GET("/commissions", h.Commission.ListCommissions)
		v1.POST("/upload", middleware.RoleAuth(middleware.RoleStaff), h.Commission.Upload)

		commission := v1.Group("/commission/:id")
		{
			commission.GET("", h.Commission.GetCommission)
			commission.DELETE("", middleware.RoleAuth(middleware.RoleStaff), h.Commission.DeleteCommission)
			commission.GET("/professors", h.Commission.ListProfessors)

			// 优化配置模块
			commission.GET("/configuration", h.Configuration.ListConfigurations)
			commission.POST("/configuration", middleware.RoleAuth(middleware.RoleStaff), h.Configuration.CreateConfiguration)
			commission.GET("/configuration/:cid", h.Configuration.GetConfiguration)
			commission.PUT("/configuration/:cid", middleware.RoleAuth(middleware.RoleStaff), h.Configuration.UpdateConfiguration)
			commission.GET("/configuration/:cid/status", h.Configuration.GetStatus)

			// 导出模块
			commission.GET("/configuration/:cid/export.xlsx", h.Export.ExportXLSX)
			commission.GET("/configuration/:cid/export.ics", h.Export.ExportICS)

			// 求解
			commission.POST("/solve/:cid",
				middleware.RoleAuth(middleware.RoleStaff),
				middleware.RateLimit(rdb, cfg.Server.SolveRateLimit, cfg.Server.SolveRateWindow),
				h.Configuration.Solve,
			)
		}

		// 教授模块
		v1.PUT("/professor/:id", middleware.RoleAuth(middleware.RoleStaff), h.Professor.UpdateProfessor)
	}

	return r
}
