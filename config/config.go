package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Solver   SolverConfig   `mapstructure:"solver"`
	Poller   PollerConfig   `mapstructure:"poller"`
	Client   ClientConfig   `mapstructure:"client"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port          int        `mapstructure:"port"`
	BaseURL       string     `mapstructure:"base_url"`
	MaxUploadSize int64      `mapstructure:"max_upload_size"` // 名册上传最大字节数
	CORS          CORSConfig `mapstructure:"cors"`

	SolveRateLimit  int           `mapstructure:"solve_rate_limit"` // 每个调用方窗口内允许的求解提交次数
	SolveRateWindow time.Duration `mapstructure:"solve_rate_window"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr          string        `mapstructure:"addr"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	CommissionTTL time.Duration `mapstructure:"commission_ttl"` // 委员会详情缓存有效期
}

// AuthConfig JWT 认证配置
// Token 由外部身份系统签发；Enabled=false 时写操作不做鉴权
type AuthConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string   `mapstructure:"level"`
	Format string   `mapstructure:"format"`
	Output []string `mapstructure:"output"` // 为空时使用 zap 默认输出（stderr）
}

// SolverConfig 外部求解器执行配置
type SolverConfig struct {
	WorkDir      string            `mapstructure:"work_dir"`      // 每次求解的输入/输出目录根路径
	Workers      int               `mapstructure:"workers"`       // 并发求解任务数
	QueueSize    int               `mapstructure:"queue_size"`    // 待执行任务队列长度
	Executables  map[string]string `mapstructure:"executables"`   // solver 名称 → 适配器可执行文件
	StallTimeout time.Duration     `mapstructure:"stall_timeout"` // 加锁后无执行记录超过该时长视为异常
}

// PollerConfig 状态轮询配置
type PollerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// ClientConfig plannerctl 访问后端的配置
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Token   string        `mapstructure:"token"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_upload_size", 10<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.solve_rate_limit", 10)
	v.SetDefault("server.solve_rate_window", "1m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "ottimizzatore")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Europe/Rome")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.commission_ttl", "10m")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.access_token_ttl", "12h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("solver.work_dir", ".temp")
	v.SetDefault("solver.workers", 2)
	v.SetDefault("solver.queue_size", 16)
	v.SetDefault("solver.executables", map[string]string{
		"cplex":  "solve-cplex",
		"gurobi": "solve-gurobi",
		"glpk":   "solve-glpk",
	})
	v.SetDefault("solver.stall_timeout", "6h")

	v.SetDefault("poller.interval", "5s")

	v.SetDefault("client.base_url", "http://localhost:8080/api/v1")
	v.SetDefault("client.timeout", "15s")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.Enabled {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("配置校验失败: 启用认证时 auth.jwt_secret 不能为空")
		}
		if len(c.Auth.JWTSecret) < 16 {
			return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Solver.Workers <= 0 {
		return fmt.Errorf("配置校验失败: solver.workers 必须大于 0")
	}
	if c.Poller.Interval <= 0 {
		return fmt.Errorf("配置校验失败: poller.interval 必须大于 0")
	}
	return nil
}
