package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stefa168/ottimizzatore-lauree/config"
)

// NewLogger 根据配置初始化 Zap 日志实例
// format: json | console | auto（stderr 为终端时用 console，否则 json）
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	if useConsole(cfg.Format) {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "time"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.Output) > 0 {
		zapCfg.OutputPaths = cfg.Output
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志器失败: %w", err)
	}
	return logger, nil
}

func useConsole(format string) bool {
	switch format {
	case "console":
		return true
	case "auto":
		fd := os.Stderr.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	default:
		return false
	}
}

// Component 为后台组件（求解器、轮询器）派生带名称的子日志器
func Component(l *zap.Logger, name string, fields ...zap.Field) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return l.Named(name).With(fields...)
}
