package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"debug": gormlogger.Info,
		"info":  gormlogger.Warn,
		"warn":  gormlogger.Warn,
		"error": gormlogger.Error,
	}
	for in, want := range tests {
		if got := gormLogLevel(in); got != want {
			t.Errorf("gormLogLevel(%q) 期望 %v，实际=%v", in, want, got)
		}
	}
}

func TestZapGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := newGormLogger(zap.New(core), gormlogger.Warn)
	fc := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	l.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), fc, nil)
	if n := logs.Len(); n != 0 {
		t.Fatalf("未找到记录与普通查询在 warn 级别不应输出，实际=%d", n)
	}

	l.Trace(ctx, time.Now(), fc, errors.New("boom"))
	if n := logs.FilterMessage("SQL 执行失败").Len(); n != 1 {
		t.Errorf("期望 1 条错误日志，实际=%d", n)
	}

	l.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	if n := logs.FilterMessage("慢查询").Len(); n != 1 {
		t.Errorf("期望 1 条慢查询日志，实际=%d", n)
	}

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), fc, errors.New("boom"))
	if n := logs.FilterMessage("SQL 执行失败").Len(); n != 1 {
		t.Errorf("Silent 模式不应输出，实际错误日志数=%d", n)
	}
}

func TestMigrateLogger_Verbose(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	if (migrateLogger{logger: zap.New(core)}).Verbose() {
		t.Error("info 级别下不应开启 verbose")
	}
	core, _ = observer.New(zap.DebugLevel)
	if !(migrateLogger{logger: zap.New(core)}).Verbose() {
		t.Error("debug 级别下应开启 verbose")
	}
}
