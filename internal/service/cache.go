package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	pkgredis "github.com/stefa168/ottimizzatore-lauree/pkg/redis"
)

// CommissionCache 委员会详情缓存
// 实现须容忍后端不可用：读失败视为未命中，写失败只记录日志
type CommissionCache interface {
	Get(ctx context.Context, id int64) (*model.Commission, bool)
	Set(ctx context.Context, commission *model.Commission)
	Evict(ctx context.Context, id int64)
}

// noopCache 未配置缓存时使用
type noopCache struct{}

func (noopCache) Get(context.Context, int64) (*model.Commission, bool) { return nil, false }
func (noopCache) Set(context.Context, *model.Commission) {}
func (noopCache) Evict(context.Context, int64) {}

type redisCommissionCache struct {
	rdb    *pkgredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCommissionCache 基于 Redis 的委员会缓存；rdb 为 nil 时返回空实现
func NewRedisCommissionCache(rdb *pkgredis.Client, ttl time.Duration, logger *zap.Logger) CommissionCache {
	if rdb == nil {
		return noopCache{}
	}
	return &redisCommissionCache{rdb: rdb, ttl: ttl, logger: logger}
}

func commissionKey(id int64) string {
	return fmt.Sprintf("commission:%d", id)
}

func (c *redisCommissionCache) Get(ctx context.Context, id int64) (*model.Commission, bool) {
	var commission model.Commission
	found, err := c.rdb.GetJSON(ctx, commissionKey(id), &commission)
	if err != nil {
		c.logger.Warn("读取委员会缓存失败", zap.Int64("commission_id", id), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &commission, true
}

func (c *redisCommissionCache) Set(ctx context.Context, commission *model.Commission) {
	if err := c.rdb.SetJSON(ctx, commissionKey(commission.ID), commission, c.ttl); err != nil {
		c.logger.Warn("写入委员会缓存失败", zap.Int64("commission_id", commission.ID), zap.Error(err))
	}
}

func (c *redisCommissionCache) Evict(ctx context.Context, id int64) {
	if err := c.rdb.Delete(ctx, commissionKey(id)); err != nil {
		c.logger.Warn("清除委员会缓存失败", zap.Int64("commission_id", id), zap.Error(err))
	}
}
