package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stefa168/ottimizzatore-lauree/pkg/redis"
	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// rdb 为 nil 时降级放行；用于限制求解提交频率
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", GetCaller(c), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, 10004, "求解提交过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetCaller 限流维度：已认证时为 subject，否则为客户端 IP
func GetCaller(c *gin.Context) string {
	if v, ok := c.Get("subject"); ok {
		if s, _ := v.(string); s != "" {
			return "sub:" + s
		}
	}
	return "ip:" + c.ClientIP()
}
