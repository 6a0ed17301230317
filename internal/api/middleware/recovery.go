package middleware

import (
	"errors"
	"net"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

// Recovery 捕获处理器 panic，记录堆栈后返回统一的 500 响应
// 客户端已断开（broken pipe）时只记录日志，不再写响应
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := []zap.Field{
				zap.Any("panic", rec),
				zap.String("route", c.FullPath()),
				zap.String("request_id", GetRequestID(c)),
				zap.Stack("stack"),
			}
			if err, ok := rec.(error); ok && isBrokenPipe(err) {
				logger.Warn("客户端连接已断开", fields...)
				c.Abort()
				return
			}
			logger.Error("处理请求时发生 panic", fields...)
			response.InternalError(c)
			c.Abort()
		}()
		c.Next()
	}
}

func isBrokenPipe(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !errors.As(opErr, &sysErr) {
		return false
	}
	msg := strings.ToLower(sysErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
