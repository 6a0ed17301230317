package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// 声明的 Content-Length 超限时直接返回 413；未声明长度的请求在读取时由 MaxBytesReader 截断，
// 处理器通过 IsBodyTooLarge 识别该错误
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// IsBodyTooLarge 判断读取请求体时的错误是否由大小限制引起
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
