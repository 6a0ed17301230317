package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders 安全响应头
// 接口只返回 JSON 与导出附件：禁止嵌入与 MIME 嗅探，响应不进入共享缓存
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}
