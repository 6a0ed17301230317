package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

// MustGetIDParam 解析路径中的正整数 ID
// 解析失败时写入 400 响应并返回 false，调用方应直接 return
func MustGetIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, name+" 必须为正整数")
		return 0, false
	}
	return id, true
}

// GetSubject 返回 JWTAuth 注入的操作人；未启用认证时为空字符串
func GetSubject(c *gin.Context) string {
	v, exists := c.Get("subject")
	if !exists {
		return ""
	}
	s, _ := v.(string)
	return s
}
