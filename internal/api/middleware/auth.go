package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stefa168/ottimizzatore-lauree/pkg/jwt"
	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

// RoleStaff 教务人员，可执行写操作
const RoleStaff = "staff"

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token；jwtMgr 为 nil 时放行（未启用认证）
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtMgr == nil {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			msg := "Token 无效"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token 已过期"
			}
			response.Unauthorized(c, 10002, msg)
			c.Abort()
			return
		}

		c.Set("subject", claims.Subject)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 上下文中没有 role（未启用认证）时放行
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.Next()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
