package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/zombie-walk/internal/service"
)

// AuthMiddleware JWT认证中间件
type AuthMiddleware struct {
	authService service.AuthService
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(authService service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth 需要认证的中间件
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.authenticate(c)
		if !ok {
			return
		}
		m.setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证的中间件（不强制要求登录）
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := m.extractToken(c); token != "" {
			if claims, err := m.authService.ValidateToken(c.Request.Context(), token); err == nil {
				m.setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole 需要特定角色的中间件
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.authenticate(c)
		if !ok {
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				m.setClaims(c, claims)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"code":    "INSUFFICIENT_PERMISSION",
			"message": "权限不足",
		})
		c.Abort()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*service.TokenClaims, bool) {
	token := m.extractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "NO_TOKEN",
			"message": "缺少认证令牌",
		})
		c.Abort()
		return nil, false
	}

	claims, err := m.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "INVALID_TOKEN",
			"message": "无效的令牌",
		})
		c.Abort()
		return nil, false
	}
	return claims, true
}

func (m *AuthMiddleware) setClaims(c *gin.Context, claims *service.TokenClaims) {
	c.Set("userID", claims.UserID)
	c.Set("username", claims.Username)
	c.Set("role", claims.Role)
	c.Set("tokenID", claims.TokenID)
}

// extractToken 从 Authorization 头或 query 参数提取令牌
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	// WebSocket握手无法自定义头，降级允许query传递
	return c.Query("token")
}

// GetUserID 从上下文读取已认证的用户ID
func GetUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
