package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"snipnet/internal/utils"
)

// context key，下游 handler 用 c.Get 读取
const (
	CtxUserID   = "auth_user_id"
	CtxUsername = "auth_username"
)

// Auth 校验 Authorization 头里的 Bearer token。
// 校验通过后把用户标识写进请求上下文。
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "malformed authorization header"})
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Next()
	}
}
