package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/groundwork-hq/groundwork-backend/internal/common"
	"github.com/groundwork-hq/groundwork-backend/internal/domain"
	"github.com/groundwork-hq/groundwork-backend/pkg/jwt"
)

// JWTAuth JWT authentication middleware
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, 401, "Missing authorization header", nil)
			c.Abort()
			return
		}

		// 2. Parse Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, 401, "Invalid authorization header format", nil)
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 3. Verify token
		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, 401, "Token expired", err)
			} else {
				common.ErrorResponse(c, 401, "Invalid token", err)
			}
			c.Abort()
			return
		}

		// 4. Store user info in context
		c.Set("userUUID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("level", claims.Level)

		c.Next()
	}
}

// OptionalJWTAuth verifies a token when present but lets anonymous requests through
func OptionalJWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}
		if claims, err := jwtManager.VerifyToken(parts[1]); err == nil {
			c.Set("userUUID", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("level", claims.Level)
		}
		c.Next()
	}
}

// AdminOnly requires an authenticated user at or above the admin level
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserLevel(c) < domain.AdminLevel {
			common.ErrorResponse(c, 403, "Admin privileges required", common.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserUUID extracts user UUID from context
func GetUserUUID(c *gin.Context) string {
	userUUID, exists := c.Get("userUUID")
	if !exists {
		return ""
	}
	if str, ok := userUUID.(string); ok {
		return str
	}
	return ""
}

// GetUserLevel extracts user level from context
func GetUserLevel(c *gin.Context) int {
	level, exists := c.Get("level")
	if !exists {
		return 0
	}
	if lvl, ok := level.(int); ok {
		return lvl
	}
	return 0
}

// GetUsername extracts username from context
func GetUsername(c *gin.Context) string {
	username, exists := c.Get("username")
	if !exists {
		return ""
	}
	if str, ok := username.(string); ok {
		return str
	}
	return ""
}
