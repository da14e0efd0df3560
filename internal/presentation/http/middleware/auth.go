package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/creance-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/creance-pos/pkg/utils"
)

// Context keys set for authenticated operators
const (
	UserIDKey    = "user_id"
	UserNameKey  = "user_name"
	UserEmailKey = "user_email"
	UserRolesKey = "user_roles"
)

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserNameKey, claims.Name)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRolesKey, claims.Roles)

		c.Next()
	}
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles, ok := c.Get(UserRolesKey)
		if !ok {
			response.ErrorWithCode(c, 403, "Access denied")
			c.Abort()
			return
		}
		list, _ := userRoles.([]string)
		for _, have := range list {
			for _, want := range roles {
				if have == want {
					c.Next()
					return
				}
			}
		}
		response.ErrorWithCode(c, 403, "Insufficient role privileges")
		c.Abort()
	}
}
