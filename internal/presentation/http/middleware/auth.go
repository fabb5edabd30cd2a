package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/hospitality-pos/pkg/utils"
)

// AuthMiddleware creates a JWT authentication middleware. The token identifies
// the employee acting at the till.
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

		c.Set("employee_id", claims.EmployeeID)
		c.Set("employee_name", claims.Name)
		if claims.SalesPointID != nil {
			c.Set("sales_point_id", *claims.SalesPointID)
		}

		c.Next()
	}
}
