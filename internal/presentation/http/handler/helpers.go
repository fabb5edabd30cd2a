package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/dto/response"
)

// GetEmployeeID extracts the authenticated employee ID from the Gin context
func GetEmployeeID(c *gin.Context) *uuid.UUID {
	idVal, exists := c.Get("employee_id")
	if !exists {
		return nil
	}
	id, ok := idVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// requireEmployee writes a 401 and returns false when no employee is authenticated
func requireEmployee(c *gin.Context) (uuid.UUID, bool) {
	id := GetEmployeeID(c)
	if id == nil {
		response.Unauthorized(c, "Employee not authenticated")
		return uuid.Nil, false
	}
	return *id, true
}

// pathID parses a UUID path parameter, writing a 400 on failure
func pathID(c *gin.Context, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// transitionMessage appends a hint when post-commit side effects failed
func transitionMessage(base string, warnings []string) string {
	if len(warnings) > 0 {
		return base + " with warnings"
	}
	return base
}
