package middleware

import (
	"net/http"
	"strconv"

	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequireSelfOrAdmin lets a request through when the user id in the path
// parameter matches the caller, or when the caller is an admin
func RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			unauthorized(c, "Authentication required")
			return
		}

		if c.GetString("role") == "admin" {
			c.Next()
			return
		}

		pathID, err := strconv.ParseUint(c.Param(param), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+param)
			c.Abort()
			return
		}

		if id, ok := userID.(uint); !ok || id != uint(pathID) {
			utils.ErrorResponse(c, http.StatusForbidden, "Access denied: you can only access your own resources")
			c.Abort()
			return
		}

		c.Next()
	}
}
