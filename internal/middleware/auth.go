package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AccountChecker reports whether the account behind a token still exists
type AccountChecker interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}

// AuthMiddleware validates the JWT access token from the Authorization header.
// With a non-nil accounts checker, tokens of deleted accounts are rejected.
func AuthMiddleware(accounts AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Not authenticated")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
			return
		}

		claims, err := utils.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			unauthorized(c, "Could not validate credentials")
			return
		}

		if accounts != nil {
			exists, err := accounts.UserExists(c.Request.Context(), claims.UserID)
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "account lookup failed", "user_id", claims.UserID, "error", err)
				utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
				c.Abort()
				return
			}
			if !exists {
				unauthorized(c, "Could not validate credentials")
				return
			}
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email())
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole rejects callers whose role claim is not among roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			unauthorized(c, "Authentication required")
			return
		}

		if r, ok := role.(string); !ok || !slices.Contains(roles, r) {
			utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdmin checks if the authenticated user has admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole("admin")
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	utils.ErrorResponse(c, http.StatusUnauthorized, message)
	c.Abort()
}
