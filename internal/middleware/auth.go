package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/auth"
	apierrors "github.com/socialhub-app/backend/internal/errors"
	"github.com/socialhub-app/backend/internal/util"
)

// Auth validates the Bearer token and stores the authenticated user on the context.
func Auth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			util.RespondError(c, apierrors.Unauthorized("authentication required"))
			c.Abort()
			return
		}

		user, err := authService.ValidateToken(token)
		if err != nil {
			util.RespondError(c, apierrors.Unauthorized("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// OptionalAuth resolves the user when a valid token is present but never rejects.
// Handlers that personalize public responses (hasLiked, isFollowing) use this.
func OptionalAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if user, err := authService.ValidateToken(token); err == nil {
				c.Set("user", user)
				c.Set("user_id", user.ID)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
