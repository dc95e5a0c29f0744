package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/models"
)

// CurrentUser extracts the authenticated user from the gin context. On a
// missing or malformed entry it responds 401/500 itself and returns false.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorBody{Error: "user not authenticated"})
		return nil, false
	}
	userPtr, ok := user.(*models.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorBody{Error: "invalid user data in context"})
		return nil, false
	}
	return userPtr, true
}
