package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/database"
	"github.com/socialhub-app/backend/internal/models"
	"github.com/socialhub-app/backend/internal/util"
	"gorm.io/gorm"
)

// profileResponse is a user plus their aggregate counts
type profileResponse struct {
	models.User
	PostCount      int64 `json:"postCount"`
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`
}

func buildProfile(user *models.User) profileResponse {
	resp := profileResponse{User: *user}
	database.DB.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&resp.PostCount)
	database.DB.Model(&models.Follow{}).Where("followed_id = ?", user.ID).Count(&resp.FollowerCount)
	database.DB.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&resp.FollowingCount)
	return resp
}

// GetProfile returns the authenticated user's profile
// GET /api/v1/users/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, buildProfile(user))
}

// GetUserProfile returns another user's profile with counts
// GET /api/v1/users/:id
func (h *Handlers) GetUserProfile(c *gin.Context) {
	userID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "user")
			return
		}
		util.RespondInternalError(c, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, buildProfile(&user))
}

// UpdateProfile updates the authenticated user's profile fields
// PUT /api/v1/users/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	var req struct {
		Username   *string `json:"username" binding:"omitempty,min=3,max=30"`
		Bio        *string `json:"bio"`
		ProfilePic []byte  `json:"profilePic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			util.RespondBadRequest(c, "username cannot be blank")
			return
		}

		var existing models.User
		err := database.DB.Where("LOWER(username) = LOWER(?) AND id <> ?", username, user.ID).
			First(&existing).Error
		if err == nil {
			util.RespondConflict(c, "username already taken")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondInternalError(c, "failed to check username")
			return
		}
		updates["username"] = username
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if len(req.ProfilePic) > 0 {
		updates["profile_pic"] = req.ProfilePic
	}

	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	if err := database.DB.Model(user).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, buildProfile(user))
}

// SearchUsers finds users by username substring
// GET /api/v1/users/search?q=...
func (h *Handlers) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		util.RespondBadRequest(c, "search query is required")
		return
	}

	params := util.ParsePageParams(c, 20)

	var total int64
	base := database.DB.Model(&models.User{}).
		Where("LOWER(username) LIKE LOWER(?)", "%"+query+"%")
	if err := base.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to search users")
		return
	}

	var users []models.User
	if err := base.
		Order("username asc").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&users).Error; err != nil {
		util.RespondInternalError(c, "failed to search users")
		return
	}

	results := make([]models.PublicUser, len(users))
	for i := range users {
		results[i] = users[i].Public()
	}

	c.JSON(http.StatusOK, util.NewListResponse(results, total, params))
}
