package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/database"
	"github.com/socialhub-app/backend/internal/models"
	"github.com/socialhub-app/backend/internal/util"
	"gorm.io/gorm"
)

// FollowUser makes the caller follow the target user
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	targetID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	if targetID == user.ID {
		util.RespondBadRequest(c, "you cannot follow yourself")
		return
	}

	var target models.User
	if err := database.DB.First(&target, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "user")
			return
		}
		util.RespondInternalError(c, "failed to load user")
		return
	}

	var existing models.Follow
	err := database.DB.Where("follower_id = ? AND followed_id = ?", user.ID, targetID).
		First(&existing).Error
	if err == nil {
		util.RespondConflict(c, "already following this user")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondInternalError(c, "failed to check follow state")
		return
	}

	follow := models.Follow{
		FollowerID: user.ID,
		FollowedID: targetID,
	}
	if err := database.DB.Create(&follow).Error; err != nil {
		util.RespondInternalError(c, "failed to follow user")
		return
	}

	go h.notifier.Notify(models.NotificationFollow, targetID, user.ID, nil, user.Username)

	var followerCount int64
	database.DB.Model(&models.Follow{}).Where("followed_id = ?", targetID).Count(&followerCount)

	c.JSON(http.StatusCreated, gin.H{
		"message":       "now following " + target.Username,
		"followerCount": followerCount,
	})
}

// UnfollowUser removes the caller's follow of the target user
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	targetID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	result := database.DB.Where("follower_id = ? AND followed_id = ?", user.ID, targetID).
		Delete(&models.Follow{})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to unfollow user")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "follow relationship")
		return
	}

	var followerCount int64
	database.DB.Model(&models.Follow{}).Where("followed_id = ?", targetID).Count(&followerCount)

	c.JSON(http.StatusOK, gin.H{
		"message":       "unfollowed",
		"followerCount": followerCount,
	})
}

// GetFollowers lists the users following the target user
// GET /api/v1/users/:id/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	targetID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	params := util.ParsePageParams(c, 20)

	var total int64
	if err := database.DB.Model(&models.Follow{}).
		Where("followed_id = ?", targetID).Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to count followers")
		return
	}

	var follows []models.Follow
	if err := database.DB.Preload("Follower").
		Where("followed_id = ?", targetID).
		Order("created_at desc").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&follows).Error; err != nil {
		util.RespondInternalError(c, "failed to load followers")
		return
	}

	followers := make([]models.PublicUser, len(follows))
	for i := range follows {
		followers[i] = follows[i].Follower.Public()
	}

	c.JSON(http.StatusOK, util.NewListResponse(followers, total, params))
}

// GetFollowing lists the users the target user follows
// GET /api/v1/users/:id/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	targetID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	params := util.ParsePageParams(c, 20)

	var total int64
	if err := database.DB.Model(&models.Follow{}).
		Where("follower_id = ?", targetID).Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to count following")
		return
	}

	var follows []models.Follow
	if err := database.DB.Preload("Followed").
		Where("follower_id = ?", targetID).
		Order("created_at desc").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&follows).Error; err != nil {
		util.RespondInternalError(c, "failed to load following")
		return
	}

	following := make([]models.PublicUser, len(follows))
	for i := range follows {
		following[i] = follows[i].Followed.Public()
	}

	c.JSON(http.StatusOK, util.NewListResponse(following, total, params))
}
