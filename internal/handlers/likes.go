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

// LikePost records the caller's like on a post
// POST /api/v1/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var post models.Post
	if err := database.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "post")
			return
		}
		util.RespondInternalError(c, "failed to load post")
		return
	}

	var existing models.PostLike
	err := database.DB.Where("user_id = ? AND post_id = ?", user.ID, postID).
		First(&existing).Error
	if err == nil {
		util.RespondConflict(c, "you already liked this post")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondInternalError(c, "failed to check like state")
		return
	}

	like := models.PostLike{
		UserID: user.ID,
		PostID: postID,
	}
	if err := database.DB.Create(&like).Error; err != nil {
		util.RespondInternalError(c, "failed to like post")
		return
	}

	// Liking your own post is allowed but not announced
	if post.UserID != user.ID {
		pid := postID
		go h.notifier.Notify(models.NotificationLike, post.UserID, user.ID, &pid, user.Username)
	}

	var likeCount int64
	database.DB.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&likeCount)

	c.JSON(http.StatusCreated, gin.H{
		"message":   "post liked",
		"likeCount": likeCount,
	})
}

// UnlikePost removes the caller's like from a post
// DELETE /api/v1/posts/:id/like
func (h *Handlers) UnlikePost(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	result := database.DB.Where("user_id = ? AND post_id = ?", user.ID, postID).
		Delete(&models.PostLike{})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to unlike post")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "like")
		return
	}

	var likeCount int64
	database.DB.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&likeCount)

	c.JSON(http.StatusOK, gin.H{
		"message":   "like removed",
		"likeCount": likeCount,
	})
}

// GetPostLikes lists the users who liked a post
// GET /api/v1/posts/:id/likes
func (h *Handlers) GetPostLikes(c *gin.Context) {
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var post models.Post
	if err := database.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "post")
			return
		}
		util.RespondInternalError(c, "failed to load post")
		return
	}

	params := util.ParsePageParams(c, 20)

	var total int64
	if err := database.DB.Model(&models.PostLike{}).
		Where("post_id = ?", postID).Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to count likes")
		return
	}

	var likes []models.PostLike
	if err := database.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at desc").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&likes).Error; err != nil {
		util.RespondInternalError(c, "failed to load likes")
		return
	}

	likers := make([]models.PublicUser, len(likes))
	for i := range likes {
		likers[i] = likes[i].User.Public()
	}

	c.JSON(http.StatusOK, util.NewListResponse(likers, total, params))
}
