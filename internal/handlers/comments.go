package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/database"
	"github.com/socialhub-app/backend/internal/logger"
	"github.com/socialhub-app/backend/internal/models"
	"github.com/socialhub-app/backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateComment adds a comment to a post
// POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		util.RespondBadRequest(c, "comment content is required")
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

	comment := models.Comment{
		PostID:  postID,
		UserID:  user.ID,
		Content: req.Content,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		util.RespondInternalError(c, "failed to create comment")
		return
	}

	if err := database.DB.Preload("User").First(&comment, comment.ID).Error; err != nil {
		logger.Log.Warn("Failed to reload created comment", zap.Error(err))
	}

	// Commenting on your own post is not announced
	if post.UserID != user.ID {
		pid := postID
		go h.notifier.Notify(models.NotificationComment, post.UserID, user.ID, &pid, user.Username)
	}

	c.JSON(http.StatusCreated, comment)
}

// GetPostComments lists a post's comments, oldest first
// GET /api/v1/posts/:id/comments
func (h *Handlers) GetPostComments(c *gin.Context) {
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
	if err := database.DB.Model(&models.Comment{}).
		Where("post_id = ?", postID).Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := database.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&comments).Error; err != nil {
		util.RespondInternalError(c, "failed to load comments")
		return
	}

	c.JSON(http.StatusOK, util.NewListResponse(comments, total, params))
}

// DeleteComment removes a comment. Allowed for the comment author or the
// owner of the post it sits on.
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	commentID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.Preload("Post").First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "comment")
			return
		}
		util.RespondInternalError(c, "failed to load comment")
		return
	}

	if comment.UserID != user.ID && comment.Post.UserID != user.ID {
		util.RespondForbidden(c, "you cannot delete this comment")
		return
	}

	if err := database.DB.Delete(&comment).Error; err != nil {
		util.RespondInternalError(c, "failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
