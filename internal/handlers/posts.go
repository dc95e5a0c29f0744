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

// postView is a post decorated with engagement data for the caller
type postView struct {
	models.Post
	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
	HasLiked     bool  `json:"hasLiked"`
}

type postCount struct {
	PostID uint
	Count  int64
}

// decoratePosts attaches like/comment counts and the viewer's like state.
// viewerID zero means an unauthenticated caller.
func decoratePosts(posts []models.Post, viewerID uint) []postView {
	views := make([]postView, len(posts))
	if len(posts) == 0 {
		return views
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likeCounts := make(map[uint]int64)
	commentCounts := make(map[uint]int64)
	liked := make(map[uint]bool)

	var rows []postCount
	if err := database.DB.Model(&models.PostLike{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error; err == nil {
		for _, r := range rows {
			likeCounts[r.PostID] = r.Count
		}
	}

	rows = nil
	if err := database.DB.Model(&models.Comment{}).
		Select("post_id, count(*) as count").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error; err == nil {
		for _, r := range rows {
			commentCounts[r.PostID] = r.Count
		}
	}

	if viewerID != 0 {
		var likedIDs []uint
		if err := database.DB.Model(&models.PostLike{}).
			Where("user_id = ? AND post_id IN ?", viewerID, ids).
			Pluck("post_id", &likedIDs).Error; err == nil {
			for _, id := range likedIDs {
				liked[id] = true
			}
		}
	}

	for i, p := range posts {
		views[i] = postView{
			Post:         p,
			LikeCount:    likeCounts[p.ID],
			CommentCount: commentCounts[p.ID],
			HasLiked:     liked[p.ID],
		}
	}
	return views
}

// viewerID returns the authenticated user's ID, or zero for anonymous
func viewerID(c *gin.Context) uint {
	if id, exists := c.Get("user_id"); exists {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}

// respondPostList runs the shared list plumbing for post endpoints
func respondPostList(c *gin.Context, base *gorm.DB, params util.PageParams) {
	var total int64
	if err := base.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := base.
		Preload("User").Preload("Category").
		Order("created_at desc").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&posts).Error; err != nil {
		util.RespondInternalError(c, "failed to load posts")
		return
	}

	c.JSON(http.StatusOK, util.NewListResponse(decoratePosts(posts, viewerID(c)), total, params))
}

// CreatePost publishes a new post and fans a notification out to followers
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	var req struct {
		Description string `json:"description" binding:"required"`
		CategoryID  uint   `json:"categoryId" binding:"required"`
		Content     []byte `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if strings.TrimSpace(req.Description) == "" {
		util.RespondBadRequest(c, "post description is required")
		return
	}

	var category models.Category
	if err := database.DB.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "category")
			return
		}
		util.RespondInternalError(c, "failed to load category")
		return
	}

	post := models.Post{
		UserID:      user.ID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Content:     req.Content,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		util.RespondInternalError(c, "failed to create post")
		return
	}

	if err := database.DB.Preload("User").Preload("Category").First(&post, post.ID).Error; err != nil {
		logger.Log.Warn("Failed to reload created post", zap.Error(err))
	}

	// Fan the new-post notification out to followers off the request path
	postID := post.ID
	authorID := user.ID
	authorName := user.Username
	go func() {
		var followerIDs []uint
		if err := database.DB.Model(&models.Follow{}).
			Where("followed_id = ?", authorID).
			Pluck("follower_id", &followerIDs).Error; err != nil {
			logger.Log.Error("Failed to load followers for post fan-out",
				zap.Uint("user_id", authorID), zap.Error(err))
			return
		}
		h.notifier.NotifyMany(models.NotificationNewPost, followerIDs, authorID, &postID, authorName)
	}()

	c.JSON(http.StatusCreated, postView{Post: post})
}

// GetRecentPosts returns the newest posts across the whole site
// GET /api/v1/posts/recent
func (h *Handlers) GetRecentPosts(c *gin.Context) {
	params := util.ParsePageParams(c, 10)
	respondPostList(c, database.DB.Model(&models.Post{}), params)
}

// GetFeed returns posts from users the caller follows
// GET /api/v1/posts/feed
func (h *Handlers) GetFeed(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	params := util.ParsePageParams(c, 10)
	followedIDs := database.DB.Model(&models.Follow{}).
		Select("followed_id").
		Where("follower_id = ?", user.ID)

	respondPostList(c, database.DB.Model(&models.Post{}).
		Where("user_id IN (?)", followedIDs), params)
}

// GetPostsByCategory returns posts in a category
// GET /api/v1/categories/:id/posts
func (h *Handlers) GetPostsByCategory(c *gin.Context) {
	categoryID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := database.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "category")
			return
		}
		util.RespondInternalError(c, "failed to load category")
		return
	}

	params := util.ParsePageParams(c, 10)
	respondPostList(c, database.DB.Model(&models.Post{}).
		Where("category_id = ?", categoryID), params)
}

// SearchPosts finds posts whose description matches the query
// GET /api/v1/posts/search?q=...
func (h *Handlers) SearchPosts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		util.RespondBadRequest(c, "search query is required")
		return
	}

	params := util.ParsePageParams(c, 10)
	respondPostList(c, database.DB.Model(&models.Post{}).
		Where("LOWER(description) LIKE LOWER(?)", "%"+query+"%"), params)
}

// GetUserPosts returns one user's posts
// GET /api/v1/users/:id/posts
func (h *Handlers) GetUserPosts(c *gin.Context) {
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

	params := util.ParsePageParams(c, 10)
	respondPostList(c, database.DB.Model(&models.Post{}).
		Where("user_id = ?", userID), params)
}

// GetPost returns a single post with engagement data
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	postID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var post models.Post
	if err := database.DB.Preload("User").Preload("Category").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "post")
			return
		}
		util.RespondInternalError(c, "failed to load post")
		return
	}

	c.JSON(http.StatusOK, decoratePosts([]models.Post{post}, viewerID(c))[0])
}

// UpdatePost edits a post's description, category, or media. Owner only.
// PUT /api/v1/posts/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
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

	if post.UserID != user.ID {
		util.RespondForbidden(c, "you cannot edit this post")
		return
	}

	var req struct {
		Description *string `json:"description"`
		CategoryID  *uint   `json:"categoryId"`
		Content     []byte  `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			util.RespondBadRequest(c, "post description cannot be blank")
			return
		}
		updates["description"] = *req.Description
	}
	if req.CategoryID != nil {
		var category models.Category
		if err := database.DB.First(&category, *req.CategoryID).Error; err != nil {
			util.RespondNotFound(c, "category")
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if len(req.Content) > 0 {
		updates["content"] = req.Content
	}

	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	if err := database.DB.Model(&post).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to update post")
		return
	}

	if err := database.DB.Preload("User").Preload("Category").First(&post, post.ID).Error; err != nil {
		logger.Log.Warn("Failed to reload updated post", zap.Error(err))
	}

	c.JSON(http.StatusOK, decoratePosts([]models.Post{post}, user.ID)[0])
}

// DeletePost removes a post and its dependent rows. Owner only.
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
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

	if post.UserID != user.ID {
		util.RespondForbidden(c, "you cannot delete this post")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		logger.Log.Error("Failed to delete post", zap.Uint("post_id", postID), zap.Error(err))
		util.RespondInternalError(c, "failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}
