package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/database"
	"github.com/socialhub-app/backend/internal/middleware"
	"github.com/socialhub-app/backend/internal/models"
	"github.com/socialhub-app/backend/internal/util"
	"gorm.io/gorm"
)

// GetNotifications lists the caller's notifications, newest first
// GET /api/v1/notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	params := util.ParsePageParams(c, 20)

	var total int64
	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to count notifications")
		return
	}

	var notifications []models.Notification
	if err := database.DB.Preload("FromUser").
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&notifications).Error; err != nil {
		util.RespondInternalError(c, "failed to load notifications")
		return
	}

	c.JSON(http.StatusOK, util.NewListResponse(notifications, total, params))
}

// GetUnreadNotificationCount returns the caller's unread count, cached
// GET /api/v1/notifications/unread-count
func (h *Handlers) GetUnreadNotificationCount(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if count, hit := h.redis.GetUnreadNotifications(ctx, user.ID); hit {
		middleware.RecordCacheHit("unread_notifications")
		c.JSON(http.StatusOK, gin.H{"count": count})
		return
	}
	middleware.RecordCacheMiss("unread_notifications")

	var count int64
	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&count).Error; err != nil {
		util.RespondInternalError(c, "failed to count notifications")
		return
	}

	h.redis.SetUnreadNotifications(ctx, user.ID, count)
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead marks one of the caller's notifications as read
// PUT /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	notificationID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var notification models.Notification
	if err := database.DB.First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "notification")
			return
		}
		util.RespondInternalError(c, "failed to load notification")
		return
	}

	if notification.UserID != user.ID {
		util.RespondForbidden(c, "this notification is not yours")
		return
	}

	if !notification.IsRead {
		if err := database.DB.Model(&notification).Update("is_read", true).Error; err != nil {
			util.RespondInternalError(c, "failed to mark notification read")
			return
		}
		h.redis.InvalidateUnreadNotifications(c.Request.Context(), user.ID)
	}

	c.JSON(http.StatusOK, notification)
}

// MarkAllNotificationsRead marks every unread notification of the caller
// PUT /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	if result.Error != nil {
		util.RespondInternalError(c, "failed to mark notifications read")
		return
	}

	if result.RowsAffected > 0 {
		h.redis.InvalidateUnreadNotifications(c.Request.Context(), user.ID)
	}

	c.JSON(http.StatusOK, gin.H{"updated": result.RowsAffected})
}

// DeleteNotification removes one of the caller's notifications
// DELETE /api/v1/notifications/:id
func (h *Handlers) DeleteNotification(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	notificationID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var notification models.Notification
	if err := database.DB.First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "notification")
			return
		}
		util.RespondInternalError(c, "failed to load notification")
		return
	}

	if notification.UserID != user.ID {
		util.RespondForbidden(c, "this notification is not yours")
		return
	}

	if err := database.DB.Delete(&notification).Error; err != nil {
		util.RespondInternalError(c, "failed to delete notification")
		return
	}

	if !notification.IsRead {
		h.redis.InvalidateUnreadNotifications(c.Request.Context(), user.ID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

// DeleteAllNotifications removes every notification of the caller
// DELETE /api/v1/notifications
func (h *Handlers) DeleteAllNotifications(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	result := database.DB.Where("user_id = ?", user.ID).Delete(&models.Notification{})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to delete notifications")
		return
	}

	h.redis.InvalidateUnreadNotifications(c.Request.Context(), user.ID)

	c.JSON(http.StatusOK, gin.H{"deleted": result.RowsAffected})
}
