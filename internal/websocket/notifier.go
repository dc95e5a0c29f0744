package websocket

import (
	"context"
	"fmt"

	"github.com/socialhub-app/backend/internal/cache"
	"github.com/socialhub-app/backend/internal/logger"
	appmetrics "github.com/socialhub-app/backend/internal/metrics"
	"github.com/socialhub-app/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const notifyBatchSize = 100

// Notifier persists notifications and pushes them to live connections.
// Persistence always happens first; a push only goes out for a row that
// exists, so an offline user finds the same notification on their next
// poll. Failures are logged and counted but never returned: the action
// that triggered the notification has already succeeded.
type Notifier struct {
	hub   *Hub
	db    *gorm.DB
	redis *cache.RedisClient
}

// NewNotifier creates a notifier backed by the given hub and database
func NewNotifier(hub *Hub, db *gorm.DB, redis *cache.RedisClient) *Notifier {
	return &Notifier{hub: hub, db: db, redis: redis}
}

// Notify records a notification for userID and pushes it if they are online.
// fromUsername may be empty, in which case it is resolved from the database.
func (n *Notifier) Notify(nt models.NotificationType, userID, fromUserID uint, postID *uint, fromUsername string) {
	notification := models.Notification{
		Type:       nt,
		UserID:     userID,
		FromUserID: fromUserID,
		PostID:     postID,
		IsRead:     false,
	}

	if err := n.db.Create(&notification).Error; err != nil {
		logger.Log.Error("Failed to persist notification",
			zap.String("type", string(nt)),
			zap.Uint("user_id", userID),
			zap.Uint("from_user_id", fromUserID),
			zap.Error(err))
		appmetrics.Get().NotificationFailures.WithLabelValues(string(nt)).Inc()
		return
	}
	appmetrics.Get().NotificationsPersisted.WithLabelValues(string(nt)).Inc()

	n.redis.InvalidateUnreadNotifications(context.Background(), userID)

	fromUsername = n.resolveUsername(fromUserID, fromUsername)
	n.push(nt, userID, fromUserID, postID, fromUsername)
}

// NotifyMany records one notification per target in a single batch insert,
// then pushes to each target that is currently online. Used for new-post
// fan-out to followers.
func (n *Notifier) NotifyMany(nt models.NotificationType, userIDs []uint, fromUserID uint, postID *uint, fromUsername string) {
	if len(userIDs) == 0 {
		return
	}

	notifications := make([]models.Notification, len(userIDs))
	for i, userID := range userIDs {
		notifications[i] = models.Notification{
			Type:       nt,
			UserID:     userID,
			FromUserID: fromUserID,
			PostID:     postID,
			IsRead:     false,
		}
	}

	if err := n.db.CreateInBatches(notifications, notifyBatchSize).Error; err != nil {
		logger.Log.Error("Failed to persist bulk notifications",
			zap.String("type", string(nt)),
			zap.Int("count", len(userIDs)),
			zap.Uint("from_user_id", fromUserID),
			zap.Error(err))
		appmetrics.Get().NotificationFailures.WithLabelValues(string(nt)).Add(float64(len(userIDs)))
		return
	}
	appmetrics.Get().NotificationsPersisted.WithLabelValues(string(nt)).Add(float64(len(userIDs)))

	fromUsername = n.resolveUsername(fromUserID, fromUsername)
	for _, userID := range userIDs {
		n.redis.InvalidateUnreadNotifications(context.Background(), userID)
		n.push(nt, userID, fromUserID, postID, fromUsername)
	}
}

// push delivers the rendered notification to the user's active connection
func (n *Notifier) push(nt models.NotificationType, userID, fromUserID uint, postID *uint, fromUsername string) {
	if !n.hub.IsUserOnline(userID) {
		return
	}

	n.hub.SendToUser(userID, NewMessage(MessageTypeNewNotification, NotificationPayload{
		Type:         string(nt),
		FromUserID:   fromUserID,
		FromUsername: fromUsername,
		PostID:       postID,
		Message:      renderNotification(nt, fromUsername),
	}))
	appmetrics.Get().NotificationsPushed.WithLabelValues(string(nt)).Inc()
}

// resolveUsername fills in the origin username when the caller didn't have it
func (n *Notifier) resolveUsername(fromUserID uint, fromUsername string) string {
	if fromUsername != "" {
		return fromUsername
	}

	var user models.User
	if err := n.db.Select("username").First(&user, fromUserID).Error; err != nil {
		logger.Log.Warn("Failed to resolve notification origin username",
			zap.Uint("from_user_id", fromUserID),
			zap.Error(err))
		return "Someone"
	}
	return user.Username
}

// renderNotification produces the human-readable text for each type
func renderNotification(nt models.NotificationType, name string) string {
	switch nt {
	case models.NotificationLike:
		return fmt.Sprintf("%s liked your post", name)
	case models.NotificationComment:
		return fmt.Sprintf("%s commented on your post", name)
	case models.NotificationFollow:
		return fmt.Sprintf("%s started following you", name)
	case models.NotificationNewPost:
		return fmt.Sprintf("%s made a new post", name)
	case models.NotificationMessage:
		return fmt.Sprintf("%s sent you a message", name)
	default:
		return fmt.Sprintf("New notification from %s", name)
	}
}
