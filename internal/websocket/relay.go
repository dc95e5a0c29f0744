package websocket

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/socialhub-app/backend/internal/cache"
	apierrors "github.com/socialhub-app/backend/internal/errors"
	"github.com/socialhub-app/backend/internal/logger"
	"github.com/socialhub-app/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Relay implements the direct-message operations shared by the socket
// events and the REST endpoints. Every mutation persists first and only
// then pushes to the counterpart's live connection, so a crashed push can
// never lose data the sender believes was delivered.
type Relay struct {
	db       *gorm.DB
	hub      *Hub
	notifier *Notifier
	redis    *cache.RedisClient
}

// NewRelay creates a relay backed by the given database and hub
func NewRelay(db *gorm.DB, hub *Hub, notifier *Notifier, redis *cache.RedisClient) *Relay {
	return &Relay{db: db, hub: hub, notifier: notifier, redis: redis}
}

// Send persists a message from sender to receiver and pushes it to the
// receiver's connection if they are online. The caller is responsible for
// echoing the returned message back to the sender.
func (r *Relay) Send(senderID uint, senderUsername string, receiverID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apierrors.BadRequest("message content is required")
	}
	if receiverID == senderID {
		return nil, apierrors.BadRequest("cannot send messages to yourself")
	}

	var receiver models.User
	if err := r.db.First(&receiver, receiverID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound("receiver")
		}
		return nil, apierrors.InternalError("failed to look up receiver")
	}

	message := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		IsRead:     false,
	}
	if err := r.db.Create(&message).Error; err != nil {
		logger.Log.Error("Failed to persist message",
			zap.Uint("sender_id", senderID),
			zap.Uint("receiver_id", receiverID),
			zap.Error(err))
		return nil, apierrors.InternalError("failed to send message")
	}

	if err := r.db.Preload("Sender").Preload("Receiver").First(&message, message.ID).Error; err != nil {
		logger.Log.Warn("Failed to reload message participants", zap.Error(err))
	}

	r.redis.InvalidateUnreadMessages(context.Background(), receiverID)

	// The notification is best-effort and must never delay the send
	go r.notifier.Notify(models.NotificationMessage, receiverID, senderID, nil, senderUsername)

	r.hub.SendToUser(receiverID, NewMessage(MessageTypeReceiveMessage, &message))

	return &message, nil
}

// Edit rewrites a message's content. Only the sender may edit. The updated
// message is pushed to the receiver; the caller echoes it to the editor.
func (r *Relay) Edit(actorID, messageID uint, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apierrors.BadRequest("message content is required")
	}

	var message models.Message
	if err := r.db.First(&message, messageID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFound("message")
		}
		return nil, apierrors.InternalError("failed to look up message")
	}

	if message.SenderID != actorID {
		return nil, apierrors.Forbidden("you cannot edit this message")
	}

	if err := r.db.Model(&message).Update("content", content).Error; err != nil {
		logger.Log.Error("Failed to update message",
			zap.Uint("message_id", messageID),
			zap.Error(err))
		return nil, apierrors.InternalError("failed to edit message")
	}

	if err := r.db.Preload("Sender").Preload("Receiver").First(&message, message.ID).Error; err != nil {
		logger.Log.Warn("Failed to reload message participants", zap.Error(err))
	}

	r.hub.SendToUser(message.ReceiverID, NewMessage(MessageTypeMessageUpdated, &message))

	return &message, nil
}

// Delete removes a message. Only the sender may delete. The deletion is
// announced to the receiver; the caller confirms it to the actor.
func (r *Relay) Delete(actorID, messageID uint) (uint, error) {
	var message models.Message
	if err := r.db.First(&message, messageID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apierrors.NotFound("message")
		}
		return 0, apierrors.InternalError("failed to look up message")
	}

	if message.SenderID != actorID {
		return 0, apierrors.Forbidden("you cannot delete this message")
	}

	receiverID := message.ReceiverID
	if err := r.db.Delete(&message).Error; err != nil {
		logger.Log.Error("Failed to delete message",
			zap.Uint("message_id", messageID),
			zap.Error(err))
		return 0, apierrors.InternalError("failed to delete message")
	}

	if !message.IsRead {
		r.redis.InvalidateUnreadMessages(context.Background(), receiverID)
	}

	r.hub.SendToUser(receiverID, NewMessage(MessageTypeMessageDeleted, MessageDeletedPayload{
		MessageID: messageID,
	}))

	return receiverID, nil
}

// MarkRead flips every unread message from senderID to readerID to read.
// Already-read messages are untouched, so the operation is monotonic and
// idempotent. The sender learns their messages were read if they are online.
func (r *Relay) MarkRead(readerID, senderID uint) error {
	result := r.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, readerID, false).
		Update("is_read", true)
	if result.Error != nil {
		logger.Log.Error("Failed to mark messages read",
			zap.Uint("reader_id", readerID),
			zap.Uint("sender_id", senderID),
			zap.Error(result.Error))
		return apierrors.InternalError("failed to mark messages as read")
	}

	if result.RowsAffected > 0 {
		r.redis.InvalidateUnreadMessages(context.Background(), readerID)
	}

	r.hub.SendToUser(senderID, NewMessage(MessageTypeMessagesRead, MessagesReadPayload{
		ByUserID: readerID,
	}))

	return nil
}

// RegisterHandlers wires the relay's operations into the hub's socket
// events. Errors are translated to an error event on the originating
// connection only; they never reach other clients.
func (r *Relay) RegisterHandlers(hub *Hub) {
	hub.RegisterHandler(MessageTypeSendMessage, func(client *Client, msg *Message) error {
		var payload SendMessagePayload
		if err := msg.ParsePayload(&payload); err != nil {
			client.SendError("Failed to send message", err.Error())
			return nil
		}

		message, err := r.Send(client.UserID, client.Username, payload.ReceiverID, payload.Content)
		if err != nil {
			r.emitError(client, "Failed to send message", err)
			return nil
		}

		// Echo to the sender so their UI can render the persisted row
		client.Send(NewMessage(MessageTypeReceiveMessage, message))
		return nil
	})

	hub.RegisterHandler(MessageTypeEditMessage, func(client *Client, msg *Message) error {
		var payload EditMessagePayload
		if err := msg.ParsePayload(&payload); err != nil {
			client.SendError("Failed to edit message", err.Error())
			return nil
		}

		message, err := r.Edit(client.UserID, payload.MessageID, payload.Content)
		if err != nil {
			r.emitError(client, "Failed to edit message", err)
			return nil
		}

		client.Send(NewMessage(MessageTypeMessageUpdated, message))
		return nil
	})

	hub.RegisterHandler(MessageTypeDeleteMessage, func(client *Client, msg *Message) error {
		var payload DeleteMessagePayload
		if err := msg.ParsePayload(&payload); err != nil {
			client.SendError("Failed to delete message", err.Error())
			return nil
		}

		if _, err := r.Delete(client.UserID, payload.MessageID); err != nil {
			r.emitError(client, "Failed to delete message", err)
			return nil
		}

		client.Send(NewMessage(MessageTypeMessageDeleted, MessageDeletedPayload{
			MessageID: payload.MessageID,
		}))
		return nil
	})

	hub.RegisterHandler(MessageTypeMarkMessagesRead, func(client *Client, msg *Message) error {
		var payload MarkMessagesReadPayload
		if err := msg.ParsePayload(&payload); err != nil {
			client.SendError("Failed to mark messages as read", err.Error())
			return nil
		}

		if err := r.MarkRead(client.UserID, payload.SenderID); err != nil {
			r.emitError(client, "Failed to mark messages as read", err)
			return nil
		}

		client.Send(NewMessage(MessageTypeMessagesMarkedRead, MessagesMarkedReadPayload{
			SenderID: payload.SenderID,
		}))
		return nil
	})
}

// emitError sends the operation failure back to the originating connection
func (r *Relay) emitError(client *Client, fallback string, err error) {
	apiErr := apierrors.AsAPIError(err)
	if apiErr.Message == "" {
		apiErr.Message = fallback
	}
	client.SendError(apiErr.Message, apiErr.Details)
}
