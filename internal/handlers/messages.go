package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/database"
	"github.com/socialhub-app/backend/internal/middleware"
	"github.com/socialhub-app/backend/internal/models"
	"github.com/socialhub-app/backend/internal/util"
)

// SendMessage sends a direct message over the REST surface. Delivery
// semantics are the same as the send_message socket event.
// POST /api/v1/messages
func (h *Handlers) SendMessage(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	var req struct {
		ReceiverID uint   `json:"receiverId" binding:"required"`
		Content    string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	message, err := h.relay.Send(user.ID, user.Username, req.ReceiverID, req.Content)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// conversationSummary describes one chat partner in the conversation list
type conversationSummary struct {
	User        models.PublicUser `json:"user"`
	LastMessage models.Message    `json:"lastMessage"`
	UnreadCount int64             `json:"unreadCount"`
}

// GetConversations lists the caller's chat partners with their latest
// message and the number of unread messages from each.
// GET /api/v1/messages/conversations
func (h *Handlers) GetConversations(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	var messages []models.Message
	if err := database.DB.
		Where("sender_id = ? OR receiver_id = ?", user.ID, user.ID).
		Order("created_at desc").
		Find(&messages).Error; err != nil {
		util.RespondInternalError(c, "failed to load conversations")
		return
	}

	// Messages are newest-first, so the first one seen per counterpart
	// is that conversation's latest.
	latest := make(map[uint]models.Message)
	order := make([]uint, 0)
	unread := make(map[uint]int64)
	for _, m := range messages {
		counterpart := m.SenderID
		if m.SenderID == user.ID {
			counterpart = m.ReceiverID
		}
		if _, seen := latest[counterpart]; !seen {
			latest[counterpart] = m
			order = append(order, counterpart)
		}
		if m.ReceiverID == user.ID && !m.IsRead {
			unread[counterpart]++
		}
	}

	var counterparts []models.User
	if len(order) > 0 {
		if err := database.DB.Where("id IN ?", order).Find(&counterparts).Error; err != nil {
			util.RespondInternalError(c, "failed to load conversation partners")
			return
		}
	}
	usersByID := make(map[uint]models.User, len(counterparts))
	for _, u := range counterparts {
		usersByID[u.ID] = u
	}

	summaries := make([]conversationSummary, 0, len(order))
	for _, id := range order {
		partner := usersByID[id]
		summaries = append(summaries, conversationSummary{
			User:        partner.Public(),
			LastMessage: latest[id],
			UnreadCount: unread[id],
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

// GetConversation returns the message history with one user, newest first.
// Fetching a conversation marks the other side's messages as read.
// GET /api/v1/messages/conversations/:id
func (h *Handlers) GetConversation(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	partnerID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	params := util.ParsePageParams(c, 20)

	base := database.DB.Model(&models.Message{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			user.ID, partnerID, partnerID, user.ID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "failed to count messages")
		return
	}

	var messages []models.Message
	if err := base.
		Preload("Sender").Preload("Receiver").
		Order("created_at desc").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&messages).Error; err != nil {
		util.RespondInternalError(c, "failed to load messages")
		return
	}

	// Reading the conversation acknowledges the partner's messages
	if err := h.relay.MarkRead(user.ID, partnerID); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, util.NewListResponse(messages, total, params))
}

// GetUnreadMessageCount returns the caller's total unread messages, cached
// GET /api/v1/messages/unread-count
func (h *Handlers) GetUnreadMessageCount(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if count, hit := h.redis.GetUnreadMessages(ctx, user.ID); hit {
		middleware.RecordCacheHit("unread_messages")
		c.JSON(http.StatusOK, gin.H{"count": count})
		return
	}
	middleware.RecordCacheMiss("unread_messages")

	var count int64
	if err := database.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", user.ID, false).
		Count(&count).Error; err != nil {
		util.RespondInternalError(c, "failed to count messages")
		return
	}

	h.redis.SetUnreadMessages(ctx, user.ID, count)
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkConversationRead marks every unread message from the partner as read
// PUT /api/v1/messages/conversations/:id/read
func (h *Handlers) MarkConversationRead(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	partnerID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.relay.MarkRead(user.ID, partnerID); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "conversation marked read"})
}

// DeleteMessage removes one of the caller's sent messages
// DELETE /api/v1/messages/:id
func (h *Handlers) DeleteMessage(c *gin.Context) {
	user, ok := util.CurrentUser(c)
	if !ok {
		return
	}
	messageID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.relay.Delete(user.ID, messageID); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message deleted"})
}
