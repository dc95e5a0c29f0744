package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessage(t *testing.T, env *testEnv, senderID, receiverID uint, content string, read bool) models.Message {
	t.Helper()

	message := models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content, IsRead: read}
	require.NoError(t, env.db.Create(&message).Error)
	return message
}

func TestSendMessage(t *testing.T) {
	env := setupEnv(t)
	sender, senderToken := registerUser(t, env, "ada")
	receiver, _ := registerUser(t, env, "grace")

	w := doJSON(t, env, http.MethodPost, "/api/v1/messages", senderToken, gin.H{
		"receiverId": receiver.ID,
		"content":    "hello there",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ID       uint   `json:"id"`
		Content  string `json:"content"`
		SenderID uint   `json:"senderId"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, sender.ID, resp.SenderID)

	var stored models.Message
	require.NoError(t, env.db.First(&stored, resp.ID).Error)
	assert.Equal(t, receiver.ID, stored.ReceiverID)
	assert.False(t, stored.IsRead)

	waitForNotification(t, env, receiver.ID, models.NotificationMessage)
}

func TestSendMessageValidation(t *testing.T) {
	env := setupEnv(t)
	sender, senderToken := registerUser(t, env, "ada")

	// blank content
	w := doJSON(t, env, http.MethodPost, "/api/v1/messages", senderToken, gin.H{
		"receiverId": sender.ID + 1,
		"content":    "   ",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// messaging yourself
	w = doJSON(t, env, http.MethodPost, "/api/v1/messages", senderToken, gin.H{
		"receiverId": sender.ID,
		"content":    "dear me",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown receiver
	w = doJSON(t, env, http.MethodPost, "/api/v1/messages", senderToken, gin.H{
		"receiverId": 9999,
		"content":    "anyone home",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	env.db.Model(&models.Message{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetConversations(t *testing.T) {
	env := setupEnv(t)
	me, myToken := registerUser(t, env, "ada")
	grace, _ := registerUser(t, env, "grace")
	linus, _ := registerUser(t, env, "linus")

	seedMessage(t, env, grace.ID, me.ID, "oldest from grace", true)
	seedMessage(t, env, me.ID, grace.ID, "reply to grace", true)
	seedMessage(t, env, grace.ID, me.ID, "latest from grace", false)
	seedMessage(t, env, linus.ID, me.ID, "hi from linus", false)

	w := doJSON(t, env, http.MethodGet, "/api/v1/messages/conversations", myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			User struct {
				Username string `json:"username"`
			} `json:"user"`
			LastMessage struct {
				Content string `json:"content"`
			} `json:"lastMessage"`
			UnreadCount int64 `json:"unreadCount"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Data, 2)

	// most recently active conversation first
	assert.Equal(t, "linus", resp.Data[0].User.Username)
	assert.Equal(t, "hi from linus", resp.Data[0].LastMessage.Content)
	assert.Equal(t, int64(1), resp.Data[0].UnreadCount)

	assert.Equal(t, "grace", resp.Data[1].User.Username)
	assert.Equal(t, "latest from grace", resp.Data[1].LastMessage.Content)
	assert.Equal(t, int64(1), resp.Data[1].UnreadCount)
}

func TestGetConversationMarksRead(t *testing.T) {
	env := setupEnv(t)
	me, myToken := registerUser(t, env, "ada")
	grace, _ := registerUser(t, env, "grace")
	seedMessage(t, env, grace.ID, me.ID, "unread one", false)
	seedMessage(t, env, grace.ID, me.ID, "unread two", false)
	sent := seedMessage(t, env, me.ID, grace.ID, "my own", false)

	w := doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/v1/messages/conversations/%d", grace.ID), myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Content string `json:"content"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	assert.Len(t, resp.Data, 3)

	// viewing the thread marks what grace sent as read
	var unread int64
	env.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", grace.ID, me.ID, false).
		Count(&unread)
	assert.Zero(t, unread)

	// my own outgoing message stays unread until grace opens it
	var mine models.Message
	require.NoError(t, env.db.First(&mine, sent.ID).Error)
	assert.False(t, mine.IsRead)
}

func TestGetUnreadMessageCount(t *testing.T) {
	env := setupEnv(t)
	me, myToken := registerUser(t, env, "ada")
	grace, _ := registerUser(t, env, "grace")
	seedMessage(t, env, grace.ID, me.ID, "one", false)
	seedMessage(t, env, grace.ID, me.ID, "two", false)
	seedMessage(t, env, grace.ID, me.ID, "seen", true)
	seedMessage(t, env, me.ID, grace.ID, "outgoing", false)

	w := doJSON(t, env, http.MethodGet, "/api/v1/messages/unread-count", myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int64 `json:"count"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, int64(2), resp.Count)
}

func TestMarkConversationRead(t *testing.T) {
	env := setupEnv(t)
	me, myToken := registerUser(t, env, "ada")
	grace, _ := registerUser(t, env, "grace")
	seedMessage(t, env, grace.ID, me.ID, "pending", false)

	w := doJSON(t, env, http.MethodPut, fmt.Sprintf("/api/v1/messages/conversations/%d/read", grace.ID), myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var unread int64
	env.db.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", me.ID, false).
		Count(&unread)
	assert.Zero(t, unread)
}

func TestDeleteMessageSenderOnly(t *testing.T) {
	env := setupEnv(t)
	me, myToken := registerUser(t, env, "ada")
	grace, graceToken := registerUser(t, env, "grace")
	message := seedMessage(t, env, me.ID, grace.ID, "regret", false)

	path := fmt.Sprintf("/api/v1/messages/%d", message.ID)

	// receivers cannot delete what they were sent
	w := doJSON(t, env, http.MethodDelete, path, graceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env, http.MethodDelete, path, myToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&models.Message{}).Where("id = ?", message.ID).Count(&count)
	assert.Zero(t, count)
}
