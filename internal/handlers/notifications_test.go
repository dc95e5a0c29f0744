package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/socialhub-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, env *testEnv, userID, fromUserID uint, nt models.NotificationType, read bool) models.Notification {
	t.Helper()

	notification := models.Notification{
		Type:       nt,
		UserID:     userID,
		FromUserID: fromUserID,
		IsRead:     read,
	}
	require.NoError(t, env.db.Create(&notification).Error)
	return notification
}

func TestGetNotifications(t *testing.T) {
	env := setupEnv(t)
	user, token := registerUser(t, env, "ada")
	from, _ := registerUser(t, env, "grace")
	seedNotification(t, env, user.ID, from.ID, models.NotificationLike, false)
	seedNotification(t, env, user.ID, from.ID, models.NotificationFollow, true)
	seedNotification(t, env, from.ID, user.ID, models.NotificationLike, false)

	w := doJSON(t, env, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Type     string `json:"type"`
			FromUser struct {
				Username string `json:"username"`
			} `json:"fromUser"`
		} `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	decodeBody(t, w, &resp)
	// only the caller's notifications, never someone else's
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Pagination.Total)
	assert.Equal(t, "grace", resp.Data[0].FromUser.Username)
}

func TestGetUnreadNotificationCount(t *testing.T) {
	env := setupEnv(t)
	user, token := registerUser(t, env, "ada")
	from, _ := registerUser(t, env, "grace")
	seedNotification(t, env, user.ID, from.ID, models.NotificationLike, false)
	seedNotification(t, env, user.ID, from.ID, models.NotificationComment, false)
	seedNotification(t, env, user.ID, from.ID, models.NotificationFollow, true)

	w := doJSON(t, env, http.MethodGet, "/api/v1/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int64 `json:"count"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, int64(2), resp.Count)
}

func TestMarkNotificationRead(t *testing.T) {
	env := setupEnv(t)
	user, token := registerUser(t, env, "ada")
	other, otherToken := registerUser(t, env, "grace")
	notification := seedNotification(t, env, user.ID, other.ID, models.NotificationLike, false)

	path := fmt.Sprintf("/api/v1/notifications/%d/read", notification.ID)

	// only the addressee can mark it
	w := doJSON(t, env, http.MethodPut, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env, http.MethodPut, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Notification
	require.NoError(t, env.db.First(&reloaded, notification.ID).Error)
	assert.True(t, reloaded.IsRead)

	// marking again is harmless
	w = doJSON(t, env, http.MethodPut, path, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	env := setupEnv(t)
	user, token := registerUser(t, env, "ada")
	from, _ := registerUser(t, env, "grace")
	seedNotification(t, env, user.ID, from.ID, models.NotificationLike, false)
	seedNotification(t, env, user.ID, from.ID, models.NotificationComment, false)
	seedNotification(t, env, user.ID, from.ID, models.NotificationFollow, true)

	w := doJSON(t, env, http.MethodPut, "/api/v1/notifications/read-all", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Updated int64 `json:"updated"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, int64(2), resp.Updated)

	var unread int64
	env.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", user.ID, false).Count(&unread)
	assert.Zero(t, unread)
}

func TestDeleteNotification(t *testing.T) {
	env := setupEnv(t)
	user, token := registerUser(t, env, "ada")
	other, otherToken := registerUser(t, env, "grace")
	notification := seedNotification(t, env, user.ID, other.ID, models.NotificationLike, false)

	path := fmt.Sprintf("/api/v1/notifications/%d", notification.ID)

	w := doJSON(t, env, http.MethodDelete, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAllNotifications(t *testing.T) {
	env := setupEnv(t)
	user, token := registerUser(t, env, "ada")
	from, _ := registerUser(t, env, "grace")
	seedNotification(t, env, user.ID, from.ID, models.NotificationLike, false)
	seedNotification(t, env, user.ID, from.ID, models.NotificationComment, true)
	kept := seedNotification(t, env, from.ID, user.ID, models.NotificationLike, false)

	w := doJSON(t, env, http.MethodDelete, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, int64(2), resp.Deleted)

	// other users' rows are untouched
	var count int64
	env.db.Model(&models.Notification{}).Where("id = ?", kept.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
