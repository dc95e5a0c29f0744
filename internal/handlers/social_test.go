package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUser(t *testing.T) {
	env := setupEnv(t)
	follower, followerToken := registerUser(t, env, "ada")
	target, _ := registerUser(t, env, "grace")

	w := doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", target.ID), followerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var follow models.Follow
	require.NoError(t, env.db.Where("follower_id = ? AND followed_id = ?", follower.ID, target.ID).First(&follow).Error)

	waitForNotification(t, env, target.ID, models.NotificationFollow)
	var notification models.Notification
	require.NoError(t, env.db.Where("user_id = ?", target.ID).First(&notification).Error)
	assert.Equal(t, follower.ID, notification.FromUserID)
	assert.Nil(t, notification.PostID)
}

func TestFollowUserEdgeCases(t *testing.T) {
	env := setupEnv(t)
	follower, followerToken := registerUser(t, env, "ada")
	target, _ := registerUser(t, env, "grace")

	// following yourself
	w := doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", follower.ID), followerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// following a ghost
	w = doJSON(t, env, http.MethodPost, "/api/v1/users/9999/follow", followerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// following twice
	w = doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", target.ID), followerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", target.ID), followerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnfollowUser(t *testing.T) {
	env := setupEnv(t)
	follower, followerToken := registerUser(t, env, "ada")
	target, _ := registerUser(t, env, "grace")
	require.NoError(t, env.db.Create(&models.Follow{FollowerID: follower.ID, FollowedID: target.ID}).Error)

	path := fmt.Sprintf("/api/v1/users/%d/follow", target.ID)

	w := doJSON(t, env, http.MethodDelete, path, followerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	env.db.Model(&models.Follow{}).Where("follower_id = ?", follower.ID).Count(&count)
	assert.Zero(t, count)

	w = doJSON(t, env, http.MethodDelete, path, followerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowerListings(t *testing.T) {
	env := setupEnv(t)
	a, _ := registerUser(t, env, "ada")
	b, _ := registerUser(t, env, "grace")
	c, _ := registerUser(t, env, "linus")
	require.NoError(t, env.db.Create(&models.Follow{FollowerID: b.ID, FollowedID: a.ID}).Error)
	require.NoError(t, env.db.Create(&models.Follow{FollowerID: c.ID, FollowedID: a.ID}).Error)
	require.NoError(t, env.db.Create(&models.Follow{FollowerID: a.ID, FollowedID: b.ID}).Error)

	type userList struct {
		Data []struct {
			Username string `json:"username"`
		} `json:"data"`
	}

	w := doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/followers", a.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var followers userList
	decodeBody(t, w, &followers)
	assert.Len(t, followers.Data, 2)

	w = doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/following", a.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var following userList
	decodeBody(t, w, &following)
	require.Len(t, following.Data, 1)
	assert.Equal(t, "grace", following.Data[0].Username)
}

func TestLikePost(t *testing.T) {
	env := setupEnv(t)
	author, _ := registerUser(t, env, "ada")
	liker, likerToken := registerUser(t, env, "grace")
	category := createCategory(t, env, "jazz")
	post := createPost(t, env, author.ID, category.ID, "likeable")

	path := fmt.Sprintf("/api/v1/posts/%d/like", post.ID)

	w := doJSON(t, env, http.MethodPost, path, likerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		LikeCount int64 `json:"likeCount"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, int64(1), resp.LikeCount)

	waitForNotification(t, env, author.ID, models.NotificationLike)
	var notification models.Notification
	require.NoError(t, env.db.Where("user_id = ?", author.ID).First(&notification).Error)
	assert.Equal(t, liker.ID, notification.FromUserID)
	require.NotNil(t, notification.PostID)
	assert.Equal(t, post.ID, *notification.PostID)

	// liking twice
	w = doJSON(t, env, http.MethodPost, path, likerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLikeOwnPostSkipsNotification(t *testing.T) {
	env := setupEnv(t)
	author, authorToken := registerUser(t, env, "ada")
	category := createCategory(t, env, "jazz")
	post := createPost(t, env, author.ID, category.ID, "self five")

	w := doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/like", post.ID), authorToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	assertNoNotifications(t, env, author.ID)
}

func TestUnlikePost(t *testing.T) {
	env := setupEnv(t)
	author, _ := registerUser(t, env, "ada")
	liker, likerToken := registerUser(t, env, "grace")
	category := createCategory(t, env, "jazz")
	post := createPost(t, env, author.ID, category.ID, "fickle")
	require.NoError(t, env.db.Create(&models.PostLike{PostID: post.ID, UserID: liker.ID}).Error)

	path := fmt.Sprintf("/api/v1/posts/%d/like", post.ID)

	w := doJSON(t, env, http.MethodDelete, path, likerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env, http.MethodDelete, path, likerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateComment(t *testing.T) {
	env := setupEnv(t)
	author, _ := registerUser(t, env, "ada")
	commenter, commenterToken := registerUser(t, env, "grace")
	category := createCategory(t, env, "jazz")
	post := createPost(t, env, author.ID, category.ID, "discuss")

	w := doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), commenterToken, gin.H{
		"content": "great take",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Content string `json:"content"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "great take", resp.Content)
	assert.Equal(t, "grace", resp.User.Username)

	waitForNotification(t, env, author.ID, models.NotificationComment)
	var notification models.Notification
	require.NoError(t, env.db.Where("user_id = ?", author.ID).First(&notification).Error)
	assert.Equal(t, commenter.ID, notification.FromUserID)
	require.NotNil(t, notification.PostID)
}

func TestCreateCommentValidation(t *testing.T) {
	env := setupEnv(t)
	author, token := registerUser(t, env, "ada")
	category := createCategory(t, env, "jazz")
	post := createPost(t, env, author.ID, category.ID, "quiet")

	w := doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), token, gin.H{
		"content": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, env, http.MethodPost, "/api/v1/posts/9999/comments", token, gin.H{
		"content": "into the void",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCommentPermissions(t *testing.T) {
	env := setupEnv(t)
	author, authorToken := registerUser(t, env, "ada")
	commenter, commenterToken := registerUser(t, env, "grace")
	_, strangerToken := registerUser(t, env, "linus")
	category := createCategory(t, env, "jazz")
	post := createPost(t, env, author.ID, category.ID, "moderated")

	comment := models.Comment{PostID: post.ID, UserID: commenter.ID, Content: "removable"}
	require.NoError(t, env.db.Create(&comment).Error)

	path := fmt.Sprintf("/api/v1/comments/%d", comment.ID)

	// bystanders cannot delete
	w := doJSON(t, env, http.MethodDelete, path, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the comment author can
	w = doJSON(t, env, http.MethodDelete, path, commenterToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// the post owner can delete comments on their post too
	comment2 := models.Comment{PostID: post.ID, UserID: commenter.ID, Content: "also removable"}
	require.NoError(t, env.db.Create(&comment2).Error)
	w = doJSON(t, env, http.MethodDelete, fmt.Sprintf("/api/v1/comments/%d", comment2.ID), authorToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPostComments(t *testing.T) {
	env := setupEnv(t)
	author, _ := registerUser(t, env, "ada")
	category := createCategory(t, env, "jazz")
	post := createPost(t, env, author.ID, category.ID, "thread")
	require.NoError(t, env.db.Create(&models.Comment{PostID: post.ID, UserID: author.ID, Content: "first"}).Error)
	require.NoError(t, env.db.Create(&models.Comment{PostID: post.ID, UserID: author.ID, Content: "second"}).Error)

	w := doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Content string `json:"content"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Data, 2)
	// oldest first so threads read top down
	assert.Equal(t, "first", resp.Data[0].Content)
}

func assertNoNotifications(t *testing.T, env *testEnv, userID uint) {
	t.Helper()

	assert.Never(t, func() bool {
		var count int64
		env.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count)
		return count > 0
	}, 200*time.Millisecond, 25*time.Millisecond)
}
