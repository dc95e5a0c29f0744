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

func TestGetUserProfileCounts(t *testing.T) {
	env := setupEnv(t)
	user, _ := registerUser(t, env, "ada")
	fan, _ := registerUser(t, env, "grace")
	category := createCategory(t, env, "jazz")
	createPost(t, env, user.ID, category.ID, "one")
	createPost(t, env, user.ID, category.ID, "two")
	require.NoError(t, env.db.Create(&models.Follow{FollowerID: fan.ID, FollowedID: user.ID}).Error)
	require.NoError(t, env.db.Create(&models.Follow{FollowerID: user.ID, FollowedID: fan.ID}).Error)

	w := doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", user.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Username       string `json:"username"`
		PostCount      int64  `json:"postCount"`
		FollowerCount  int64  `json:"followerCount"`
		FollowingCount int64  `json:"followingCount"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "ada", resp.Username)
	assert.Equal(t, int64(2), resp.PostCount)
	assert.Equal(t, int64(1), resp.FollowerCount)
	assert.Equal(t, int64(1), resp.FollowingCount)
}

func TestGetUserProfileNotFound(t *testing.T) {
	env := setupEnv(t)

	w := doJSON(t, env, http.MethodGet, "/api/v1/users/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	env := setupEnv(t)
	user, token := registerUser(t, env, "ada")

	w := doJSON(t, env, http.MethodPut, "/api/v1/users/profile", token, gin.H{
		"bio":      "writes algorithms",
		"username": "countess",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "countess", reloaded.Username)
	assert.Equal(t, "writes algorithms", reloaded.Bio)
}

func TestUpdateProfileUsernameTaken(t *testing.T) {
	env := setupEnv(t)
	registerUser(t, env, "grace")
	_, token := registerUser(t, env, "ada")

	w := doJSON(t, env, http.MethodPut, "/api/v1/users/profile", token, gin.H{
		"username": "Grace",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateProfileEmptyBody(t *testing.T) {
	env := setupEnv(t)
	_, token := registerUser(t, env, "ada")

	w := doJSON(t, env, http.MethodPut, "/api/v1/users/profile", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchUsers(t *testing.T) {
	env := setupEnv(t)
	registerUser(t, env, "ada")
	registerUser(t, env, "adam")
	registerUser(t, env, "grace")

	w := doJSON(t, env, http.MethodGet, "/api/v1/users/search?q=ADA", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	assert.Len(t, resp.Data, 2)
}

func TestCreateCategory(t *testing.T) {
	env := setupEnv(t)
	_, token := registerUser(t, env, "ada")

	w := doJSON(t, env, http.MethodPost, "/api/v1/categories", token, gin.H{
		"name":        "ambient",
		"description": "slow and spacious",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// names are unique regardless of case
	w = doJSON(t, env, http.MethodPost, "/api/v1/categories", token, gin.H{"name": "Ambient"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListCategories(t *testing.T) {
	env := setupEnv(t)
	createCategory(t, env, "jazz")
	createCategory(t, env, "rock")

	w := doJSON(t, env, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	assert.Len(t, resp.Data, 2)
}

func TestGetCategory(t *testing.T) {
	env := setupEnv(t)
	category := createCategory(t, env, "jazz")

	w := doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/v1/categories/%d", category.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env, http.MethodGet, "/api/v1/categories/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
