package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/auth"
	"github.com/socialhub-app/backend/internal/database"
	"github.com/socialhub-app/backend/internal/logger"
	"github.com/socialhub-app/backend/internal/middleware"
	"github.com/socialhub-app/backend/internal/models"
	"github.com/socialhub-app/backend/internal/websocket"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	_ = logger.Initialize("error", "")
	os.Exit(m.Run())
}

type testEnv struct {
	router *gin.Engine
	auth   *auth.Service
	hub    *websocket.Hub
	db     *gorm.DB
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Follow{},
		&models.Category{}, &models.Post{}, &models.PostLike{}, &models.Comment{},
		&models.Message{}, &models.Notification{},
	))
	database.DB = db

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
	})

	authSvc := auth.NewService([]byte("test-secret"))
	notifier := websocket.NewNotifier(hub, db, nil)
	relay := websocket.NewRelay(db, hub, notifier, nil)
	h := NewHandlers(authSvc, hub, notifier, relay, nil)

	router := gin.New()
	registerRoutes(router, h, authSvc)

	return &testEnv{router: router, auth: authSvc, hub: hub, db: db}
}

// registerRoutes mirrors the server's route table for the endpoints under test
func registerRoutes(router *gin.Engine, h *Handlers, authSvc *auth.Service) {
	api := router.Group("/api/v1")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	public := api.Group("")
	public.Use(middleware.OptionalAuth(authSvc))
	{
		public.GET("/posts/recent", h.GetRecentPosts)
		public.GET("/posts/search", h.SearchPosts)
		public.GET("/posts/:id", h.GetPost)
		public.GET("/posts/:id/comments", h.GetPostComments)
		public.GET("/posts/:id/likes", h.GetPostLikes)
		public.GET("/categories", h.ListCategories)
		public.GET("/categories/:id", h.GetCategory)
		public.GET("/categories/:id/posts", h.GetPostsByCategory)
		public.GET("/users/search", h.SearchUsers)
		public.GET("/users/:id", h.GetUserProfile)
		public.GET("/users/:id/posts", h.GetUserPosts)
		public.GET("/users/:id/followers", h.GetFollowers)
		public.GET("/users/:id/following", h.GetFollowing)
	}

	authed := api.Group("")
	authed.Use(middleware.Auth(authSvc))
	{
		authed.GET("/users/profile", h.GetProfile)
		authed.PUT("/users/profile", h.UpdateProfile)
		authed.POST("/users/:id/follow", h.FollowUser)
		authed.DELETE("/users/:id/follow", h.UnfollowUser)

		authed.POST("/categories", h.CreateCategory)

		authed.POST("/posts", h.CreatePost)
		authed.GET("/posts/feed", h.GetFeed)
		authed.PUT("/posts/:id", h.UpdatePost)
		authed.DELETE("/posts/:id", h.DeletePost)
		authed.POST("/posts/:id/like", h.LikePost)
		authed.DELETE("/posts/:id/like", h.UnlikePost)
		authed.POST("/posts/:id/comments", h.CreateComment)
		authed.DELETE("/comments/:id", h.DeleteComment)

		authed.GET("/notifications", h.GetNotifications)
		authed.GET("/notifications/unread-count", h.GetUnreadNotificationCount)
		authed.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
		authed.PUT("/notifications/:id/read", h.MarkNotificationRead)
		authed.DELETE("/notifications/:id", h.DeleteNotification)
		authed.DELETE("/notifications", h.DeleteAllNotifications)

		authed.POST("/messages", h.SendMessage)
		authed.GET("/messages/conversations", h.GetConversations)
		authed.GET("/messages/conversations/:id", h.GetConversation)
		authed.PUT("/messages/conversations/:id/read", h.MarkConversationRead)
		authed.GET("/messages/unread-count", h.GetUnreadMessageCount)
		authed.DELETE("/messages/:id", h.DeleteMessage)
	}
}

// registerUser creates an account and returns the user plus a valid token
func registerUser(t *testing.T, env *testEnv, username string) (models.User, string) {
	t.Helper()

	resp, err := env.auth.Register(auth.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return resp.User, resp.Token
}

// doJSON performs a request with an optional bearer token and JSON body
func doJSON(t *testing.T, env *testEnv, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

// createCategory inserts a category directly
func createCategory(t *testing.T, env *testEnv, name string) models.Category {
	t.Helper()

	category := models.Category{Name: name}
	require.NoError(t, env.db.Create(&category).Error)
	return category
}

// createPost inserts a post directly
func createPost(t *testing.T, env *testEnv, userID, categoryID uint, description string) models.Post {
	t.Helper()

	post := models.Post{UserID: userID, CategoryID: categoryID, Description: description}
	require.NoError(t, env.db.Create(&post).Error)
	return post
}

// waitForNotification waits for the async fan-out to persist a row
func waitForNotification(t *testing.T, env *testEnv, userID uint, nt models.NotificationType) {
	t.Helper()

	require.Eventually(t, func() bool {
		var count int64
		env.db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ?", userID, nt).
			Count(&count)
		return count > 0
	}, 2*time.Second, 20*time.Millisecond, "expected a %s notification for user %d", nt, userID)
}
