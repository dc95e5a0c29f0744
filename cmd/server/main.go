package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/socialhub-app/backend/internal/auth"
	"github.com/socialhub-app/backend/internal/cache"
	"github.com/socialhub-app/backend/internal/config"
	"github.com/socialhub-app/backend/internal/database"
	"github.com/socialhub-app/backend/internal/handlers"
	"github.com/socialhub-app/backend/internal/logger"
	"github.com/socialhub-app/backend/internal/metrics"
	"github.com/socialhub-app/backend/internal/middleware"
	"github.com/socialhub-app/backend/internal/websocket"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	metrics.Initialize()

	if err := database.Initialize(cfg.DatabaseURL); err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	// the cache is optional, everything falls back to the database without it
	var redisClient *cache.RedisClient
	if cfg.RedisHost != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	authService := auth.NewService(cfg.JWTSecret)

	hub := websocket.NewHub()
	go hub.Run()

	notifier := websocket.NewNotifier(hub, database.DB, redisClient)
	relay := websocket.NewRelay(database.DB, hub, notifier, redisClient)
	relay.RegisterHandlers(hub)

	wsHandler := websocket.NewHandler(hub, authService)
	h := handlers.NewHandlers(authService, hub, notifier, relay, redisClient)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbState := "ok"
		if err := database.Health(); err != nil {
			status = http.StatusServiceUnavailable
			dbState = err.Error()
		}
		c.JSON(status, gin.H{
			"status":    "ok",
			"database":  dbState,
			"timestamp": time.Now().UTC(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
		}

		public := api.Group("")
		public.Use(middleware.OptionalAuth(authService))
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
		authed.Use(middleware.Auth(authService))
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

		ws := api.Group("/ws")
		{
			// auth happens inside the handler via ?token=... or Authorization header
			ws.GET("", wsHandler.HandleWebSocket)
			ws.GET("/connect", wsHandler.HandleWebSocket)
			ws.GET("/metrics", middleware.Auth(authService), wsHandler.HandleMetrics)
			ws.POST("/online", middleware.Auth(authService), wsHandler.HandleOnlineStatus)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server listening", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := hub.Shutdown(ctx); err != nil {
		logger.Log.Warn("websocket shutdown incomplete", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}

	logger.Log.Info("server exited")
}
