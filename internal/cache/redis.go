// Package cache provides a Redis-backed cache for unread counters.
// All helpers are nil-safe: without a configured Redis the callers fall
// back to counting in the database.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/socialhub-app/backend/internal/logger"
	"go.uber.org/zap"
)

const unreadCountTTL = 5 * time.Minute

// RedisClient wraps the redis.Client with centralized connection pooling
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates and initializes a Redis client. Returns an error if
// the initial ping fails.
func NewRedisClient(host, port, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Log.Info("Redis client connected", zap.String("address", client.Options().Addr))
	return &RedisClient{client: client}, nil
}

// Close closes the Redis connection gracefully
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

func unreadNotificationsKey(userID uint) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

func unreadMessagesKey(userID uint) string {
	return fmt.Sprintf("messages:unread:%d", userID)
}

// GetUnreadNotifications returns the cached unread notification count.
// The bool result reports a cache hit.
func (rc *RedisClient) GetUnreadNotifications(ctx context.Context, userID uint) (int64, bool) {
	return rc.getCount(ctx, unreadNotificationsKey(userID))
}

// SetUnreadNotifications caches the unread notification count.
func (rc *RedisClient) SetUnreadNotifications(ctx context.Context, userID uint, count int64) {
	rc.setCount(ctx, unreadNotificationsKey(userID), count)
}

// InvalidateUnreadNotifications drops the cached count after a mutation.
func (rc *RedisClient) InvalidateUnreadNotifications(ctx context.Context, userID uint) {
	rc.del(ctx, unreadNotificationsKey(userID))
}

// GetUnreadMessages returns the cached unread message count.
func (rc *RedisClient) GetUnreadMessages(ctx context.Context, userID uint) (int64, bool) {
	return rc.getCount(ctx, unreadMessagesKey(userID))
}

// SetUnreadMessages caches the unread message count.
func (rc *RedisClient) SetUnreadMessages(ctx context.Context, userID uint, count int64) {
	rc.setCount(ctx, unreadMessagesKey(userID), count)
}

// InvalidateUnreadMessages drops the cached count after a mutation.
func (rc *RedisClient) InvalidateUnreadMessages(ctx context.Context, userID uint) {
	rc.del(ctx, unreadMessagesKey(userID))
}

func (rc *RedisClient) getCount(ctx context.Context, key string) (int64, bool) {
	if rc == nil || rc.client == nil {
		return 0, false
	}
	val, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (rc *RedisClient) setCount(ctx context.Context, key string, count int64) {
	if rc == nil || rc.client == nil {
		return
	}
	if err := rc.client.Set(ctx, key, count, unreadCountTTL).Err(); err != nil {
		logger.WarnErr("Failed to cache unread count", err)
	}
}

func (rc *RedisClient) del(ctx context.Context, keys ...string) {
	if rc == nil || rc.client == nil {
		return
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		logger.WarnErr("Failed to invalidate unread count", err)
	}
}
