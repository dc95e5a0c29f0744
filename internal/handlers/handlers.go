// Package handlers contains the HTTP handlers for the REST API.
package handlers

import (
	"github.com/socialhub-app/backend/internal/auth"
	"github.com/socialhub-app/backend/internal/cache"
	"github.com/socialhub-app/backend/internal/websocket"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth     *auth.Service
	hub      *websocket.Hub
	notifier *websocket.Notifier
	relay    *websocket.Relay
	redis    *cache.RedisClient
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService *auth.Service, hub *websocket.Hub, notifier *websocket.Notifier, relay *websocket.Relay, redis *cache.RedisClient) *Handlers {
	return &Handlers{
		auth:     authService,
		hub:      hub,
		notifier: notifier,
		relay:    relay,
		redis:    redis,
	}
}
