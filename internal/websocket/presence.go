// Package websocket tracks which users currently hold a live connection.
package websocket

import (
	"sync"
)

// Registry maps each user to their single active connection. A user who
// connects twice keeps only the newer connection eligible for pushes; the
// older socket stays open but is no longer addressable. All access goes
// through the mutex so HTTP handlers can query it concurrently with the
// hub's event loop.
type Registry struct {
	mu    sync.RWMutex
	users map[uint]*Client
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[uint]*Client),
	}
}

// Register records client as the user's active connection. It returns the
// connection it displaced, or nil when the user was previously offline.
func (r *Registry) Register(client *Client) (replaced *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced = r.users[client.UserID]
	r.users[client.UserID] = client
	return replaced
}

// Unregister removes the mapping, but only if client is still the user's
// active connection. Unregistering twice, or unregistering a connection
// that was already displaced, is a no-op. Returns whether the user went
// offline as a result.
func (r *Registry) Unregister(client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.users[client.UserID]; ok && current == client {
		delete(r.users, client.UserID)
		return true
	}
	return false
}

// Lookup returns the user's active connection, if any
func (r *Registry) Lookup(userID uint) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.users[userID]
	return client, ok
}

// IsOnline reports whether the user has an active connection
func (r *Registry) IsOnline(userID uint) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// OnlineUsers returns the IDs of every registered user
func (r *Registry) OnlineUsers() []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of registered users
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
