package gateway

import "sync"

// Registry maps a user id to its single active connection. All operations are
// thread-safe via sync.RWMutex. The registry tracks presence only; room
// membership lives in Rooms so the two concerns stay independently testable.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Client
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Client)}
}

// Register records or replaces the mapping for the client's user. A later
// registration wins: the prior mapping is overwritten without closing the
// superseded transport, and the evicted client is returned so callers can log
// it. Returns nil when the user had no prior connection.
func (r *Registry) Register(client *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.conns[client.UserID]
	r.conns[client.UserID] = client
	return prev
}

// Unregister removes the mapping for userID, but only if it still points at
// the given client. A stale disconnect from a superseded connection must not
// evict the user's fresh session.
func (r *Registry) Unregister(userID string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conns[userID] == client {
		delete(r.conns, userID)
	}
}

// IsOnline reports whether the user has a live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// Resolve returns the user's current connection, or nil when offline.
func (r *Registry) Resolve(userID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[userID]
}

// Count returns the number of online users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
