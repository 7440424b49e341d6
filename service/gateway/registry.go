package gateway

import (
	"sort"
	"sync"
)

// Registry is the in-memory presence map: user id -> live client. It is owned
// by the gateway server and injected where needed, never a package global, so
// tests can run isolated instances. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[string]*Client)}
}

// Register binds the user to this client. If the user already had a live
// client the old one is returned so the caller can close it: the latest
// connection wins.
func (r *Registry) Register(c *Client) (displaced *Client) {
	if c == nil || c.UserID == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.byUser[c.UserID]
	if old == c {
		return nil
	}
	r.byUser[c.UserID] = c
	return old
}

// Unregister removes the user's entry, but only if it still points at the
// given connection. A stale disconnect arriving after a reconnect must not
// evict the newer client.
func (r *Registry) Unregister(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byUser[userID]
	if !ok {
		return false
	}
	if connID != "" && cur.ConnID != connID {
		return false
	}
	delete(r.byUser, userID)
	return true
}

// Lookup resolves the user's live client, if any.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

// ListOnline returns a sorted snapshot of the online user ids.
func (r *Registry) ListOnline() []string {
	r.mu.RLock()
	users := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		users = append(users, u)
	}
	r.mu.RUnlock()
	sort.Strings(users)
	return users
}

// Snapshot returns every live client; used for broadcasts.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]*Client, 0, len(r.byUser))
	for _, c := range r.byUser {
		conns = append(conns, c)
	}
	return conns
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
