package session

import (
	"sync"

	"pharmacy-assistant/internal/conversation"
	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/purchases"
)

// Tables are the data configured at start-up for every new session.
type Tables struct {
	Inventory *inventory.Inventory
	Purchases *purchases.History
}

// Registry maps chats to their current session.
type Registry struct {
	mu       sync.Mutex
	store    conversation.Store
	sessions map[int64]*Session
	shared   Tables
}

func NewRegistry(store conversation.Store) *Registry {
	return &Registry{store: store, sessions: make(map[int64]*Session)}
}

// Get returns the chat's session, opening a new one on first use.
func (r *Registry) Get(chatID int64) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[chatID]; ok {
		return s, nil
	}
	return r.openLocked(chatID)
}

// Restart replaces the chat's session with a fresh one.
func (r *Registry) Restart(chatID int64) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openLocked(chatID)
}

func (r *Registry) openLocked(chatID int64) (*Session, error) {
	s, err := Open(r.store, "", r.shared)
	if err != nil {
		return nil, err
	}
	r.sessions[chatID] = s
	return s, nil
}

// SetShared replaces the shared tables. Nil fields leave the current value.
// Sessions still on the shared copy are refreshed.
func (r *Registry) SetShared(t Tables) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.Inventory != nil {
		r.shared.Inventory = t.Inventory
	}
	if t.Purchases != nil {
		r.shared.Purchases = t.Purchases
	}
	for _, s := range r.sessions {
		s.applyShared(t)
	}
}

func (r *Registry) Shared() Tables {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shared
}

func (r *Registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
