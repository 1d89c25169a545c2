// Package session holds the per-session context that every handler receives:
// the session id, the loaded tables and the conversation.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"pharmacy-assistant/internal/conversation"
	"pharmacy-assistant/internal/inventory"
	"pharmacy-assistant/internal/purchases"
)

// Session is one conversational lifetime. Tables that came from the shared
// source stay linked to it until the session loads or edits its own.
type Session struct {
	ID           string
	Conversation *conversation.Conversation

	mu              sync.RWMutex
	inventory       *inventory.Inventory
	purchases       *purchases.History
	sharedInventory bool
	sharedPurchases bool
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// Open loads (or seeds) the conversation for id and attaches copies of the
// shared tables. An empty id gets a new one.
func Open(store conversation.Store, id string, shared Tables) (*Session, error) {
	if id == "" {
		id = NewID()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}
	conv, err := store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	s := &Session{ID: id, Conversation: conv}
	s.applyShared(shared)
	return s, nil
}

func (s *Session) Inventory() *inventory.Inventory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventory
}

func (s *Session) Purchases() *purchases.History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.purchases
}

// SetInventory replaces the inventory with one owned by this session.
func (s *Session) SetInventory(inv *inventory.Inventory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory = inv
	s.sharedInventory = false
}

// SetPurchases replaces the purchase history with one owned by this session.
func (s *Session) SetPurchases(h *purchases.History) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = h
	s.sharedPurchases = false
}

// AddMedicine appends a row. A session without inventory starts an empty one.
func (s *Session) AddMedicine(m inventory.Medicine) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inventory == nil {
		s.inventory = inventory.New()
	}
	s.inventory.Add(m)
	s.sharedInventory = false
	return s.inventory.Len()
}

// applyShared installs copies of the shared tables where the session has no
// data of its own.
func (s *Session) applyShared(t Tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Inventory != nil && (s.inventory == nil || s.sharedInventory) {
		s.inventory = t.Inventory.Clone()
		s.sharedInventory = true
	}
	if t.Purchases != nil && (s.purchases == nil || s.sharedPurchases) {
		s.purchases = t.Purchases.Clone()
		s.sharedPurchases = true
	}
}
