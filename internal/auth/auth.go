// Package auth keeps the allowlist of Telegram users who may use the
// inventory assistant.
package auth

import (
	"sort"
	"sync"
	"time"
)

// Member is an allowlisted user.
type Member struct {
	ID       int64     `json:"id"`
	Username string    `json:"username,omitempty"`
	Name     string    `json:"name,omitempty"`
	AddedBy  int64     `json:"added_by,omitempty"`
	AddedAt  time.Time `json:"added_at,omitempty"`
}

type Repository interface {
	LoadAll() ([]Member, error)
	Upsert(m Member) error
	Remove(userID int64) error
}

type Service struct {
	mu      sync.RWMutex
	repo    Repository
	adminID int64
	members map[int64]Member
}

// NewWithRepo loads the stored allowlist and merges the ids configured in the
// environment. The admin is always allowed.
func NewWithRepo(repo Repository, initial []int64, adminID int64) (*Service, error) {
	s := &Service{repo: repo, adminID: adminID, members: make(map[int64]Member)}
	if repo != nil {
		members, err := repo.LoadAll()
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			s.members[m.ID] = m
		}
	}
	for _, id := range initial {
		if _, ok := s.members[id]; !ok {
			s.members[id] = Member{ID: id}
		}
	}
	if adminID != 0 {
		if _, ok := s.members[adminID]; !ok {
			s.members[adminID] = Member{ID: adminID}
		}
	}
	return s, nil
}

func (s *Service) IsAllowed(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[userID]
	return ok
}

func (s *Service) IsAdmin(userID int64) bool {
	return s.adminID != 0 && userID == s.adminID
}

func (s *Service) AdminID() int64 { return s.adminID }

func (s *Service) Allow(m Member) error {
	s.mu.Lock()
	s.members[m.ID] = m
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Upsert(m)
	}
	return nil
}

// Revoke removes a member. The admin cannot be revoked.
func (s *Service) Revoke(userID int64) error {
	if s.IsAdmin(userID) {
		return nil
	}
	s.mu.Lock()
	delete(s.members, userID)
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Remove(userID)
	}
	return nil
}

// List returns members ordered by id.
func (s *Service) List() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
