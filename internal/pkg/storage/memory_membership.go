package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryMembershipStore is an in-process MembershipStore. It backs
// tests and local runs without a database.
type MemoryMembershipStore struct {
	mu      sync.RWMutex
	admins  map[int64]struct{}
	codes   map[string]*Code
	members map[int64]time.Time
}

func NewMemoryMembershipStore() *MemoryMembershipStore {
	return &MemoryMembershipStore{
		admins:  make(map[int64]struct{}),
		codes:   make(map[string]*Code),
		members: make(map[int64]time.Time),
	}
}

func (s *MemoryMembershipStore) Admins(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.admins))
	for id := range s.admins {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryMembershipStore) IsAdmin(_ context.Context, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.admins[userID]
	return ok, nil
}

func (s *MemoryMembershipStore) AddAdmin(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[userID] = struct{}{}
	return nil
}

func (s *MemoryMembershipStore) RemoveAdmin(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.admins, userID)
	return nil
}

func (s *MemoryMembershipStore) CreateCode(_ context.Context, code string, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code]; ok {
		return ErrCodeExists
	}
	s.codes[code] = &Code{Code: code, Minutes: minutes, CreatedAt: time.Now()}
	return nil
}

func (s *MemoryMembershipStore) GetCode(_ context.Context, code string) (*Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.codes[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *MemoryMembershipStore) MarkCodeUsed(_ context.Context, code string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[code]
	if !ok {
		return ErrCodeNotFound
	}
	if c.UsedBy != 0 {
		return ErrCodeUsed
	}
	now := time.Now()
	c.UsedBy = userID
	c.UsedAt = &now
	return nil
}

func (s *MemoryMembershipStore) MemberExpiry(_ context.Context, userID int64) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.members[userID]
	if !ok {
		return nil, nil
	}
	return &expiry, nil
}

func (s *MemoryMembershipStore) SetMemberExpiry(_ context.Context, userID int64, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[userID] = expiry
	return nil
}

func (s *MemoryMembershipStore) Close() error { return nil }
