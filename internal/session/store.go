package session

import (
	"context"
	"sync"
	"time"
)

// Store holds server-side session state keyed by token. Get returns
// (nil, nil) for unknown or expired tokens.
type Store interface {
	Get(ctx context.Context, token string) (*User, error)
	Set(ctx context.Context, token string, u *User) error
	Delete(ctx context.Context, token string) error
}

type memoryEntry struct {
	user      User
	expiresAt time.Time
}

// sweepInterval bounds how often Set scans for abandoned sessions.
const sweepInterval = time.Minute

// MemoryStore is the default in-process store. Single-instance assumption;
// deployments that scale horizontally use the Redis store instead.
// Expired entries are dropped on read and swept opportunistically on write,
// so sessions never outlive the process rent-free.
type MemoryStore struct {
	mu        sync.RWMutex
	ttl       time.Duration
	entries   map[string]memoryEntry
	nextSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, token string) (*User, error) {
	s.mu.RLock()
	e, ok := s.entries[token]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, token)
		s.mu.Unlock()
		return nil, nil
	}
	u := e.user
	return &u, nil
}

func (s *MemoryStore) Set(_ context.Context, token string, u *User) error {
	s.mu.Lock()
	now := time.Now()
	if now.After(s.nextSweep) {
		for tok, e := range s.entries {
			if now.After(e.expiresAt) {
				delete(s.entries, tok)
			}
		}
		s.nextSweep = now.Add(sweepInterval)
	}
	s.entries[token] = memoryEntry{user: *u, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
	return nil
}
