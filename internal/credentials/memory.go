package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/prudhvinik1/grftalk/internal/models"
)

// MemoryStore is a process-local Store with absolute expiry.
type MemoryStore struct {
	mu      sync.Mutex
	session *models.Session
	now     func() time.Time
}

// NewMemoryStore returns an empty store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now}
}

func (s *MemoryStore) SetSession(ctx context.Context, token string, ttl time.Duration) error {
	if err := checkSession(token, ttl); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = models.NewSession(token, s.now(), ttl)
	return nil
}

func (s *MemoryStore) SessionToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return "", ErrNoSession
	}
	if s.session.Expired(s.now()) {
		s.session = nil
		return "", ErrNoSession
	}
	return s.session.Token, nil
}

func (s *MemoryStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
