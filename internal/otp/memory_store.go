package otp

import (
	"context"
	"sync"
	"time"

	"taskhub_backend/internal/models"
)

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is the reference in-process implementation, used in tests and
// when no redis is configured. Expired entries are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock overrides the time source. Tests use it to expire codes without
// sleeping.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Save(_ context.Context, email string, purpose models.OTPPurpose, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key(email, purpose)] = memoryEntry{
		code:      code,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, email string, purpose models.OTPPurpose, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(email, purpose)
	entry, ok := s.entries[k]
	if !ok {
		return ErrCodeMismatch
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, k)
		return ErrCodeMismatch
	}
	if entry.code != code {
		return ErrCodeMismatch
	}

	delete(s.entries, k)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, email string, purpose models.OTPPurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key(email, purpose))
	return nil
}
