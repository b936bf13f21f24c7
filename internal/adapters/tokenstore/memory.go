package tokenstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikey/email-triage/internal/auth"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a session is not in the store
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned when a session has passed its TTL
	ErrExpired = errors.New("session expired")
)

// MemoryStore is an in-memory implementation of the auth.TokenStore
// interface with background TTL eviction.
type MemoryStore struct {
	sessions    map[string]*auth.Session
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(logger *zap.Logger, cleanupFreq time.Duration) *MemoryStore {
	store := &MemoryStore{
		sessions:    make(map[string]*auth.Session),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go store.startCleanupTask()

	return store
}

// Get retrieves a live session
func (s *MemoryStore) Get(ctx context.Context, token string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrExpired
	}

	return session, nil
}

// Set stores a session
func (s *MemoryStore) Set(ctx context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Token] = session
	return nil
}

// Delete removes a session
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// Cleanup removes expired sessions
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			expiredCount++
		}
	}

	s.logger.Debug("Cleaned up expired sessions", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired sessions
func (s *MemoryStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up sessions", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (s *MemoryStore) Stop() {
	close(s.stopCh)
}
