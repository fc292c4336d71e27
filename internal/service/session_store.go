package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"phone-verify/internal/domain"
)

// SessionStore holds bearer credentials issued after a successful verification.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Credential
	nowF     func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Credential),
		nowF:     time.Now,
	}
}

// Issue creates a credential for phone valid for ttl.
func (s *SessionStore) Issue(phone domain.PhoneNumber, userID string, ttl time.Duration) *domain.Credential {
	cred := &domain.Credential{
		Token:     uuid.NewString(),
		Phone:     phone,
		UserID:    userID,
		ExpiresAt: s.nowF().Add(ttl),
	}

	s.mu.Lock()
	s.sessions[cred.Token] = cred
	s.mu.Unlock()

	return cred
}

// Lookup returns the credential for token if it exists and has not expired.
func (s *SessionStore) Lookup(token string) (*domain.Credential, error) {
	s.mu.RLock()
	cred, exists := s.sessions[token]
	s.mu.RUnlock()

	if !exists {
		return nil, domain.ErrTokenNotFound
	}
	if s.nowF().After(cred.ExpiresAt) {
		s.Revoke(token)
		return nil, domain.ErrTokenNotFound
	}

	c := *cred
	return &c, nil
}

// Revoke deletes a credential.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// RunCleanup removes expired credentials every interval until ctx is done.
func (s *SessionStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			now := s.nowF()
			for token, cred := range s.sessions {
				if now.After(cred.ExpiresAt) {
					delete(s.sessions, token)
				}
			}
			s.mu.Unlock()
		}
	}
}
