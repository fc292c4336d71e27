package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"

	"phone-verify/internal/domain"
)

// DefaultMaxAttempts is the number of wrong codes accepted per handle.
const DefaultMaxAttempts = 3

// OTPStore keeps pending codes in memory, keyed by handle.
// Only a hash of each code is held.
type OTPStore struct {
	mu          sync.Mutex
	codes       map[domain.PendingHandle]*OTPData
	byPhone     map[domain.PhoneNumber]domain.PendingHandle
	maxAttempts int
	nowF        func() time.Time
}

// OTPData describes one pending code.
type OTPData struct {
	Phone     domain.PhoneNumber
	CodeHash  string
	ExpiresAt time.Time
	Attempts  int
}

// NewOTPStore creates an empty store. maxAttempts < 1 uses DefaultMaxAttempts.
func NewOTPStore(maxAttempts int) *OTPStore {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &OTPStore{
		codes:       make(map[domain.PendingHandle]*OTPData),
		byPhone:     make(map[domain.PhoneNumber]domain.PendingHandle),
		maxAttempts: maxAttempts,
		nowF:        time.Now,
	}
}

// Issue generates a code of the given length for phone, valid for ttl.
// Any code previously issued for the same phone is revoked.
func (s *OTPStore) Issue(phone domain.PhoneNumber, length int, ttl time.Duration) (domain.PendingHandle, string, time.Time, error) {
	code, err := generateRandomCode(length)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate code: %w", err)
	}
	handle := domain.PendingHandle(uuid.NewString())
	expiresAt := s.nowF().Add(ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byPhone[phone]; ok {
		delete(s.codes, prev)
	}
	s.codes[handle] = &OTPData{
		Phone:     phone,
		CodeHash:  hashCode(code),
		ExpiresAt: expiresAt,
	}
	s.byPhone[phone] = handle

	return handle, code, expiresAt, nil
}

// Verify checks code against the handle and consumes the handle on success.
func (s *OTPStore) Verify(handle domain.PendingHandle, code string) (domain.PhoneNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, exists := s.codes[handle]
	if !exists {
		return "", domain.ErrHandleNotFound
	}

	if s.nowF().After(data.ExpiresAt) {
		s.deleteLocked(handle)
		return "", domain.ErrOTPExpired
	}

	if data.Attempts >= s.maxAttempts {
		s.deleteLocked(handle)
		return "", domain.ErrOTPMaxAttempts
	}

	if !codeEqual(code, data.CodeHash) {
		data.Attempts++
		return "", domain.ErrInvalidOTP
	}

	s.deleteLocked(handle)
	return data.Phone, nil
}

// Revoke drops a pending code.
func (s *OTPStore) Revoke(handle domain.PendingHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(handle)
}

// Len returns the number of pending codes, expired ones included.
func (s *OTPStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// RunCleanup removes expired codes every interval until ctx is done.
func (s *OTPStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *OTPStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowF()
	for handle, data := range s.codes {
		if now.After(data.ExpiresAt) {
			s.deleteLocked(handle)
		}
	}
}

func (s *OTPStore) deleteLocked(handle domain.PendingHandle) {
	data, ok := s.codes[handle]
	if !ok {
		return
	}
	delete(s.codes, handle)
	if s.byPhone[data.Phone] == handle {
		delete(s.byPhone, data.Phone)
	}
}

// generateRandomCode returns a random numeric code of the given length.
func generateRandomCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}

func hashCode(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

func codeEqual(provided, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(hashCode(provided)), []byte(storedHash)) == 1
}
