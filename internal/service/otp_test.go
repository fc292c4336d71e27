package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"phone-verify/internal/domain"
)

const testPhone = domain.PhoneNumber("+919876543210")

func newTestOTPStore(maxAttempts int, now *time.Time) *OTPStore {
	s := NewOTPStore(maxAttempts)
	s.nowF = func() time.Time { return *now }
	return s
}

func TestOTPStore_IssueAndVerify(t *testing.T) {
	now := time.Now()
	s := newTestOTPStore(3, &now)

	handle, code, expiresAt, err := s.Issue(testPhone, 6, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if handle.Empty() {
		t.Fatal("Issue returned empty handle")
	}
	if len(code) != 6 {
		t.Errorf("code length = %d, want 6", len(code))
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			t.Errorf("code contains non-digit: %c", c)
		}
	}
	if !expiresAt.Equal(now.Add(time.Minute)) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, now.Add(time.Minute))
	}

	phone, err := s.Verify(handle, code)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if phone != testPhone {
		t.Errorf("phone = %q, want %q", phone, testPhone)
	}

	if _, err := s.Verify(handle, code); !errors.Is(err, domain.ErrHandleNotFound) {
		t.Errorf("second Verify error = %v, want ErrHandleNotFound", err)
	}
}

func TestOTPStore_StoresOnlyHash(t *testing.T) {
	now := time.Now()
	s := newTestOTPStore(3, &now)

	handle, code, _, err := s.Issue(testPhone, 6, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if s.codes[handle].CodeHash == code {
		t.Error("store should not keep the plain code")
	}
}

func TestOTPStore_NewIssueRevokesPrevious(t *testing.T) {
	now := time.Now()
	s := newTestOTPStore(3, &now)

	first, firstCode, _, _ := s.Issue(testPhone, 6, time.Minute)
	second, secondCode, _, _ := s.Issue(testPhone, 6, time.Minute)

	if first == second {
		t.Fatal("handles should differ")
	}
	if _, err := s.Verify(first, firstCode); !errors.Is(err, domain.ErrHandleNotFound) {
		t.Errorf("Verify(old handle) error = %v, want ErrHandleNotFound", err)
	}
	if _, err := s.Verify(second, secondCode); err != nil {
		t.Errorf("Verify(new handle): %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestOTPStore_Expired(t *testing.T) {
	now := time.Now()
	s := newTestOTPStore(3, &now)

	handle, code, _, _ := s.Issue(testPhone, 6, time.Minute)
	now = now.Add(61 * time.Second)

	if _, err := s.Verify(handle, code); !errors.Is(err, domain.ErrOTPExpired) {
		t.Errorf("Verify error = %v, want ErrOTPExpired", err)
	}
	if s.Len() != 0 {
		t.Errorf("expired code should be removed, Len() = %d", s.Len())
	}
}

func TestOTPStore_MaxAttempts(t *testing.T) {
	now := time.Now()
	s := newTestOTPStore(2, &now)

	handle, code, _, _ := s.Issue(testPhone, 6, time.Minute)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < 2; i++ {
		if _, err := s.Verify(handle, wrong); !errors.Is(err, domain.ErrInvalidOTP) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidOTP", i+1, err)
		}
	}
	if _, err := s.Verify(handle, code); !errors.Is(err, domain.ErrOTPMaxAttempts) {
		t.Errorf("Verify after max attempts error = %v, want ErrOTPMaxAttempts", err)
	}
	if _, err := s.Verify(handle, code); !errors.Is(err, domain.ErrHandleNotFound) {
		t.Errorf("handle should be gone, error = %v", err)
	}
}

func TestOTPStore_RunCleanup(t *testing.T) {
	now := time.Now()
	s := newTestOTPStore(3, &now)

	s.Issue(testPhone, 6, time.Minute)
	s.Issue("+919876543211", 6, time.Hour)
	now = now.Add(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunCleanup(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for s.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if s.Len() != 1 {
		t.Errorf("Len() = %d after cleanup, want 1", s.Len())
	}
}

func TestGenerateRandomCode_Length(t *testing.T) {
	for _, n := range []int{1, 4, 6, 8} {
		code, err := generateRandomCode(n)
		if err != nil {
			t.Fatalf("generateRandomCode(%d): %v", n, err)
		}
		if len(code) != n {
			t.Errorf("len = %d, want %d", len(code), n)
		}
	}
}
