package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"phone-verify/internal/domain"
	"phone-verify/internal/logging"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  map[domain.PhoneNumber]string
	calls int
	err   error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(map[domain.PhoneNumber]string)}
}

func (s *recordingSender) SendOTP(_ context.Context, phone domain.PhoneNumber, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.sent[phone] = code
	return nil
}

func (s *recordingSender) codeFor(phone domain.PhoneNumber) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[phone]
}

func newTestLocalGateway(cfg LocalGatewayConfig, sender *recordingSender, policy *PhonePolicy) *LocalGateway {
	return NewLocalGateway(cfg, NewOTPStore(3), NewSessionStore(), sender, policy, logging.NopLogger())
}

func TestLocalGateway_SendAndVerify(t *testing.T) {
	ctx := context.Background()
	sender := newRecordingSender()
	g := newTestLocalGateway(LocalGatewayConfig{CodeLength: 6, SessionTTL: time.Hour}, sender, nil)

	res, err := g.RequestCode(ctx, testPhone, 60*time.Second)
	if err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	if res.Status != domain.SendStatusCodeSent {
		t.Errorf("Status = %q, want %q", res.Status, domain.SendStatusCodeSent)
	}
	if res.Handle.Empty() {
		t.Fatal("Handle should be set")
	}
	if res.DevCode != "" {
		t.Error("DevCode should be empty outside dev mode")
	}
	if time.Until(res.ExpiresAt) > 60*time.Second || time.Until(res.ExpiresAt) < 50*time.Second {
		t.Errorf("ExpiresAt = %v, want about 60s from now", res.ExpiresAt)
	}

	code := sender.codeFor(testPhone)
	cred, err := g.VerifyCode(ctx, res.Handle, code)
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if cred.Phone != testPhone || cred.Token == "" {
		t.Errorf("credential = %+v", cred)
	}
	if _, err := g.Sessions().Lookup(cred.Token); err != nil {
		t.Errorf("issued credential not found: %v", err)
	}
}

func TestLocalGateway_WrongCode(t *testing.T) {
	ctx := context.Background()
	sender := newRecordingSender()
	g := newTestLocalGateway(LocalGatewayConfig{}, sender, nil)

	res, err := g.RequestCode(ctx, testPhone, time.Minute)
	if err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	wrong := "000000"
	if sender.codeFor(testPhone) == wrong {
		wrong = "111111"
	}

	_, err = g.VerifyCode(ctx, res.Handle, wrong)
	if domain.Classify(err) != domain.FailureCodeMismatch {
		t.Errorf("VerifyCode error = %v, want code mismatch", err)
	}

	// The handle survives a wrong code.
	if _, err := g.VerifyCode(ctx, res.Handle, sender.codeFor(testPhone)); err != nil {
		t.Errorf("VerifyCode with the right code after a miss: %v", err)
	}
}

func TestLocalGateway_DevMode(t *testing.T) {
	sender := newRecordingSender()
	g := newTestLocalGateway(LocalGatewayConfig{DevMode: true, CodeLength: 4}, sender, nil)

	res, err := g.RequestCode(context.Background(), testPhone, time.Minute)
	if err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	if res.DevCode == "" || res.DevCode != sender.codeFor(testPhone) {
		t.Errorf("DevCode = %q, sent %q", res.DevCode, sender.codeFor(testPhone))
	}
	if len(res.DevCode) != 4 {
		t.Errorf("len(DevCode) = %d, want 4", len(res.DevCode))
	}
}

func TestLocalGateway_AutoVerify(t *testing.T) {
	sender := newRecordingSender()
	g := newTestLocalGateway(LocalGatewayConfig{AutoVerify: []string{" +919876543210 "}}, sender, nil)

	res, err := g.RequestCode(context.Background(), testPhone, time.Minute)
	if err != nil {
		t.Fatalf("RequestCode: %v", err)
	}
	if res.Status != domain.SendStatusCompleted {
		t.Errorf("Status = %q, want %q", res.Status, domain.SendStatusCompleted)
	}
	if res.Credential == nil || res.Credential.Phone != testPhone {
		t.Errorf("Credential = %+v", res.Credential)
	}
	if sender.calls != 0 {
		t.Errorf("sender called %d times, want 0", sender.calls)
	}
}

func TestLocalGateway_PolicyRefusal(t *testing.T) {
	sender := newRecordingSender()
	g := newTestLocalGateway(LocalGatewayConfig{}, sender, NewPhonePolicy([]string{testPhone.String()}, nil))

	_, err := g.RequestCode(context.Background(), testPhone, time.Minute)
	if !errors.Is(err, domain.ErrPhoneBlocked) {
		t.Errorf("RequestCode error = %v, want ErrPhoneBlocked", err)
	}
	if sender.calls != 0 {
		t.Errorf("sender called %d times, want 0", sender.calls)
	}
}

func TestLocalGateway_SendFailureRevokesCode(t *testing.T) {
	sender := newRecordingSender()
	sender.err = domain.ErrNetwork
	otps := NewOTPStore(3)
	g := NewLocalGateway(LocalGatewayConfig{}, otps, NewSessionStore(), sender, nil, logging.NopLogger())

	_, err := g.RequestCode(context.Background(), testPhone, time.Minute)
	if domain.Classify(err) != domain.FailureNetwork {
		t.Errorf("RequestCode error = %v, want network failure", err)
	}
	if otps.Len() != 0 {
		t.Errorf("OTPStore.Len() = %d, want 0", otps.Len())
	}
}

func TestLocalGateway_VerifyPreconditions(t *testing.T) {
	g := newTestLocalGateway(LocalGatewayConfig{}, newRecordingSender(), nil)

	if _, err := g.VerifyCode(context.Background(), "", "123456"); !errors.Is(err, domain.ErrNoPendingCode) {
		t.Errorf("empty handle error = %v, want ErrNoPendingCode", err)
	}
	if _, err := g.VerifyCode(context.Background(), "h", ""); !errors.Is(err, domain.ErrCodeRequired) {
		t.Errorf("empty code error = %v, want ErrCodeRequired", err)
	}
	if _, err := g.VerifyCode(context.Background(), "unknown", "123456"); !errors.Is(err, domain.ErrHandleNotFound) {
		t.Errorf("unknown handle error = %v, want ErrHandleNotFound", err)
	}
	if _, err := g.RequestCode(context.Background(), "", time.Minute); !errors.Is(err, domain.ErrPhoneRequired) {
		t.Errorf("empty phone error = %v, want ErrPhoneRequired", err)
	}
}
