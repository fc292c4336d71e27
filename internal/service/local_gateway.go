package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"phone-verify/internal/domain"
	"phone-verify/internal/logging"
	"phone-verify/internal/sms"
)

// LocalGatewayConfig configures a LocalGateway.
type LocalGatewayConfig struct {
	CodeLength int
	SessionTTL time.Duration
	// AutoVerify lists numbers that are verified instantly, without a code.
	AutoVerify []string
	// DevMode returns the plain code in SendResult.DevCode.
	DevMode bool
}

// LocalGateway generates codes itself and delivers them through an sms.Sender.
type LocalGateway struct {
	otps       *OTPStore
	sessions   *SessionStore
	sender     sms.Sender
	policy     *PhonePolicy
	autoVerify map[domain.PhoneNumber]struct{}
	codeLength int
	sessionTTL time.Duration
	devMode    bool
	logger     *logging.Logger
}

// NewLocalGateway wires a LocalGateway.
func NewLocalGateway(
	cfg LocalGatewayConfig,
	otps *OTPStore,
	sessions *SessionStore,
	sender sms.Sender,
	policy *PhonePolicy,
	logger *logging.Logger,
) *LocalGateway {
	if cfg.CodeLength < 1 {
		cfg.CodeLength = 6
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	auto := make(map[domain.PhoneNumber]struct{}, len(cfg.AutoVerify))
	for _, p := range cfg.AutoVerify {
		auto[domain.PhoneNumber(strings.TrimSpace(p))] = struct{}{}
	}
	return &LocalGateway{
		otps:       otps,
		sessions:   sessions,
		sender:     sender,
		policy:     policy,
		autoVerify: auto,
		codeLength: cfg.CodeLength,
		sessionTTL: cfg.SessionTTL,
		devMode:    cfg.DevMode,
		logger:     logger.WithComponent("gateway.local"),
	}
}

// RequestCode checks the phone policy, then either completes verification
// immediately for auto-verified numbers or issues and sends a code.
func (g *LocalGateway) RequestCode(ctx context.Context, phone domain.PhoneNumber, timeout time.Duration) (*domain.SendResult, error) {
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}
	if err := g.policy.Check(phone); err != nil {
		g.logger.Warn("code request refused", "phone", phone.Masked(), "error", err.Error())
		return nil, err
	}

	if _, ok := g.autoVerify[phone]; ok {
		cred := g.sessions.Issue(phone, "", g.sessionTTL)
		g.logger.Info("number verified without code", "phone", phone.Masked())
		return &domain.SendResult{
			Status:     domain.SendStatusCompleted,
			Credential: cred,
		}, nil
	}

	handle, code, expiresAt, err := g.otps.Issue(phone, g.codeLength, timeout)
	if err != nil {
		return nil, err
	}

	if err := g.sender.SendOTP(ctx, phone, code); err != nil {
		g.otps.Revoke(handle)
		g.logger.Error("failed to deliver code", "phone", phone.Masked(), "error", err.Error())
		return nil, fmt.Errorf("deliver code: %w", err)
	}

	g.logger.Info("code sent", "phone", phone.Masked(), "expires_at", expiresAt)

	res := &domain.SendResult{
		Status:    domain.SendStatusCodeSent,
		Handle:    handle,
		ExpiresAt: expiresAt,
	}
	if g.devMode {
		res.DevCode = code
	}
	return res, nil
}

// VerifyCode checks the code and issues a credential.
func (g *LocalGateway) VerifyCode(_ context.Context, handle domain.PendingHandle, code string) (*domain.Credential, error) {
	if handle.Empty() {
		return nil, domain.ErrNoPendingCode
	}
	if code == "" {
		return nil, domain.ErrCodeRequired
	}

	phone, err := g.otps.Verify(handle, code)
	if err != nil {
		g.logger.Warn("code verification failed", "error", err.Error())
		return nil, err
	}

	cred := g.sessions.Issue(phone, "", g.sessionTTL)
	g.logger.Info("number verified", "phone", phone.Masked())
	return cred, nil
}

// Sessions exposes the credential store for token introspection.
func (g *LocalGateway) Sessions() *SessionStore {
	return g.sessions
}
