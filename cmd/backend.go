package main

import (
	"context"
	"fmt"

	"phone-verify/internal/config"
	"phone-verify/internal/logging"
	"phone-verify/internal/service"
	"phone-verify/internal/sms"
)

// backend is the gateway selected by GATEWAY_BACKEND together with the
// stores it owns, if any.
type backend struct {
	gateway  service.Gateway
	otps     *service.OTPStore
	sessions *service.SessionStore
}

func newBackend(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*backend, error) {
	policy := service.NewPhonePolicy(cfg.BlockedPhoneList(), cfg.AllowedPrefixList())

	switch cfg.GatewayBackend {
	case config.BackendHTTP:
		logger.Info("using remote gateway", "url", cfg.GatewayURL)
		return &backend{gateway: service.NewHTTPGateway(cfg.GatewayURL)}, nil

	case config.BackendZitadel:
		api, err := service.NewZitadelClient(ctx, service.ZitadelConfig{
			Domain:  cfg.ZitadelDomain,
			PAT:     cfg.ZitadelPAT,
			KeyPath: cfg.ZitadelKeyPath,
			OrgID:   cfg.ZitadelOrgID,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Zitadel client: %w", err)
		}
		return &backend{gateway: service.NewZitadelGateway(api, policy, cfg.SessionTTL(), logger)}, nil

	default:
		var sender sms.Sender
		if cfg.DevOTP() {
			logger.Warn("dev OTP mode: codes are written to the log, not sent by SMS")
			sender = sms.NewLogSender(logger)
		} else {
			sender = sms.NewSMSLocalClient(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
		}

		otps := service.NewOTPStore(cfg.OTPMaxAttempts)
		sessions := service.NewSessionStore()
		gw := service.NewLocalGateway(service.LocalGatewayConfig{
			CodeLength: cfg.CodeLength,
			SessionTTL: cfg.SessionTTL(),
			AutoVerify: cfg.AutoVerifyPhoneList(),
			DevMode:    cfg.OTPReturnToClient,
		}, otps, sessions, sender, policy, logger)

		return &backend{gateway: gw, otps: otps, sessions: sessions}, nil
	}
}

// runCleanup starts the expiry loops of the local stores. They stop with ctx.
func (b *backend) runCleanup(ctx context.Context) {
	if b.otps != nil {
		go b.otps.RunCleanup(ctx, cleanupInterval)
	}
	if b.sessions != nil {
		go b.sessions.RunCleanup(ctx, cleanupInterval)
	}
}
