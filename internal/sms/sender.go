// Package sms delivers one-time codes to phones.
package sms

import (
	"context"

	"phone-verify/internal/domain"
	"phone-verify/internal/logging"
)

// Sender delivers a code to a phone number.
type Sender interface {
	SendOTP(ctx context.Context, phone domain.PhoneNumber, code string) error
}

// LogSender writes codes to the log instead of sending SMS. Dev mode only.
type LogSender struct {
	logger *logging.Logger
}

// NewLogSender returns a dev Sender.
func NewLogSender(logger *logging.Logger) *LogSender {
	return &LogSender{logger: logger.WithComponent("sms.dev")}
}

// SendOTP logs the code together with the masked number.
func (s *LogSender) SendOTP(_ context.Context, phone domain.PhoneNumber, code string) error {
	s.logger.Warn("dev OTP mode, code not sent by SMS", "phone", phone.Masked(), "code", code)
	return nil
}
