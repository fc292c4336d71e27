// Package service implements the authentication gateways the verification
// screen talks to.
package service

import (
	"context"
	"time"

	"phone-verify/internal/domain"
)

// Gateway sends verification codes and checks them.
//
// Implementations report failures with the sentinel errors of package
// domain so callers can use domain.Classify.
type Gateway interface {
	// RequestCode starts verification of phone. timeout is how long the
	// sent code stays valid.
	RequestCode(ctx context.Context, phone domain.PhoneNumber, timeout time.Duration) (*domain.SendResult, error)
	// VerifyCode checks code against the handle returned by RequestCode.
	VerifyCode(ctx context.Context, handle domain.PendingHandle, code string) (*domain.Credential, error)
}
