package domain

import (
	"context"
	"errors"
	"net"
)

var (
	// Phone errors
	ErrPhoneRequired   = errors.New("phone number is required")
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrPhoneBlocked    = errors.New("this phone number is not allowed")
	ErrPhoneNotAllowed = errors.New("phone numbers from this region are not allowed")

	// Code errors
	ErrCodeRequired   = errors.New("verification code is required")
	ErrInvalidOTP     = errors.New("invalid OTP code")
	ErrOTPExpired     = errors.New("OTP code has expired")
	ErrOTPMaxAttempts = errors.New("maximum OTP attempts exceeded")
	ErrHandleNotFound = errors.New("no pending verification for this handle")
	ErrNoPendingCode  = errors.New("no code has been sent yet")

	// Gateway errors
	ErrQuotaExceeded = errors.New("too many verification requests")
	ErrNetwork       = errors.New("authentication backend unreachable")

	// Session errors
	ErrTokenNotFound = errors.New("token is expired or invalid")
)

// FailureKind is the typed outcome of a failed gateway call.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureInvalidNumber
	FailureNetwork
	FailureQuota
	FailureCodeMismatch
	FailureExpired
	FailureNoPendingCode
	FailureCodeRequired
)

// String returns the stable wire code of the kind.
func (k FailureKind) String() string {
	switch k {
	case FailureInvalidNumber:
		return "invalid_number"
	case FailureNetwork:
		return "network_error"
	case FailureQuota:
		return "quota_exceeded"
	case FailureCodeMismatch:
		return "code_mismatch"
	case FailureExpired:
		return "expired"
	case FailureNoPendingCode:
		return "no_pending_code"
	case FailureCodeRequired:
		return "code_required"
	default:
		return "unknown"
	}
}

// Classify maps an error returned by a gateway to its FailureKind.
// A nil error classifies as FailureUnknown; callers check err first.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureUnknown
	case errors.Is(err, ErrPhoneRequired),
		errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrPhoneBlocked),
		errors.Is(err, ErrPhoneNotAllowed):
		return FailureInvalidNumber
	case errors.Is(err, ErrCodeRequired):
		return FailureCodeRequired
	case errors.Is(err, ErrInvalidOTP):
		return FailureCodeMismatch
	case errors.Is(err, ErrOTPExpired), errors.Is(err, ErrOTPMaxAttempts), errors.Is(err, ErrTokenNotFound):
		return FailureExpired
	case errors.Is(err, ErrHandleNotFound), errors.Is(err, ErrNoPendingCode):
		return FailureNoPendingCode
	case errors.Is(err, ErrQuotaExceeded):
		return FailureQuota
	case errors.Is(err, ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return FailureNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureNetwork
	}
	return FailureUnknown
}

// ErrorForCode returns the sentinel error that represents a wire error code.
// Unknown codes return nil.
func ErrorForCode(code string) error {
	switch code {
	case "invalid_number":
		return ErrInvalidPhone
	case "phone_not_allowed":
		return ErrPhoneNotAllowed
	case "code_mismatch":
		return ErrInvalidOTP
	case "code_required":
		return ErrCodeRequired
	case "expired":
		return ErrOTPExpired
	case "no_pending_code":
		return ErrHandleNotFound
	case "quota_exceeded":
		return ErrQuotaExceeded
	case "network_error":
		return ErrNetwork
	}
	return nil
}
