package domain

import "time"

// PendingHandle correlates a sent code with the verification attempt that
// follows it. Its content is owned by the gateway that issued it.
type PendingHandle string

// Empty reports whether no handle is held.
func (h PendingHandle) Empty() bool {
	return h == ""
}

// SendStatus is the outcome of a successful code request.
type SendStatus string

const (
	// SendStatusCodeSent means a code is on its way and Handle must be kept.
	SendStatusCodeSent SendStatus = "code_sent"
	// SendStatusCompleted means the number was verified without a code
	// (auto-retrieval) and Credential is already set.
	SendStatusCompleted SendStatus = "completed"
)

// SendResult is returned by a gateway for a code request.
type SendResult struct {
	Status     SendStatus
	Handle     PendingHandle
	ExpiresAt  time.Time
	Credential *Credential

	// DevCode carries the plain code only when dev OTP mode is enabled.
	DevCode string
}

// Credential is issued after a number has been verified.
type Credential struct {
	Token     string
	Phone     PhoneNumber
	UserID    string
	ExpiresAt time.Time
}
