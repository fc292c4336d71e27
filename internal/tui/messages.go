package tui

import (
	"phone-verify/internal/domain"
)

// codeRequestedMsg carries the outcome of a send. seq identifies the send
// that produced it so results of superseded sends can be dropped.
type codeRequestedMsg struct {
	seq    int
	phone  domain.PhoneNumber
	result *domain.SendResult
	err    error
}

// codeVerifiedMsg carries the outcome of a verify for handle.
type codeVerifiedMsg struct {
	handle     domain.PendingHandle
	credential *domain.Credential
	err        error
}

// noticeExpiredMsg dismisses the notification with the given id.
type noticeExpiredMsg struct {
	id int
}
