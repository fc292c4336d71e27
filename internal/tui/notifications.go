package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"phone-verify/internal/domain"
)

// NoticeKind selects how a notification is rendered.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notification texts.
const (
	NoticeCodeSent           = "Code sent"
	NoticeAutoVerified       = "Verification completed"
	NoticeSignedIn           = "Sign-in successful"
	NoticeWrongCode          = "Wrong code"
	NoticeEnterPhone         = "Enter a phone number"
	NoticeEnterFullCode      = "Enter the full code"
	NoticeSendFirst          = "Send a code first"
	noticeVerificationFailed = "Verification failed: "
)

type notice struct {
	id   int
	kind NoticeKind
	text string
}

// notify replaces the current notification and schedules its dismissal.
func (m *Model) notify(kind NoticeKind, text string) tea.Cmd {
	m.noticeSeq++
	m.notice = &notice{id: m.noticeSeq, kind: kind, text: text}
	return expireNotice(m.noticeSeq, m.cfg.NotifyTimeout)
}

func (m *Model) dismissNotice(id int) {
	if m.notice != nil && m.notice.id == id {
		m.notice = nil
	}
}

// failureReason turns a gateway error into a short user-facing reason.
func failureReason(err error) string {
	switch domain.Classify(err) {
	case domain.FailureInvalidNumber:
		if errors.Is(err, domain.ErrPhoneBlocked) || errors.Is(err, domain.ErrPhoneNotAllowed) {
			return "number not allowed"
		}
		return "invalid phone number"
	case domain.FailureNetwork:
		return "network error"
	case domain.FailureQuota:
		return "too many requests, try again later"
	case domain.FailureCodeMismatch:
		return "wrong code"
	case domain.FailureExpired:
		if errors.Is(err, domain.ErrOTPMaxAttempts) {
			return "too many attempts, send a new code"
		}
		return "code expired, send a new one"
	case domain.FailureCodeRequired:
		return "enter the code"
	case domain.FailureNoPendingCode:
		return "no pending code, send a new one"
	default:
		return "unexpected error"
	}
}
