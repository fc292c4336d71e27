package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"phone-verify/internal/domain"
	"phone-verify/internal/service"
)

// callTimeout bounds a single gateway round trip.
const callTimeout = 30 * time.Second

// requestCode returns a command that asks gw to send a code to phone. The
// command resolves exactly once with a codeRequestedMsg.
func requestCode(ctx context.Context, gw service.Gateway, seq int, phone domain.PhoneNumber, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		result, err := gw.RequestCode(ctx, phone, timeout)
		return codeRequestedMsg{seq: seq, phone: phone, result: result, err: err}
	}
}

// verifyCode returns a command that checks code against handle. The command
// resolves exactly once with a codeVerifiedMsg.
func verifyCode(ctx context.Context, gw service.Gateway, handle domain.PendingHandle, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		cred, err := gw.VerifyCode(ctx, handle, code)
		return codeVerifiedMsg{handle: handle, credential: cred, err: err}
	}
}

func expireNotice(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}
