// Package tui implements the phone verification screen.
//
// The screen collects a phone number, asks a service.Gateway to send a code,
// collects the code in a segmented input and asks the gateway to verify it.
// Gateway calls run as commands; their results come back to Update as
// messages, so all screen state is owned by the Bubble Tea event loop.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"phone-verify/internal/domain"
	"phone-verify/internal/logging"
	"phone-verify/internal/service"
	"phone-verify/internal/tui/otpinput"
	"phone-verify/internal/tui/styles"
)

// Config holds the screen settings.
type Config struct {
	CodeLength         int
	DefaultCountryCode string
	// SendTimeout is passed to the gateway with every code request.
	SendTimeout   time.Duration
	NotifyTimeout time.Duration
}

// DefaultConfig returns the settings used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		CodeLength:         6,
		DefaultCountryCode: "91",
		SendTimeout:        60 * time.Second,
		NotifyTimeout:      3 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CodeLength < 1 {
		c.CodeLength = d.CodeLength
	}
	if c.DefaultCountryCode == "" {
		c.DefaultCountryCode = d.DefaultCountryCode
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = d.SendTimeout
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = d.NotifyTimeout
	}
	return c
}

type focusTarget int

const (
	focusPhone focusTarget = iota
	focusSend
	focusCode
	focusVerify
	focusCount
)

const phoneRunes = "0123456789+-() ."

// Model is the verification screen.
type Model struct {
	ctx     context.Context
	gateway service.Gateway
	cfg     Config
	logger  *logging.Logger

	phone   textinput.Model
	code    *otpinput.Model
	spinner spinner.Model
	focus   focusTarget

	// codeValue mirrors the segmented input through its change callback.
	codeValue string

	// pending is the handle of the last code sent; empty when there is none.
	pending      domain.PendingHandle
	pendingPhone domain.PhoneNumber
	sendSeq      int
	sending      bool
	verifying    bool
	credential   *domain.Credential

	status    string
	notice    *notice
	noticeSeq int

	width    int
	height   int
	quitting bool
}

// New creates the screen. Gateway calls are bounded by ctx.
func New(ctx context.Context, gw service.Gateway, cfg Config, logger *logging.Logger) *Model {
	if logger == nil {
		logger = logging.NopLogger()
	}
	cfg = cfg.withDefaults()

	phone := textinput.New()
	phone.Placeholder = "98765 43210"
	phone.Prompt = ""
	phone.CharLimit = 20
	phone.Width = 26
	phone.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Primary

	m := &Model{
		ctx:     ctx,
		gateway: gw,
		cfg:     cfg,
		logger:  logger.WithComponent("screen"),
		phone:   phone,
		spinner: sp,
		status:  "Waiting for a phone number",
	}
	m.code = otpinput.New(cfg.CodeLength, func(v string) {
		m.codeValue = v
	})
	return m
}

// Credential returns the credential obtained by the screen, or nil.
func (m *Model) Credential() *domain.Credential {
	return m.credential
}

// Init starts the status animation and the cursor blink.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case codeRequestedMsg:
		return m, m.handleCodeRequested(msg)

	case codeVerifiedMsg:
		return m, m.handleCodeVerified(msg)

	case noticeExpiredMsg:
		m.dismissNotice(msg.id)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Cursor blink
	var cmd tea.Cmd
	m.phone, cmd = m.phone.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab", "up":
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "enter":
		return m, m.activate()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusPhone:
		if msg.Type == tea.KeyRunes {
			msg.Runes = filterPhoneRunes(msg.Runes)
			if len(msg.Runes) == 0 {
				return m, nil
			}
		}
		m.phone, cmd = m.phone.Update(msg)
	case focusCode:
		m.code, cmd = m.code.Update(msg)
	}
	return m, cmd
}

func filterPhoneRunes(runes []rune) []rune {
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if strings.ContainsRune(phoneRunes, r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *Model) setFocus(f focusTarget) tea.Cmd {
	m.focus = f
	m.phone.Blur()
	m.code.Blur()

	switch f {
	case focusPhone:
		return m.phone.Focus()
	case focusCode:
		m.code.Focus()
	}
	return nil
}

func (m *Model) activate() tea.Cmd {
	switch m.focus {
	case focusPhone, focusSend:
		return m.send()
	default:
		return m.verify()
	}
}

// send starts a code request for the number in the phone field. Any pending
// handle is dropped, and results of earlier sends and of verifies for the old
// handle are ignored from now on.
func (m *Model) send() tea.Cmd {
	raw := strings.TrimSpace(m.phone.Value())
	if raw == "" {
		return m.notify(NoticeError, NoticeEnterPhone)
	}
	phone, err := domain.NormalizePhone(raw, m.cfg.DefaultCountryCode)
	if err != nil {
		return m.notify(NoticeError, noticeVerificationFailed+failureReason(err))
	}

	m.sendSeq++
	m.pending = ""
	m.pendingPhone = ""
	m.verifying = false
	m.sending = true
	m.status = "Sending code to " + phone.Masked()
	m.logger.Info("requesting code", "phone", phone.Masked(), "seq", m.sendSeq)

	return requestCode(m.ctx, m.gateway, m.sendSeq, phone, m.cfg.SendTimeout)
}

func (m *Model) handleCodeRequested(msg codeRequestedMsg) tea.Cmd {
	if msg.seq != m.sendSeq {
		m.logger.Debug("dropping result of superseded send", "seq", msg.seq, "current", m.sendSeq)
		return nil
	}
	m.sending = false

	if msg.err == nil && msg.result == nil {
		msg.err = domain.ErrNoPendingCode
	}
	if msg.err != nil {
		m.status = "Could not send a code"
		m.logger.Warn("code request failed",
			"phone", msg.phone.Masked(),
			"kind", domain.Classify(msg.err).String(),
			"error", msg.err)
		return m.notify(NoticeError, noticeVerificationFailed+failureReason(msg.err))
	}

	if msg.result.Status == domain.SendStatusCompleted {
		m.credential = msg.result.Credential
		m.status = "Verified " + msg.phone.Masked()
		m.logger.Info("number verified without code", "phone", msg.phone.Masked())
		return m.notify(NoticeSuccess, NoticeAutoVerified)
	}

	m.pending = msg.result.Handle
	m.pendingPhone = msg.phone
	m.code.Reset()
	m.status = "Code sent to " + msg.phone.Masked()
	m.logger.Info("code sent", "phone", msg.phone.Masked(), "expires_at", msg.result.ExpiresAt)

	text := NoticeCodeSent
	if msg.result.DevCode != "" {
		text += " (dev code " + msg.result.DevCode + ")"
	}
	return tea.Batch(m.notify(NoticeInfo, text), m.setFocus(focusCode))
}

// verify checks the entered code against the pending handle.
func (m *Model) verify() tea.Cmd {
	if m.pending.Empty() {
		return m.notify(NoticeError, NoticeSendFirst)
	}
	if len(m.codeValue) != m.code.Len() {
		return m.notify(NoticeError, NoticeEnterFullCode)
	}
	if m.verifying {
		return nil
	}

	m.verifying = true
	m.status = "Checking code"
	return verifyCode(m.ctx, m.gateway, m.pending, m.codeValue)
}

func (m *Model) handleCodeVerified(msg codeVerifiedMsg) tea.Cmd {
	if msg.handle != m.pending {
		m.logger.Debug("dropping verify result for replaced handle")
		return nil
	}
	m.verifying = false

	if msg.err == nil && msg.credential == nil {
		msg.err = domain.ErrNoPendingCode
	}
	if msg.err != nil {
		kind := domain.Classify(msg.err)
		m.logger.Warn("code verification failed",
			"phone", m.pendingPhone.Masked(),
			"kind", kind.String(),
			"error", msg.err)

		switch kind {
		case domain.FailureCodeMismatch:
			m.status = "Wrong code, try again"
			return m.notify(NoticeError, NoticeWrongCode)
		case domain.FailureExpired, domain.FailureNoPendingCode:
			m.pending = ""
			m.status = "Send a new code"
		default:
			m.status = "Could not check the code"
		}
		return m.notify(NoticeError, noticeVerificationFailed+failureReason(msg.err))
	}

	cred := msg.credential
	if cred.Phone == "" {
		cred.Phone = m.pendingPhone
	}
	m.pending = ""
	m.credential = cred
	m.status = "Signed in as " + cred.Phone.Masked()
	m.logger.Info("signed in", "phone", cred.Phone.Masked(), "user_id", cred.UserID)
	return m.notify(NoticeSuccess, NoticeSignedIn)
}
