package tui

import (
	"github.com/charmbracelet/lipgloss"

	"phone-verify/internal/tui/styles"
)

const helpText = "tab next • shift+tab back • enter select • esc quit"

// View renders the screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	header := styles.Header.Render("Phone Verification")
	if m.width > 0 {
		header = styles.Header.Width(m.width).Render("Phone Verification")
	}

	field := styles.Field
	if m.focus == focusPhone {
		field = styles.FieldFocused
	}

	sections := []string{
		m.spinner.View() + " " + styles.Muted.Render(m.status),
		"",
		styles.Label.Render("Phone number"),
		field.Render(m.phone.View()),
		m.button("Send code", "Sending…", focusSend, m.sending),
		styles.Title.Render("Enter the code"),
		m.code.View(),
		m.button("Verify", "Checking…", focusVerify, m.verifying),
	}
	if m.notice != nil {
		sections = append(sections, m.renderNotice())
	}
	sections = append(sections, styles.Help.Render(helpText))

	body := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if m.width > 0 && m.height > 0 {
		body = lipgloss.Place(m.width, max(m.height-lipgloss.Height(header), 0),
			lipgloss.Center, lipgloss.Center, body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m *Model) button(label, busyLabel string, target focusTarget, busy bool) string {
	switch {
	case busy:
		return styles.ButtonBusy.Render(busyLabel)
	case m.focus == target:
		return styles.ButtonFocused.Render(label)
	default:
		return styles.Button.Render(label)
	}
}

func (m *Model) renderNotice() string {
	switch m.notice.kind {
	case NoticeSuccess:
		return styles.NoticeSuccess.Render(m.notice.text)
	case NoticeError:
		return styles.NoticeError.Render(m.notice.text)
	default:
		return styles.Notice.Render(m.notice.text)
	}
}
