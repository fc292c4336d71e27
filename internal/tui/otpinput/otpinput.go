// Package otpinput implements a segmented code input: a fixed number of
// single-character slots with automatic focus advance.
//
// Typing a digit stores it in the focused slot and moves focus to the next
// slot, if there is one. Backspace on a filled slot clears it and moves focus
// to the previous slot; on an empty slot it only moves focus back. Every keyed
// mutation (one typed, pasted or cleared slot) calls OnChange exactly once with
// the current Value. Reset reports once for all the slots it clears.
//
// Only ASCII digits are accepted; other characters are ignored.
package otpinput

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"phone-verify/internal/tui/styles"
)

const placeholder = "·"

// Model is the state of a segmented code input.
type Model struct {
	slots   []rune
	focus   int
	focused bool

	// OnChange is called after every slot mutation with the joined value.
	OnChange func(value string)
}

// New creates an input with length slots. It panics if length < 1.
func New(length int, onChange func(value string)) *Model {
	if length < 1 {
		panic("otpinput: length must be at least 1")
	}
	return &Model{
		slots:    make([]rune, length),
		OnChange: onChange,
	}
}

// Len returns the number of slots.
func (m *Model) Len() int {
	return len(m.slots)
}

// FocusIndex returns the slot that receives the next character.
func (m *Model) FocusIndex() int {
	return m.focus
}

// SetFocusIndex moves focus to slot i, clamped to the valid range.
func (m *Model) SetFocusIndex(i int) {
	m.focus = max(0, min(i, len(m.slots)-1))
}

// Focus makes the input receive key messages.
func (m *Model) Focus() {
	m.focused = true
}

// Blur stops the input from receiving key messages.
func (m *Model) Blur() {
	m.focused = false
}

// Focused reports whether the input receives key messages.
func (m *Model) Focused() bool {
	return m.focused
}

// Slot returns the content of slot i, or "" if it is empty.
func (m *Model) Slot(i int) string {
	if m.slots[i] == 0 {
		return ""
	}
	return string(m.slots[i])
}

// Value joins the non-empty slots in slot order.
func (m *Model) Value() string {
	var b strings.Builder
	for _, r := range m.slots {
		if r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Complete reports whether every slot holds a character.
func (m *Model) Complete() bool {
	for _, r := range m.slots {
		if r == 0 {
			return false
		}
	}
	return true
}

// Reset empties all slots and moves focus to the first one. OnChange is
// called once if anything was cleared.
func (m *Model) Reset() {
	changed := false
	for i := range m.slots {
		if m.slots[i] != 0 {
			m.slots[i] = 0
			changed = true
		}
	}
	m.focus = 0
	if changed {
		m.changed()
	}
}

// Input types r into the focused slot. It reports whether a slot changed.
func (m *Model) Input(r rune) bool {
	if r < '0' || r > '9' {
		return false
	}
	m.slots[m.focus] = r
	if m.focus < len(m.slots)-1 {
		m.focus++
	}
	m.changed()
	return true
}

// Paste types every digit of s in turn, starting at the focused slot and
// stopping after the last slot is written. It returns the number of slots
// written.
func (m *Model) Paste(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		last := m.focus == len(m.slots)-1
		m.Input(r)
		n++
		if last {
			break
		}
	}
	return n
}

// Backspace clears the focused slot, or moves focus back when it is already
// empty. It reports whether a slot changed.
func (m *Model) Backspace() bool {
	if m.slots[m.focus] == 0 {
		if m.focus > 0 {
			m.focus--
		}
		return false
	}
	m.slots[m.focus] = 0
	if m.focus > 0 {
		m.focus--
	}
	m.changed()
	return true
}

func (m *Model) changed() {
	if m.OnChange != nil {
		m.OnChange(m.Value())
	}
}

// Update handles key messages while focused.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyRunes:
		if len(key.Runes) == 1 && !key.Paste {
			m.Input(key.Runes[0])
		} else {
			m.Paste(string(key.Runes))
		}
	case tea.KeyBackspace:
		m.Backspace()
	case tea.KeyLeft:
		m.SetFocusIndex(m.focus - 1)
	case tea.KeyRight:
		m.SetFocusIndex(m.focus + 1)
	case tea.KeyHome:
		m.SetFocusIndex(0)
	case tea.KeyEnd:
		m.SetFocusIndex(len(m.slots) - 1)
	}
	return m, nil
}

// View renders the slots side by side.
func (m *Model) View() string {
	cells := make([]string, len(m.slots))
	for i, r := range m.slots {
		content := styles.SlotPlaceholder.Render(placeholder)
		if r != 0 {
			content = string(r)
		}
		style := styles.Slot
		if m.focused && i == m.focus {
			style = styles.SlotFocused
		}
		cells[i] = style.Render(content)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}
