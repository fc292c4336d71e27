// Package styles holds the lipgloss palette and styles of the verification screen.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple (violet-400)
	SecondaryColor = lipgloss.Color("#10B981") // Green
	ErrorColor     = lipgloss.Color("#F87171") // Red (red-400)
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray-500

	Primary = lipgloss.NewStyle().Foreground(PrimaryColor)
	Muted   = lipgloss.NewStyle().Foreground(MutedColor)

	// Header bar across the top of the screen
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor).
		Background(PrimaryColor).
		Align(lipgloss.Center).
		Padding(0, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextColor).
		MarginTop(1)

	Label = lipgloss.NewStyle().
		Foreground(MutedColor)

	// Text field frame
	Field = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1).
		Width(30)

	FieldFocused = Field.
			BorderForeground(PrimaryColor)

	Button = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Padding(0, 3).
		MarginTop(1).
		Width(34).
		Align(lipgloss.Center)

	ButtonFocused = Button.
			Bold(true).
			Background(PrimaryColor)

	ButtonBusy = Button.
			Foreground(MutedColor)

	// Code slots
	Slot = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Width(3).
		Align(lipgloss.Center)

	SlotFocused = Slot.
			BorderForeground(PrimaryColor).
			Bold(true)

	SlotPlaceholder = lipgloss.NewStyle().Foreground(MutedColor)

	// Notifications
	Notice = lipgloss.NewStyle().
		Padding(0, 2).
		MarginTop(1).
		Foreground(TextColor).
		Background(SurfaceColor)

	NoticeSuccess = Notice.Background(SecondaryColor)
	NoticeError   = Notice.Background(ErrorColor)

	Help = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)
)
