package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/ironmeet/internal/model"
)

// Color palette
var (
	// Column colors
	InProgressColor = lipgloss.Color("#FFE66D") // Yellow
	BlockedColor    = lipgloss.Color("#FF6B6B") // Red
	FinishedColor   = lipgloss.Color("#95E1A3") // Green

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	ErrorText = lipgloss.Color("#FF6B6B")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(TextMuted)

	ActiveTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Underline(true)

	ColumnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	ActiveColumnStyle = ColumnStyle.
				BorderForeground(Primary)

	TaskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TaskDescStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			PaddingLeft(3)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorText)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// StatusColor returns the column color of a status
func StatusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusBlocked:
		return BlockedColor
	case model.StatusFinish:
		return FinishedColor
	default:
		return InProgressColor
	}
}

// projectColor falls back to the primary color for empty values
func projectColor(p *model.Project) lipgloss.Color {
	if p == nil || p.Color == "" {
		return Primary
	}
	return lipgloss.Color(p.Color)
}
