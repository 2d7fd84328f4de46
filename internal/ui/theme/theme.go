// Package theme holds the shared colors and styles of the TUI.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors. The red and green double as the ✗ and ✓ marks of a graded
// answer sheet.
var (
	Primary      = lipgloss.Color("#818CF8")
	Secondary    = lipgloss.Color("#2DD4BF")
	Accent       = lipgloss.Color("#FB923C")
	Success      = lipgloss.Color("#4ADE80")
	Error        = lipgloss.Color("#F87171")
	Text         = lipgloss.Color("#F1F5F9")
	TextDim      = lipgloss.Color("#94A3B8")
	BgDark       = lipgloss.Color("#0B1120")
	BgCard       = lipgloss.Color("#1E293B")
	Border       = lipgloss.Color("#475569")
	Highlight    = lipgloss.Color("#FDE047")
	HighlightAlt = lipgloss.Color("#67E8F9")
)

func fg(c color.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	Title = fg(Primary).Bold(true).Align(lipgloss.Center)
	Body  = fg(Text)
	Dim   = fg(TextDim)
	Hint  = fg(TextDim).Italic(true)

	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
	Correct    = fg(Success).Bold(true)
	Incorrect  = fg(Error).Bold(true)
	Warning    = fg(Accent)

	ButtonActive   = fg(Text).Background(Primary).Bold(true).Padding(0, 2)
	ButtonInactive = fg(TextDim).Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 2)
)
