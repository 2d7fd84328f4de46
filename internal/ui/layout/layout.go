// Package layout renders the frame around the active screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eiken-drill/eiken/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 20

	compactWidth  = 100
	compactHeight = 30
)

const brand = "英検 Drill"

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal cannot fit the frame.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// IsCompact reports whether screens should switch to their condensed
// rendering for a terminal of the given size.
func IsCompact(width, height int) bool {
	return width < compactWidth || height < compactHeight
}

// RenderMinSizeMessage replaces the whole frame when IsTooSmall.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader draws the brand on the left, title centered and status on
// the right (e.g. the number of questions waiting for review).
func RenderHeader(title, status string, width int) string {
	cols := [3]string{
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  " + brand),
		lipgloss.NewStyle().Foreground(theme.Text).Render(title),
		lipgloss.NewStyle().Foreground(theme.Accent).Render(status),
	}
	inner := max(width-4, 0)
	used := lipgloss.Width(cols[0]) + lipgloss.Width(cols[1]) + lipgloss.Width(cols[2])

	// Center the title in the bar, not in the space between the sides.
	gapL := max((inner-lipgloss.Width(cols[1]))/2-lipgloss.Width(cols[0]), 1)
	gapR := max(inner-used-gapL, 1)

	return bar(width).Render(cols[0] + strings.Repeat(" ", gapL) + cols[1] + strings.Repeat(" ", gapR) + cols[2])
}

// RenderFooter draws the key hints of the active screen.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString("  ")
	for i, h := range hints {
		if i > 0 {
			b.WriteString("   ")
		}
		b.WriteString(key.Render(h.Key) + " " + desc.Render(h.Description))
	}
	return bar(width).Render(b.String())
}

// RenderFrame stacks header, content and footer, clipping or padding the
// content so the frame is exactly height rows.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := ContentHeight(header, footer, height)
	body := lipgloss.NewStyle().Width(width).Height(rows).MaxHeight(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// ContentHeight is the number of rows left for the screen.
func ContentHeight(header, footer string, totalHeight int) int {
	return max(totalHeight-lipgloss.Height(header)-lipgloss.Height(footer), 0)
}
