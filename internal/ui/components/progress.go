package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eiken-drill/eiken/internal/ui/theme"
)

// ProgressBar shows how far through a run of Total steps Current is.
type ProgressBar struct {
	Current int
	Total   int
	Width   int
}

// NewProgressBar returns a bar of width cells for step current of total.
func NewProgressBar(current, total, width int) ProgressBar {
	return ProgressBar{Current: current, Total: total, Width: width}
}

// Filled is the number of cells drawn as done.
func (p ProgressBar) Filled() int {
	w := max(p.Width, 4)
	if p.Total <= 0 {
		return 0
	}
	return min(max(w*p.Current/p.Total, 0), w)
}

func (p ProgressBar) View() string {
	w := max(p.Width, 4)
	n := p.Filled()
	return lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("━", n)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", w-n))
}
