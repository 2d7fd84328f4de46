package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eiken-drill/eiken/internal/ui/layout"
	"github.com/eiken-drill/eiken/internal/ui/theme"
)

const titleFull = `╔═╗╦╦╔═╔═╗╔╗╔   ╔╦╗╦═╗╦╦  ╦  
║╣ ║╠╩╗║╣ ║║║    ║║╠╦╝║║  ║  
╚═╝╩╩ ╩╚═╝╝╚╝   ═╩╝╩╚═╩╩═╝╩═╝`

const titleCompact = "E · I · K · E · N   D · R · I · L · L"

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 26

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 60)
}

func (h *HomeScreen) View(width, height int) string {
	// height excludes the header and footer bars.
	compact := layout.IsCompact(width, height+6)
	cw := contentWidth(width)
	center := lipgloss.NewStyle().Width(cw).Align(lipgloss.Center)

	var sections []string

	title := titleFull
	if compact {
		title = titleCompact
	}
	sections = append(sections, center.Render(
		lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true).Render(title)))

	sections = append(sections, h.renderStatsBar(cw))

	menu := h.menu.View(buttonWidth)
	if compact {
		menu = h.menu.CompactView()
	}
	sections = append(sections, center.Render(menu))

	if h.errMsg != "" {
		sections = append(sections, center.Foreground(theme.Error).Render(h.errMsg))
	} else if !h.deps.Tutor.Available() {
		sections = append(sections, center.Foreground(theme.TextDim).Render(
			"Set an LLM API key for AI explanations (see eiken --help)"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n\n"))
}

func (h *HomeScreen) renderStatsBar(cw int) string {
	total := 0
	grades := 0
	if h.deps.Catalog != nil {
		total = h.deps.Catalog.Size()
		grades = len(h.deps.Catalog.Grades())
	}
	qStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	reviewStyle := lipgloss.NewStyle().Foreground(theme.HighlightAlt).Bold(true)

	review := theme.Dim.Render("✓ NOTHING TO REVIEW")
	if n := h.deps.MistakeCount(); n > 0 {
		review = reviewStyle.Render(fmt.Sprintf("✗ %d TO REVIEW", n))
	}
	stats := fmt.Sprintf("%s  %s",
		qStyle.Render(fmt.Sprintf("%d QUESTIONS · %d GRADES", total, grades)),
		review)

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.HighlightAlt).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}
