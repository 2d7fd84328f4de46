package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eiken-drill/eiken/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Action runs on Enter.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

func (it MenuItem) text() string {
	if it.Detail == "" {
		return it.Label
	}
	return it.Label + "  " + it.Detail
}

// Menu is a vertical list of items; the cursor never rests on a disabled
// item.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move advances the cursor by dir to the next enabled item, if any.
func (m *Menu) move(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			break
		}
		if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
			return m, it.Action()
		}
	}
	return m, nil
}

// View draws each item as a bordered button of buttonWidth.
func (m Menu) View(buttonWidth int) string {
	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())
	normal := base.Foreground(theme.Text).BorderForeground(theme.Border)
	active := base.Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Highlight).
		BorderForeground(theme.Highlight)

	out := make([]string, len(m.Items))
	for i, it := range m.Items {
		switch {
		case it.Disabled:
			out[i] = normal.Foreground(theme.TextDim).Render(it.text())
		case i == m.Selected:
			out[i] = active.Render("▸ " + it.text())
		default:
			out[i] = normal.Render(it.text())
		}
	}
	return strings.Join(out, "\n")
}

// CompactView draws one plain line per item for short terminals.
func (m Menu) CompactView() string {
	cursor := lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Highlight).Bold(true)

	out := make([]string, len(m.Items))
	for i, it := range m.Items {
		switch {
		case it.Disabled:
			out[i] = theme.Dim.Render("   " + it.text())
		case i == m.Selected:
			out[i] = cursor.Render(" ▸ " + it.text() + " ")
		default:
			out[i] = theme.Body.Render("   " + it.text())
		}
	}
	return strings.Join(out, "\n")
}
