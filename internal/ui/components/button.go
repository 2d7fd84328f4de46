package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/eiken-drill/eiken/internal/ui/theme"
)

// Button fires OnPress when Enter is pressed while it has focus.
type Button struct {
	Label   string
	Focused bool
	OnPress func() tea.Cmd
}

func NewButton(label string, onPress func() tea.Cmd) Button {
	return Button{Label: label, OnPress: onPress}
}

func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || !b.Focused || b.OnPress == nil || key.String() != "enter" {
		return b, nil
	}
	return b, b.OnPress()
}

func (b Button) View() string {
	if !b.Focused {
		return theme.ButtonInactive.Render(b.Label)
	}
	return theme.ButtonActive.Render("▸ " + b.Label)
}
