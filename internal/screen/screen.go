// Package screen defines what the router needs from a screen.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/eiken-drill/eiken/internal/ui/layout"
)

// Screen is one page of the TUI.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the body, without the app header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer is notified when the screen becomes active again after the
// screens above it were popped.
type Resumer interface {
	Resume() tea.Cmd
}

// BackInterceptor lets a screen handle Esc itself, e.g. to confirm leaving
// a quiz. Returning false lets the app pop the screen as usual.
type BackInterceptor interface {
	HandleBack() (handled bool, cmd tea.Cmd)
}
