// Package home is the root screen: grade menu, review entry and history.
package home

import (
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/router"
	"github.com/eiken-drill/eiken/internal/screen"
	"github.com/eiken-drill/eiken/internal/screens/history"
	"github.com/eiken-drill/eiken/internal/screens/quiz"
	"github.com/eiken-drill/eiken/internal/screens/settings"
	"github.com/eiken-drill/eiken/internal/session"
	"github.com/eiken-drill/eiken/internal/ui/components"
	"github.com/eiken-drill/eiken/internal/ui/layout"
)

// Menu labels that are not grades.
const (
	labelReview  = "REVIEW MISTAKES"
	labelHistory = "HISTORY"
	labelExit    = "EXIT"
)

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps   screen.Deps
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screen.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.buildMenu()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Resume rebuilds the menu since the mistake list may have changed.
func (h *HomeScreen) Resume() tea.Cmd {
	h.errMsg = ""
	h.buildMenu()
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok {
		h.errMsg = ""
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) buildMenu() {
	var items []components.MenuItem
	if h.deps.Catalog != nil {
		for _, g := range h.deps.Catalog.Grades() {
			items = append(items, components.MenuItem{
				Label:  question.DisplayName(g),
				Detail: fmt.Sprintf("%d問", h.deps.Catalog.Len(g)),
				Action: func() tea.Cmd { return h.selectGrade(g) },
			})
		}
	}
	if n := h.deps.MistakeCount(); n > 0 {
		items = append(items, components.MenuItem{
			Label:  labelReview,
			Detail: fmt.Sprintf("%d", n),
			Action: h.startReview,
		})
	}
	if h.deps.Events != nil {
		items = append(items, components.MenuItem{
			Label: labelHistory,
			Action: func() tea.Cmd {
				return router.Push(history.New(h.deps.Events))
			},
		})
	}
	items = append(items, components.MenuItem{
		Label:  labelExit,
		Action: func() tea.Cmd { return tea.Quit },
	})

	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected < len(items) {
		h.menu.Selected = selected
	}
}

func (h *HomeScreen) selectGrade(grade string) tea.Cmd {
	if err := h.deps.Controller.SelectGrade(grade); err != nil {
		h.errMsg = userMessage(err)
		return nil
	}
	return router.Push(settings.New(h.deps))
}

func (h *HomeScreen) startReview() tea.Cmd {
	if err := h.deps.Controller.StartReview(); err != nil {
		h.errMsg = userMessage(err)
		return nil
	}
	return router.Push(quiz.New(h.deps))
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrEmptyGradeCatalog):
		return "No questions for this grade yet."
	case errors.Is(err, session.ErrEmptyFilterResult):
		return "Your review list is empty."
	}
	return err.Error()
}
