// Package settings is the filter form shown after a grade is selected.
package settings

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eiken-drill/eiken/internal/filter"
	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/router"
	"github.com/eiken-drill/eiken/internal/screen"
	"github.com/eiken-drill/eiken/internal/screens/quiz"
	"github.com/eiken-drill/eiken/internal/ui/components"
	"github.com/eiken-drill/eiken/internal/ui/layout"
	"github.com/eiken-drill/eiken/internal/ui/theme"
)

type field int

const (
	fieldYear field = iota
	fieldRangeStart
	fieldRangeEnd
	fieldOrder
	fieldCount
	fieldStart
	numFields
)

// SettingsScreen edits the filter settings of the selected grade and
// starts the quiz.
type SettingsScreen struct {
	deps  screen.Deps
	grade string
	years []string

	focus      field
	year       int // index into years
	rangeStart components.TextInput
	rangeEnd   components.TextInput
	order      filter.Order
	count      components.TextInput
	start      components.Button

	available int
	errMsg    string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)
var _ screen.BackInterceptor = (*SettingsScreen)(nil)

// New creates the form for the controller's selected grade, prefilled with
// its current settings.
func New(deps screen.Deps) *SettingsScreen {
	c := deps.Controller
	cur := c.Settings()

	s := &SettingsScreen{
		deps:       deps,
		grade:      c.Grade(),
		years:      append([]string{filter.AllYears}, c.Years()...),
		rangeStart: components.NewTextInput("1", true, 4),
		rangeEnd:   components.NewTextInput("end", true, 4),
		count:      components.NewTextInput("all", true, 4),
		order:      cur.Order,
	}
	if i := slices.Index(s.years, cur.Year); i >= 0 {
		s.year = i
	}
	s.rangeStart.SetValue(cur.RangeStart)
	s.rangeEnd.SetValue(cur.RangeEnd)
	if cur.Count != filter.AllCount {
		s.count.SetValue(cur.Count)
	}
	s.start = components.NewButton("START", s.startQuiz)
	s.apply()
	return s
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return question.DisplayName(s.grade) + " Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Change"},
		{Key: "Enter", Description: "Next / Start"},
		{Key: "Esc", Description: "Back"},
	}
}

// HandleBack returns the controller to Home. The router pops the screen.
func (s *SettingsScreen) HandleBack() (bool, tea.Cmd) {
	s.deps.Controller.Home()
	return false, nil
}

// Settings returns the settings the form currently describes.
func (s *SettingsScreen) Settings() filter.Settings {
	count := strings.TrimSpace(s.count.Value())
	if count == "" {
		count = filter.AllCount
	}
	return filter.Settings{
		Year:       s.years[s.year],
		RangeStart: strings.TrimSpace(s.rangeStart.Value()),
		RangeEnd:   strings.TrimSpace(s.rangeEnd.Value()),
		Order:      s.order,
		Count:      count,
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, s.updateInput(msg)
	}

	switch kmsg.String() {
	case "up", "shift+tab":
		return s, s.setFocus((s.focus + numFields - 1) % numFields)
	case "down", "tab":
		return s, s.setFocus((s.focus + 1) % numFields)
	case "enter":
		if s.focus == fieldStart {
			var cmd tea.Cmd
			s.start, cmd = s.start.Update(kmsg)
			return s, cmd
		}
		return s, s.setFocus(s.focus + 1)
	case "left", "right", "space":
		if s.cycle(kmsg.String() == "left") {
			s.apply()
			return s, nil
		}
	}

	cmd := s.updateInput(msg)
	s.apply()
	return s, cmd
}

// cycle changes the year or order selection. It reports whether the focused
// field is one of those.
func (s *SettingsScreen) cycle(back bool) bool {
	switch s.focus {
	case fieldYear:
		step := 1
		if back {
			step = len(s.years) - 1
		}
		s.year = (s.year + step) % len(s.years)
		return true
	case fieldOrder:
		if s.order == filter.OrderRandom {
			s.order = filter.OrderSequential
		} else {
			s.order = filter.OrderRandom
		}
		return true
	}
	return false
}

func (s *SettingsScreen) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.focus {
	case fieldRangeStart:
		s.rangeStart, cmd = s.rangeStart.Update(msg)
	case fieldRangeEnd:
		s.rangeEnd, cmd = s.rangeEnd.Update(msg)
	case fieldCount:
		s.count, cmd = s.count.Update(msg)
	}
	return cmd
}

func (s *SettingsScreen) setFocus(f field) tea.Cmd {
	s.focus = f
	s.rangeStart.Blur()
	s.rangeEnd.Blur()
	s.count.Blur()
	s.start.Focused = f == fieldStart

	switch f {
	case fieldRangeStart:
		return s.rangeStart.Focus()
	case fieldRangeEnd:
		return s.rangeEnd.Focus()
	case fieldCount:
		return s.count.Focus()
	}
	return nil
}

// apply pushes the form into the controller and refreshes the match count.
func (s *SettingsScreen) apply() {
	if err := s.deps.Controller.UpdateSettings(s.Settings()); err != nil {
		s.errMsg = err.Error()
		return
	}
	s.available = s.deps.Controller.AvailableCount()
	s.errMsg = ""
}

func (s *SettingsScreen) startQuiz() tea.Cmd {
	s.apply()
	if err := s.deps.Controller.Start(); err != nil {
		if errors.Is(err, filter.ErrEmptyFilterResult) {
			s.errMsg = "No questions match these settings."
		} else {
			s.errMsg = err.Error()
		}
		return nil
	}
	return router.Replace(quiz.New(s.deps))
}

func (s *SettingsScreen) View(width, height int) string {
	label := func(f field, text string) string {
		style := theme.Dim.Width(14)
		if s.focus == f {
			style = theme.Selected.Width(14)
		}
		return style.Render(text)
	}
	choice := func(f field, value string) string {
		if s.focus == f {
			return theme.Selected.Render("◂ " + value + " ▸")
		}
		return theme.Body.Render("  " + value)
	}

	year := s.years[s.year]
	if year == filter.AllYears {
		year = "All years"
	}
	order := "In order"
	if s.order == filter.OrderRandom {
		order = "Random"
	}

	rows := []string{
		label(fieldYear, "Year") + choice(fieldYear, year),
		label(fieldRangeStart, "From #") + "  " + s.rangeStart.View(),
		label(fieldRangeEnd, "To #") + "  " + s.rangeEnd.View(),
		label(fieldOrder, "Order") + choice(fieldOrder, order),
		label(fieldCount, "Questions") + "  " + s.count.View(),
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(question.DisplayName(s.grade)))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n\n")

	matches := fmt.Sprintf("%d questions match", s.available)
	if limit, ok := s.Settings().Limit(); ok && limit < s.available {
		matches += fmt.Sprintf(", %d will be asked", limit)
	}
	style := theme.Body
	if s.available == 0 {
		style = theme.Warning
	}
	b.WriteString(style.Render(matches))
	b.WriteString("\n\n")
	b.WriteString(s.start.View())

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 3).
		Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
