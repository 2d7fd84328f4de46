// Package summary shows the result of a finished or abandoned session.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/router"
	"github.com/eiken-drill/eiken/internal/screen"
	"github.com/eiken-drill/eiken/internal/session"
	"github.com/eiken-drill/eiken/internal/ui/layout"
	"github.com/eiken-drill/eiken/internal/ui/theme"
)

// maxMissedShown caps the missed-question list; the rest is summarized.
const maxMissedShown = 10

// SummaryScreen displays the session result.
type SummaryScreen struct {
	result *session.Result
	deps   screen.Deps
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(result *session.Result, deps screen.Deps) *SummaryScreen {
	return &SummaryScreen{result: result, deps: deps}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	if res == nil {
		return ""
	}
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString("\n")

	title := "Session complete!"
	if res.Abandoned {
		title = "Session ended early"
	}
	b.WriteString(center(theme.Title.Render(title)))
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Secondary).Render(question.DisplayName(res.Grade))))
	b.WriteString("\n\n")

	mins := int(res.Duration.Minutes())
	secs := int(res.Duration.Seconds()) % 60
	b.WriteString(center(theme.Dim.Render(fmt.Sprintf("Duration: %d:%02d", mins, secs))))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Score: %d / %d        Answered: %d        Accuracy: %.0f%%",
		res.Score, res.Total, res.Answered, res.Accuracy()*100)
	b.WriteString(center(theme.Body.Render(stats)))
	b.WriteString("\n")
	if res.Settings != "" {
		b.WriteString(center(theme.Hint.Render(res.Settings)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(min(width-8, 60), 0)))
	if len(res.Missed) == 0 {
		if res.Answered > 0 {
			b.WriteString(center(theme.Correct.Render("Perfect! No mistakes.")))
		}
		return b.String()
	}

	b.WriteString(center(theme.Dim.Render("Missed")))
	b.WriteString("\n")
	b.WriteString(center(divider))
	b.WriteString("\n")
	for i, q := range res.Missed {
		if i == maxMissedShown {
			b.WriteString(center(theme.Hint.Render(fmt.Sprintf("...and %d more", len(res.Missed)-maxMissedShown))))
			b.WriteString("\n")
			break
		}
		line := fmt.Sprintf("%-10s %s  →  %s", q.ID, truncate(q.Question, 40), q.Answer)
		b.WriteString(center(theme.Incorrect.UnsetBold().Render(line)))
		b.WriteString("\n")
	}
	if n := s.deps.MistakeCount(); n > 0 {
		b.WriteString("\n")
		b.WriteString(center(theme.Hint.Render(fmt.Sprintf("%d questions in your review list", n))))
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
