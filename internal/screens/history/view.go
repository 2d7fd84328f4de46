package history

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/store"
	"github.com/eiken-drill/eiken/internal/ui/theme"
)

const dateLayout = "Jan 02, 2006 15:04"

func (s *HistoryScreen) View(width, height int) string {
	notice := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render("\n\n" + text)
	}
	switch {
	case s.err != nil:
		return notice(lipgloss.NewStyle().Foreground(theme.Error), "Error: "+s.err.Error())
	case !s.loaded:
		return notice(theme.Dim, "Loading history...")
	case len(s.sessions) == 0:
		return notice(theme.Hint, "No sessions yet. Pick a grade to start!")
	}

	lines := []string{""}
	for i, r := range s.sessions {
		lines = append(lines, s.sessionLine(r, i == s.cursor))
		if r.open {
			lines = append(lines, answerLines(r)...)
		}
	}
	for i, l := range lines {
		lines[i] = lipgloss.PlaceHorizontal(width, lipgloss.Center, l)
	}
	return strings.Join(lines, "\n")
}

func (s *HistoryScreen) sessionLine(r *row, selected bool) string {
	pct := 0
	if r.QuestionsServed > 0 {
		pct = r.CorrectAnswers * 100 / r.QuestionsServed
	}
	quit := ""
	if r.Action == store.ActionAbandon {
		quit = "  (quit)"
	}
	line := fmt.Sprintf("%s  %-8s %d:%02d  %d/%d correct  %d%%%s",
		r.Timestamp.Local().Format(dateLayout),
		question.DisplayName(r.Grade),
		r.DurationSecs/60, r.DurationSecs%60,
		r.CorrectAnswers, r.QuestionsServed, pct, quit)

	if selected {
		return theme.Selected.Render("> " + line)
	}
	return theme.Body.Render("  " + line)
}

func answerLines(r *row) []string {
	switch {
	case !r.fetched:
		return []string{theme.Hint.Render("    Loading answers...")}
	case r.answersErr != nil:
		return []string{theme.Warning.Render("    " + r.answersErr.Error())}
	case len(r.answers) == 0:
		return []string{theme.Hint.Render("    No answers recorded")}
	}

	ok, bad := theme.Correct.UnsetBold(), theme.Incorrect.UnsetBold()
	out := make([]string, len(r.answers))
	for i, a := range r.answers {
		if a.Correct {
			out[i] = ok.Render(fmt.Sprintf("    ✓ %-10s %s", a.QuestionID, a.SelectedAnswer))
		} else {
			out[i] = bad.Render(fmt.Sprintf("    ✗ %-10s %s  (answer: %s)", a.QuestionID, a.SelectedAnswer, a.CorrectAnswer))
		}
	}
	return out
}
