package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/eiken-drill/eiken/internal/explain"
	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/ui/components"
	"github.com/eiken-drill/eiken/internal/ui/theme"
)

const maxContentWidth = 90

func (s *QuizScreen) View(width, height int) string {
	if s.item.Total == 0 {
		return theme.Hint.Width(width).Align(lipgloss.Center).Render("\n\nNo quiz in progress.")
	}

	cw := min(width-4, maxContentWidth)
	wrap := lipgloss.NewStyle().Width(cw)
	q := s.item.Question

	var b strings.Builder

	// Progress and grade.
	status := fmt.Sprintf("Question %d / %d", s.item.Index+1, s.item.Total)
	grade := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(question.DisplayName(s.item.Grade))
	score := theme.Dim.Render(fmt.Sprintf("Score %d", s.item.Score))
	b.WriteString(theme.Body.Bold(true).Render(status) + "   " + grade + "   " + score)
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar(s.item.Index+1, s.item.Total, cw).View())
	b.WriteString("\n")
	b.WriteString(theme.Dim.Render(sourceLine(q.ID, s.source)))
	b.WriteString("\n\n")

	b.WriteString(wrap.Foreground(theme.Text).Bold(true).Render(q.Question))
	b.WriteString("\n\n")
	b.WriteString(s.options.View())

	if s.item.State.Answered {
		b.WriteString("\n")
		b.WriteString(s.renderVerdict())
		b.WriteString("\n")
		if tr := s.translation(); tr != "" {
			b.WriteString(wrap.Foreground(theme.TextDim).Render("訳: " + tr))
			b.WriteString("\n")
		}
		if exp := s.renderExplanation(cw); exp != "" {
			b.WriteString("\n")
			b.WriteString(exp)
		}
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Warning.Render("⚠ " + s.notice))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *QuizScreen) renderVerdict() string {
	if s.item.State.IsCorrect {
		return theme.Correct.Render("✓ 正解!")
	}
	return theme.Incorrect.Render("✗ 不正解") + theme.Body.Render("   正解: "+s.item.Question.Answer)
}

// translation prefers the dataset translation over the tutor's.
func (s *QuizScreen) translation() string {
	q := s.item.Question
	if q.Translation != "" {
		return q.Translation
	}
	if e, ok := s.deps.Tutor.Cached(q.ID); ok {
		return e.Translation
	}
	return ""
}

func (s *QuizScreen) renderExplanation(cw int) string {
	q := s.item.Question
	wrap := lipgloss.NewStyle().Width(cw)

	if q.Explanation != "" {
		return renderSections(explain.Split(q.Explanation), wrap)
	}
	if e, ok := s.deps.Tutor.Cached(q.ID); ok {
		return renderSections(e.Sections(q.Answer), wrap) + "\n" + theme.Hint.Render("(AI tutor)")
	}
	switch {
	case s.explaining[q.ID]:
		return theme.Hint.Render("Asking the tutor...")
	case s.tutorErr[q.ID] != "":
		return wrap.Foreground(theme.TextDim).Render(s.tutorErr[q.ID])
	}
	return ""
}

func renderSections(sec explain.Sections, wrap lipgloss.Style) string {
	if sec.Empty() {
		return ""
	}
	if sec.Plain != "" {
		return wrap.Foreground(theme.Text).Render(explain.StripTags(sec.Plain))
	}

	var parts []string
	if h := sec.HeaderText(); h != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true).Render(h))
	}
	if sec.Reason != "" {
		parts = append(parts, wrap.Foreground(theme.Text).Render(explain.StripTags(sec.Reason)))
	}
	if len(sec.Vocabulary) > 0 {
		lines := make([]string, len(sec.Vocabulary))
		for i, v := range sec.Vocabulary {
			lines[i] = "・" + explain.StripTags(v)
		}
		parts = append(parts, wrap.Foreground(theme.HighlightAlt).Render(strings.Join(lines, "\n")))
	}
	return strings.Join(parts, "\n")
}

// sourceLine labels the question with the grade encoded in its id, which
// differs from the session grade in review mode.
func sourceLine(id, source string) string {
	label := question.DisplayName(question.GradeFromID(id))
	if source == "" {
		return fmt.Sprintf("%s   (%s)", label, id)
	}
	return fmt.Sprintf("出典: %s %s   (%s)", label, source, id)
}
