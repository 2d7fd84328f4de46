package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/ui/theme"
)

// OptionList shows the numbered answer options of a question. Before an
// answer the cursor moves over them; afterwards the correct option and the
// chosen one are marked and every meaning is revealed.
type OptionList struct {
	Options []question.Option
	Cursor  int

	Answered bool
	Answer   string
	Chosen   string
}

// NewOptionList creates a list with the cursor on the first option.
func NewOptionList(opts []question.Option) OptionList {
	return OptionList{Options: opts}
}

// Reveal switches the list to the answered rendering.
func (l *OptionList) Reveal(answer, chosen string) {
	l.Answered = true
	l.Answer = answer
	l.Chosen = chosen
}

// Update moves the cursor. It ignores keys once answered.
func (l OptionList) Update(msg tea.Msg) (OptionList, tea.Cmd) {
	if l.Answered {
		return l, nil
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return l, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if l.Cursor > 0 {
			l.Cursor--
		}
	case "down", "j":
		if l.Cursor < len(l.Options)-1 {
			l.Cursor++
		}
	}
	return l, nil
}

// Current returns the option under the cursor.
func (l OptionList) Current() (question.Option, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Options) {
		return question.Option{}, false
	}
	return l.Options[l.Cursor], true
}

// ByNumber returns the option for a 1-based number key.
func (l OptionList) ByNumber(key string) (question.Option, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return question.Option{}, false
	}
	i := int(key[0] - '1')
	if i >= len(l.Options) {
		return question.Option{}, false
	}
	return l.Options[i], true
}

// View renders the list.
func (l OptionList) View() string {
	var b strings.Builder
	for i, opt := range l.Options {
		prefix := "  "
		if !l.Answered && i == l.Cursor {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d. %s", prefix, i+1, opt.Text)

		if !l.Answered {
			if i == l.Cursor {
				b.WriteString(theme.Selected.Render(line))
			} else {
				b.WriteString(theme.Unselected.Render(line))
			}
			b.WriteString("\n")
			continue
		}

		var style lipgloss.Style
		mark := "  "
		switch {
		case opt.Text == l.Answer:
			style, mark = theme.Correct, " ✓"
		case opt.Text == l.Chosen:
			style, mark = theme.Incorrect, " ✗"
		default:
			style = theme.Dim
		}
		b.WriteString(style.Render(line + mark))
		if opt.Meaning != "" {
			b.WriteString(theme.Hint.Render("  " + opt.Meaning))
		}
		b.WriteString("\n")
	}
	return b.String()
}
