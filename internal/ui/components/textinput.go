package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput is a bubbles text input with an optional digits-only filter.
// Focus, Blur, View, Value and SetValue come from the embedded model.
type TextInput struct {
	textinput.Model
	NumericOnly bool
}

// NewTextInput returns a blurred, prompt-less input limited to width runes.
func NewTextInput(placeholder string, numericOnly bool, width int) TextInput {
	m := textinput.New()
	m.Prompt = ""
	m.Placeholder = placeholder
	if width > 0 {
		m.CharLimit = width
		m.SetWidth(width)
	}
	return TextInput{Model: m, NumericOnly: numericOnly}
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok && t.NumericOnly && !isDigits(key.Text) {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// isDigits reports whether s is empty or all ASCII digits. Non-printing
// keys have empty Text and pass through.
func isDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

// NumericValue parses the value as an int.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Value())
}
