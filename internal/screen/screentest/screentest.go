// Package screentest builds screen dependencies over an in-memory store for
// screen tests.
package screentest

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eiken-drill/eiken/internal/explain"
	"github.com/eiken-drill/eiken/internal/llm"
	"github.com/eiken-drill/eiken/internal/mistakes"
	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/screen"
	"github.com/eiken-drill/eiken/internal/session"
	"github.com/eiken-drill/eiken/internal/store"
)

// Questions returns five grade-2 questions. 2-001 and 2-002 carry an
// explanation and a source; the rest have neither.
func Questions() []question.Question {
	return []question.Question{
		{
			ID:             "2-001",
			Question:       "He ( ) to school every day.",
			Options:        []string{"walks", "walk", "walking", "walked"},
			OptionMeanings: []string{"歩く(三単現)", "歩く", "歩いている", "歩いた"},
			Answer:         "walks",
			Explanation:    "<b>正解：walks</b>\n主語が三人称単数。\n・walk 歩く",
			Translation:    "彼は毎日歩いて学校に行く。",
			Source:         "2023-1",
		},
		{
			ID:          "2-002",
			Question:    "I have ( ) finished my homework.",
			Options:     []string{"already", "yet", "still", "ever"},
			Answer:      "already",
			Explanation: "【解説】現在完了の肯定文では already。",
			Source:      "2023-2",
		},
		{ID: "2-003", Question: "Q3", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
		{ID: "2-004", Question: "Q4", Options: []string{"a", "b", "c", "d"}, Answer: "b"},
		{ID: "2-005", Question: "Q5", Options: []string{"a", "b", "c", "d"}, Answer: "c"},
	}
}

// Env is a wired set of screen dependencies plus the store behind them.
type Env struct {
	Deps     screen.Deps
	Store    *store.Store
	Provider *llm.MockProvider
}

// Option adjusts an Env before the deps are built.
type Option func(*envConfig)

type envConfig struct {
	tutor       bool
	emptyGrades []string
}

// WithTutor wires an explain.Tutor backed by a MockProvider.
func WithTutor() Option {
	return func(c *envConfig) { c.tutor = true }
}

// WithEmptyGrades adds grades that the dataset names but has no questions
// for.
func WithEmptyGrades(grades ...string) Option {
	return func(c *envConfig) { c.emptyGrades = append(c.emptyGrades, grades...) }
}

// New returns an Env with the sample catalog, an empty mistake list and a
// controller with a fixed random source.
func New(t *testing.T, opts ...Option) *Env {
	t.Helper()
	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	name := strings.ReplaceAll(t.Name(), "/", "_")
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := zaptest.NewLogger(t)
	data := map[string][]question.Question{"2": Questions()}
	for _, g := range cfg.emptyGrades {
		data[g] = nil
	}
	catalog := question.MustCatalog(data)

	ms, err := mistakes.Load(context.Background(), st.BlobRepo(), mistakes.WithLogger(logger))
	require.NoError(t, err)

	env := &Env{Store: st}
	env.Deps = screen.Deps{
		Controller: session.New(catalog, ms,
			session.WithRand(rand.New(rand.NewPCG(1, 2))),
			session.WithLogger(logger)),
		Catalog:  catalog,
		Mistakes: ms,
		Events:   st.EventRepo(),
		Logger:   logger,
	}
	if cfg.tutor {
		env.Provider = llm.NewMockProvider()
		env.Deps.Tutor = explain.NewTutor(env.Provider, explain.DefaultConfig(), logger)
	}
	return env
}

// Key builds a key press for a printable key or a named one.
func Key(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	}
	r := []rune(k)[0]
	return tea.KeyPressMsg{Code: r, Text: k}
}

// Drain runs cmd and every command it produces, batch by batch, and returns
// the messages that are not batches. Commands that block are not expected.
func Drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch m := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, Drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
