package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eiken-drill/eiken/internal/screen"
)

type stubScreen struct {
	title    string
	inits    int
	resumes  int
	received []tea.Msg
}

type stubInitMsg struct{ title string }

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	title := s.title
	return func() tea.Msg { return stubInitMsg{title} }
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.received = append(s.received, msg)
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func (s *stubScreen) Resume() tea.Cmd {
	s.resumes++
	return nil
}

type plainScreen struct{ title string }

func (p *plainScreen) Init() tea.Cmd                              { return nil }
func (p *plainScreen) Update(tea.Msg) (screen.Screen, tea.Cmd)    { return p, nil }
func (p *plainScreen) View(int, int) string                       { return p.title }
func (p *plainScreen) Title() string                              { return p.title }

func titles(r *Router) []string {
	out := make([]string, len(r.stack))
	for i, s := range r.stack {
		out[i] = s.Title()
	}
	return out
}

func TestPushPop(t *testing.T) {
	home := &stubScreen{title: "home"}
	r := New(home)

	settings := &stubScreen{title: "settings"}
	cmd := r.Push(settings)
	require.NotNil(t, cmd)
	assert.Equal(t, stubInitMsg{"settings"}, cmd())
	assert.Equal(t, []string{"home", "settings"}, titles(r))

	r.Pop()
	assert.Equal(t, []string{"home"}, titles(r))
	assert.Equal(t, 1, home.resumes)

	assert.Nil(t, r.Pop())
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, 1, home.resumes)
}

func TestReplace(t *testing.T) {
	r := New(&stubScreen{title: "home"})
	r.Push(&stubScreen{title: "settings"})

	quiz := &stubScreen{title: "quiz"}
	r.Replace(quiz)
	assert.Equal(t, []string{"home", "quiz"}, titles(r))
	assert.Equal(t, 1, quiz.inits)
}

func TestPopToRoot(t *testing.T) {
	home := &stubScreen{title: "home"}
	r := New(home)
	r.Push(&stubScreen{title: "settings"})
	r.Push(&stubScreen{title: "quiz"})

	r.Update(PopToRootMsg{})
	assert.Equal(t, []string{"home"}, titles(r))
	assert.Equal(t, 1, home.resumes)

	r.Push(&stubScreen{title: "quiz"})
	summary := &stubScreen{title: "summary"}
	r.Update(PopToRootMsg{Then: summary})
	assert.Equal(t, []string{"home", "summary"}, titles(r))
	assert.Equal(t, 1, summary.inits)
	assert.Equal(t, 2, home.resumes)

	r.Pop()
	assert.Nil(t, r.PopToRoot())
}

func TestResumeOptional(t *testing.T) {
	r := New(&plainScreen{title: "plain"})
	r.Push(&stubScreen{title: "top"})
	assert.NotPanics(t, func() { r.Pop() })
}

func TestUpdateRoutesToActive(t *testing.T) {
	home := &stubScreen{title: "home"}
	r := New(home)
	top := &stubScreen{title: "top"}

	r.Update(PushScreenMsg{Screen: top})
	r.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	assert.Empty(t, home.received)
	require.Len(t, top.received, 1)

	r.Update(ReplaceScreenMsg{Screen: &stubScreen{title: "other"}})
	assert.Equal(t, "other", r.Active().Title())
	assert.Equal(t, "other", r.View(80, 24))

	r.Update(PopScreenMsg{})
	assert.Equal(t, "home", r.Active().Title())
}

func TestCommandHelpers(t *testing.T) {
	s := &stubScreen{title: "x"}
	assert.Equal(t, PushScreenMsg{Screen: s}, Push(s)())
	assert.Equal(t, ReplaceScreenMsg{Screen: s}, Replace(s)())
	assert.Equal(t, PopScreenMsg{}, Pop())
	assert.Equal(t, PopToRootMsg{Then: s}, PopToRoot(s)())
}
