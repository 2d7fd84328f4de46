// Package history lists past sessions recorded in the event log.
package history

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/eiken-drill/eiken/internal/router"
	"github.com/eiken-drill/eiken/internal/screen"
	"github.com/eiken-drill/eiken/internal/store"
	"github.com/eiken-drill/eiken/internal/ui/layout"
)

const sessionLimit = 50

type sessionsLoadedMsg struct {
	sessions []store.SessionSummaryRecord
	err      error
}

type answersLoadedMsg struct {
	sessionID string
	answers   []store.AnswerRecord
	err       error
}

// row is one session line. Its answers are fetched the first time it is
// expanded and kept afterwards.
type row struct {
	store.SessionSummaryRecord
	open       bool
	answers    []store.AnswerRecord
	fetched    bool
	answersErr error
}

// HistoryScreen shows the most recent sessions, newest first.
type HistoryScreen struct {
	events   store.EventRepo
	sessions []*row
	cursor   int
	loaded   bool
	err      error
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

func New(events store.EventRepo) *HistoryScreen {
	return &HistoryScreen{events: events}
}

func (s *HistoryScreen) Init() tea.Cmd {
	events := s.events
	return func() tea.Msg {
		sessions, err := events.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: sessionLimit})
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		s.loaded, s.err = true, msg.err
		s.sessions = make([]*row, len(msg.sessions))
		for i, sum := range msg.sessions {
			s.sessions[i] = &row{SessionSummaryRecord: sum}
		}

	case answersLoadedMsg:
		for _, r := range s.sessions {
			if r.SessionID == msg.sessionID {
				r.answers, r.answersErr, r.fetched = msg.answers, msg.err, true
			}
		}

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = max(min(s.cursor+1, len(s.sessions)-1), 0)
		case "enter":
			return s, s.toggle()
		}
	}
	return s, nil
}

// toggle opens or closes the row under the cursor, fetching its answers on
// the first open.
func (s *HistoryScreen) toggle() tea.Cmd {
	if s.cursor >= len(s.sessions) {
		return nil
	}
	r := s.sessions[s.cursor]
	r.open = !r.open
	if !r.open || r.fetched {
		return nil
	}
	events, id := s.events, r.SessionID
	return func() tea.Msg {
		answers, err := events.QueryAnswerEvents(context.Background(), id)
		return answersLoadedMsg{sessionID: id, answers: answers, err: err}
	}
}
