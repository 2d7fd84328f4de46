// Package quiz is the question screen of a running session.
package quiz

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/eiken-drill/eiken/internal/explain"
	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/router"
	"github.com/eiken-drill/eiken/internal/screen"
	"github.com/eiken-drill/eiken/internal/screens/summary"
	"github.com/eiken-drill/eiken/internal/session"
	"github.com/eiken-drill/eiken/internal/store"
	"github.com/eiken-drill/eiken/internal/ui/components"
	"github.com/eiken-drill/eiken/internal/ui/layout"
)

// QuizScreen shows the current question of the controller's session. The
// session must already be started when the screen is created.
type QuizScreen struct {
	deps      screen.Deps
	sessionID string
	settings  string

	item    session.Item
	options components.OptionList
	source  string

	notice     string
	explaining map[string]bool
	tutorErr   map[string]string
	done       bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.BackInterceptor = (*QuizScreen)(nil)

// New creates a QuizScreen for the active session.
func New(deps screen.Deps) *QuizScreen {
	s := &QuizScreen{
		deps:       deps,
		explaining: make(map[string]bool),
		tutorErr:   make(map[string]string),
	}
	if sess := deps.Controller.Session(); sess != nil {
		s.sessionID = sess.ID
		if sess.Grade != question.ReviewGrade {
			s.settings = sess.Settings.String()
		}
	}
	s.load()
	return s
}

// Init records the session start.
func (s *QuizScreen) Init() tea.Cmd {
	if s.sessionID == "" {
		return nil
	}
	data := store.SessionEventData{
		SessionID:       s.sessionID,
		Action:          store.ActionStart,
		Grade:           s.item.Grade,
		Settings:        s.settings,
		QuestionsServed: s.item.Total,
	}
	return s.record(func(ctx context.Context, events store.EventRepo) error {
		return events.AppendSessionEvent(ctx, data)
	})
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if !s.item.State.Answered {
		return []layout.KeyHint{
			{Key: fmt.Sprintf("1-%d", len(s.options.Options)), Description: "Answer"},
			{Key: "↑↓", Description: "Move"},
			{Key: "Enter", Description: "Choose"},
			{Key: "←", Description: "Prev"},
			{Key: "Esc", Description: "Quit quiz"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter/→", Description: "Next"},
		{Key: "←", Description: "Prev"},
	}
	if s.canAskTutor() {
		hints = append(hints, layout.KeyHint{Key: "E", Description: "Explain"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit quiz"})
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case explanationMsg:
		delete(s.explaining, msg.QuestionID)
		if msg.Err != nil {
			s.tutorErr[msg.QuestionID] = tutorErrorText(msg.Err)
		}
		return s, nil

	case tea.KeyPressMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

// HandleBack abandons the session. A summary is shown when anything was
// answered.
func (s *QuizScreen) HandleBack() (bool, tea.Cmd) {
	res := s.deps.Controller.Home()
	if res == nil {
		return false, nil
	}
	return true, s.finish(res)
}

func (s *QuizScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if s.done {
		return nil
	}
	key := msg.String()

	if !s.item.State.Answered {
		if opt, ok := s.options.ByNumber(key); ok {
			return s.answer(opt.Text)
		}
		switch key {
		case "enter":
			if opt, ok := s.options.Current(); ok {
				return s.answer(opt.Text)
			}
			return nil
		case "left", "p":
			return s.prev()
		case "right", "n":
			s.notice = session.ErrNotAnswered.Error()
			return nil
		}
		s.options, _ = s.options.Update(msg)
		return nil
	}

	switch key {
	case "enter", "right", "n":
		return s.next()
	case "left", "p":
		return s.prev()
	case "e":
		return s.askTutor()
	}
	return nil
}

func (s *QuizScreen) answer(option string) tea.Cmd {
	c := s.deps.Controller
	res, err := c.Answer(context.Background(), option)
	if err != nil {
		s.notice = err.Error()
		return nil
	}
	s.notice = ""
	if res.PersistErr != nil {
		s.notice = "Could not save this question to your review list."
	}

	s.load()
	q, st := s.item.Question, s.item.State
	data := store.AnswerEventData{
		SessionID:      s.sessionID,
		QuestionID:     q.ID,
		Grade:          question.GradeFromID(q.ID),
		QuestionText:   q.Question,
		CorrectAnswer:  q.Answer,
		SelectedAnswer: st.SelectedOption,
		Correct:        st.IsCorrect,
		TimeMs:         st.TimeTaken().Milliseconds(),
	}
	cmds := []tea.Cmd{s.record(func(ctx context.Context, events store.EventRepo) error {
		return events.AppendAnswerEvent(ctx, data)
	})}
	if q.Explanation == "" {
		cmds = append(cmds, s.askTutor())
	}
	return tea.Batch(cmds...)
}

func (s *QuizScreen) next() tea.Cmd {
	res, err := s.deps.Controller.Next()
	if err != nil {
		s.notice = err.Error()
		return nil
	}
	s.notice = ""
	if res != nil {
		return s.finish(res)
	}
	s.load()
	return nil
}

func (s *QuizScreen) prev() tea.Cmd {
	if err := s.deps.Controller.Prev(); err != nil {
		s.notice = err.Error()
		return nil
	}
	s.notice = ""
	s.load()
	return nil
}

// finish records the end of the session and replaces everything above the
// home screen with the summary.
func (s *QuizScreen) finish(res *session.Result) tea.Cmd {
	s.done = true
	data := SessionEvent(res)
	record := s.record(func(ctx context.Context, events store.EventRepo) error {
		return events.AppendSessionEvent(ctx, data)
	})

	if res.Abandoned && res.Answered == 0 {
		return tea.Batch(record, router.PopToRoot(nil))
	}
	return tea.Batch(record, router.PopToRoot(summary.New(res, s.deps)))
}

// askTutor requests an explanation for the current question when the
// dataset has none and a tutor is configured.
func (s *QuizScreen) askTutor() tea.Cmd {
	if !s.canAskTutor() {
		return nil
	}
	q := s.item.Question
	if _, ok := s.deps.Tutor.Cached(q.ID); ok || s.explaining[q.ID] {
		return nil
	}
	delete(s.tutorErr, q.ID)
	s.explaining[q.ID] = true

	tutor := s.deps.Tutor
	selected := s.item.State.SelectedOption
	return func() tea.Msg {
		e, err := tutor.Explain(context.Background(), q, selected)
		return explanationMsg{QuestionID: q.ID, Explanation: e, Err: err}
	}
}

func (s *QuizScreen) canAskTutor() bool {
	return s.item.State.Answered && s.item.Question.Explanation == "" && s.deps.Tutor.Available()
}

// record runs fn against the event repo in a command. Failures are logged
// and otherwise ignored.
func (s *QuizScreen) record(fn func(context.Context, store.EventRepo) error) tea.Cmd {
	events := s.deps.Events
	if events == nil {
		return nil
	}
	logger := s.deps.Log()
	return func() tea.Msg {
		if err := fn(context.Background(), events); err != nil {
			logger.Warn("event not recorded", zap.String("session_id", s.sessionID), zap.Error(err))
		}
		return nil
	}
}

// load refreshes the cached item and option list from the controller.
func (s *QuizScreen) load() {
	c := s.deps.Controller
	item, err := c.Current()
	if err != nil {
		return
	}
	opts, err := c.Options()
	if err != nil {
		return
	}
	cursor := 0
	if s.options.Options != nil && s.item.Index == item.Index {
		cursor = min(s.options.Cursor, len(opts)-1)
	}
	s.item = item
	s.options = components.NewOptionList(opts)
	s.options.Cursor = cursor
	if item.State.Answered {
		s.options.Reveal(item.Question.Answer, item.State.SelectedOption)
	}

	s.source = ""
	if s.deps.Catalog != nil {
		s.source = s.deps.Catalog.RecoverSource(item.Question)
	}
}

func tutorErrorText(err error) string {
	if errors.Is(err, explain.ErrNoTutor) {
		return "No tutor is configured."
	}
	return fmt.Sprintf("The tutor could not explain this question: %v", err)
}

// SessionEvent is the end or abandon event for res.
func SessionEvent(res *session.Result) store.SessionEventData {
	action := store.ActionEnd
	if res.Abandoned {
		action = store.ActionAbandon
	}
	return store.SessionEventData{
		SessionID:       res.SessionID,
		Action:          action,
		Grade:           res.Grade,
		Settings:        res.Settings,
		QuestionsServed: res.Answered,
		CorrectAnswers:  res.Score,
		DurationSecs:    int(res.Duration.Seconds()),
	}
}
