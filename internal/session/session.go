// Package session implements the quiz session state machine: grade
// selection, filter settings, answering, navigation and scoring.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eiken-drill/eiken/internal/filter"
	"github.com/eiken-drill/eiken/internal/question"
)

var (
	// ErrEmptyGradeCatalog is returned when the selected grade has no questions.
	ErrEmptyGradeCatalog = errors.New("no questions for this grade yet")

	// ErrEmptyFilterResult is returned when a start request yields no questions.
	ErrEmptyFilterResult = filter.ErrEmptyFilterResult

	// ErrNotAnswered is returned by Next while the current question is unanswered.
	ErrNotAnswered = errors.New("answer the current question first")

	// ErrAlreadyAnswered is returned when answering an answered question.
	ErrAlreadyAnswered = errors.New("question already answered")

	// ErrUnknownOption is returned when the submitted text is not an option.
	ErrUnknownOption = errors.New("not one of the options")

	// ErrNoSession is returned by quiz operations outside a quiz.
	ErrNoSession = errors.New("no quiz in progress")

	// ErrNoGrade is returned by settings operations before a grade is selected.
	ErrNoGrade = errors.New("no grade selected")
)

// Catalog is the read-only question dataset.
type Catalog interface {
	Questions(grade string) []question.Question
}

// MistakeStore receives wrong answers and supplies review sessions.
type MistakeStore interface {
	Record(ctx context.Context, q question.Question) (bool, error)
	Questions() []question.Question
}

// Controller owns the current grade, settings and quiz session. All
// methods are expected to run on one goroutine (the UI update loop).
type Controller struct {
	catalog  Catalog
	mistakes MistakeStore
	rng      *rand.Rand
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger

	phase    Phase
	grade    string
	pool     []question.Question
	settings filter.Settings
	session  *Session
	last     *Result
}

// Option configures a Controller.
type Option func(*Controller)

// WithRand sets the random source used for question and option shuffles.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) { c.rng = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(f func() string) Option {
	return func(c *Controller) { c.newID = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a Controller in the Home phase.
func New(catalog Catalog, mistakes MistakeStore, opts ...Option) *Controller {
	c := &Controller{
		catalog:  catalog,
		mistakes: mistakes,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		logger:   zap.NewNop(),
		phase:    PhaseHome,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Grade returns the selected grade, "review" during a review session, or
// "" at Home.
func (c *Controller) Grade() string { return c.grade }

// Settings returns the current filter settings.
func (c *Controller) Settings() filter.Settings { return c.settings }

// LastResult returns the result of the most recently finished or abandoned
// session, or nil.
func (c *Controller) LastResult() *Result { return c.last }

// Session returns a copy of the active session, or nil.
func (c *Controller) Session() *Session {
	if c.session == nil {
		return nil
	}
	return c.session.clone()
}

// SelectGrade moves to Settings for grade with default settings. A grade
// without questions leaves the controller unchanged.
func (c *Controller) SelectGrade(grade string) error {
	g := question.NormalizeGrade(grade)
	qs := c.catalog.Questions(g)
	if len(qs) == 0 {
		return fmt.Errorf("grade %s: %w", g, ErrEmptyGradeCatalog)
	}

	c.grade = g
	c.pool = qs
	c.settings = filter.DefaultSettings()
	c.session = nil
	c.phase = PhaseSettings

	c.logger.Debug("grade selected", zap.String("grade", g), zap.Int("questions", len(qs)))
	return nil
}

// UpdateSettings replaces the filter settings.
func (c *Controller) UpdateSettings(s filter.Settings) error {
	if c.phase != PhaseSettings {
		return ErrNoGrade
	}
	c.settings = s
	return nil
}

// AvailableCount is the number of questions matching the year and range
// filters for the selected grade.
func (c *Controller) AvailableCount() int {
	return len(filter.Matching(c.pool, c.settings))
}

// Years lists the distinct sources of the selected grade.
func (c *Controller) Years() []string {
	return filter.Years(c.pool)
}

// Start builds the session snapshot from the current settings. When
// nothing matches, ErrEmptyFilterResult is returned and the controller
// stays in Settings.
func (c *Controller) Start() error {
	if c.phase != PhaseSettings {
		return ErrNoGrade
	}
	qs, err := filter.Apply(c.pool, c.settings, c.rng)
	if err != nil {
		return err
	}
	c.begin(c.grade, c.settings, qs)
	return nil
}

// StartReview starts a session over the whole mistake list, unfiltered and
// in insertion order. An empty list yields ErrEmptyFilterResult.
func (c *Controller) StartReview() error {
	qs := c.mistakes.Questions()
	if len(qs) == 0 {
		return ErrEmptyFilterResult
	}
	c.pool = nil
	c.settings = filter.Settings{}
	c.begin(question.ReviewGrade, filter.Settings{}, qs)
	return nil
}

func (c *Controller) begin(grade string, settings filter.Settings, qs []question.Question) {
	c.grade = grade
	c.session = &Session{
		ID:        c.newID(),
		Grade:     grade,
		Settings:  settings,
		Questions: qs,
		State:     make([]QuestionState, len(qs)),
		StartedAt: c.now(),
	}
	c.last = nil
	c.phase = PhaseQuestion

	c.logger.Info("session started",
		zap.String("session_id", c.session.ID),
		zap.String("grade", grade),
		zap.Stringer("settings", settings),
		zap.Int("questions", len(qs)),
	)
}

// Current returns the current question with its state.
func (c *Controller) Current() (Item, error) {
	if c.session == nil {
		return Item{}, ErrNoSession
	}
	s := c.session
	st := s.State[s.CurrentIndex]
	if st.ShuffledOptions != nil {
		st.ShuffledOptions = slices.Clone(st.ShuffledOptions)
	}
	return Item{
		Question: s.Questions[s.CurrentIndex].Clone(),
		State:    st,
		Index:    s.CurrentIndex,
		Total:    len(s.Questions),
		Score:    s.Score,
		Grade:    s.Grade,
	}, nil
}

// Options returns the current question's options in display order. The
// order is shuffled on first call for each question and then fixed.
func (c *Controller) Options() ([]question.Option, error) {
	if c.session == nil {
		return nil, ErrNoSession
	}
	s := c.session
	st := &s.State[s.CurrentIndex]
	if st.ShuffledOptions == nil {
		opts := s.Questions[s.CurrentIndex].Pairs()
		filter.Shuffle(c.rng, opts)
		st.ShuffledOptions = opts
		st.ShownAt = c.now()
	}
	return slices.Clone(st.ShuffledOptions), nil
}

// Answer submits option for the current question. It is one-way: a second
// answer returns ErrAlreadyAnswered and changes nothing. A wrong answer is
// recorded in the mistake store; a failed save is reported in
// AnswerResult.PersistErr.
func (c *Controller) Answer(ctx context.Context, option string) (AnswerResult, error) {
	if c.session == nil {
		return AnswerResult{}, ErrNoSession
	}
	s := c.session
	q := s.Questions[s.CurrentIndex]
	st := &s.State[s.CurrentIndex]

	if st.Answered {
		return AnswerResult{}, ErrAlreadyAnswered
	}
	if !slices.Contains(q.Options, option) {
		return AnswerResult{}, fmt.Errorf("%q: %w", option, ErrUnknownOption)
	}

	correct := q.IsCorrect(option)
	st.Answered = true
	st.SelectedOption = option
	st.IsCorrect = correct
	st.AnsweredAt = c.now()
	c.phase = PhaseAnswered

	res := AnswerResult{Correct: correct, Answer: q.Answer}
	if correct {
		s.Score++
	} else {
		res.MistakeRecorded, res.PersistErr = c.mistakes.Record(ctx, q)
		if res.PersistErr != nil {
			c.logger.Warn("mistake not saved", zap.String("question_id", q.ID), zap.Error(res.PersistErr))
		}
	}

	c.logger.Debug("answer",
		zap.String("session_id", s.ID),
		zap.String("question_id", q.ID),
		zap.Bool("correct", correct),
		zap.Int("score", s.Score),
	)
	return res, nil
}

// Next advances to the next question. On the last question it ends the
// session, returns its Result and moves to Home.
func (c *Controller) Next() (*Result, error) {
	if c.session == nil {
		return nil, ErrNoSession
	}
	s := c.session
	if !s.State[s.CurrentIndex].Answered {
		return nil, ErrNotAnswered
	}

	if s.CurrentIndex < len(s.Questions)-1 {
		s.CurrentIndex++
		c.syncPhase()
		return nil, nil
	}
	return c.finish(false), nil
}

// Prev moves back one question, keeping its answer state. It is a no-op on
// the first question.
func (c *Controller) Prev() error {
	if c.session == nil {
		return ErrNoSession
	}
	if c.session.CurrentIndex > 0 {
		c.session.CurrentIndex--
		c.syncPhase()
	}
	return nil
}

// Home returns to grade selection from any phase. An active session is
// abandoned and its partial Result returned; otherwise the result is nil.
func (c *Controller) Home() *Result {
	var res *Result
	if c.session != nil {
		res = c.finish(true)
	}
	c.phase = PhaseHome
	c.grade = ""
	c.pool = nil
	c.settings = filter.Settings{}
	return res
}

func (c *Controller) syncPhase() {
	if c.session.State[c.session.CurrentIndex].Answered {
		c.phase = PhaseAnswered
	} else {
		c.phase = PhaseQuestion
	}
}

func (c *Controller) finish(abandoned bool) *Result {
	res := buildResult(c.session, c.now(), abandoned)
	c.logger.Info("session finished",
		zap.String("session_id", res.SessionID),
		zap.Int("score", res.Score),
		zap.Int("total", res.Total),
		zap.Bool("abandoned", abandoned),
	)

	c.last = res
	c.session = nil
	c.phase = PhaseHome
	c.grade = ""
	c.pool = nil
	return res
}
