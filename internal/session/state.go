package session

import (
	"time"

	"github.com/eiken-drill/eiken/internal/filter"
	"github.com/eiken-drill/eiken/internal/question"
)

// Phase is the controller's position in Home -> Settings -> Quiz -> Home.
type Phase int

const (
	PhaseHome     Phase = iota // Grade selection
	PhaseSettings              // Filter settings for the selected grade
	PhaseQuestion              // Quiz, current question unanswered
	PhaseAnswered              // Quiz, current question answered
)

func (p Phase) String() string {
	switch p {
	case PhaseHome:
		return "home"
	case PhaseSettings:
		return "settings"
	case PhaseQuestion:
		return "question"
	case PhaseAnswered:
		return "answered"
	}
	return "unknown"
}

// InQuiz reports whether a session is active.
func (p Phase) InQuiz() bool {
	return p == PhaseQuestion || p == PhaseAnswered
}

// QuestionState is the per-question answer state of a session. It is
// written once on the first answer and never reset.
type QuestionState struct {
	Answered       bool
	SelectedOption string
	IsCorrect      bool

	// ShuffledOptions is nil until the question is first displayed, then
	// fixed for the rest of the session.
	ShuffledOptions []question.Option

	// ShownAt is when the options were first displayed.
	ShownAt time.Time

	// AnsweredAt is when the answer was submitted.
	AnsweredAt time.Time
}

// TimeTaken returns the time from first display to answer, or zero when
// either is unknown.
func (st QuestionState) TimeTaken() time.Duration {
	if st.ShownAt.IsZero() || st.AnsweredAt.IsZero() {
		return 0
	}
	return st.AnsweredAt.Sub(st.ShownAt)
}

// Session is one pass over a fixed, ordered question snapshot.
//
// Invariants: len(State) == len(Questions); 0 <= CurrentIndex <
// len(Questions); Score equals the number of states with IsCorrect.
type Session struct {
	ID           string
	Grade        string
	Settings     filter.Settings
	Questions    []question.Question
	CurrentIndex int
	Score        int
	State        []QuestionState
	StartedAt    time.Time
}

// Answered returns the number of answered questions.
func (s *Session) Answered() int {
	n := 0
	for _, st := range s.State {
		if st.Answered {
			n++
		}
	}
	return n
}

func (s *Session) clone() *Session {
	c := *s
	c.State = make([]QuestionState, len(s.State))
	for i, st := range s.State {
		c.State[i] = st
		if st.ShuffledOptions != nil {
			c.State[i].ShuffledOptions = append([]question.Option(nil), st.ShuffledOptions...)
		}
	}
	return &c
}

// Item is the question currently shown, with its position and state.
type Item struct {
	Question question.Question
	State    QuestionState
	Index    int
	Total    int
	Score    int
	Grade    string
}

// IsFirst reports whether the item is the first of the session.
func (it Item) IsFirst() bool { return it.Index == 0 }

// IsLast reports whether the item is the last of the session.
func (it Item) IsLast() bool { return it.Index == it.Total-1 }

// AnswerResult is returned by Answer.
type AnswerResult struct {
	Correct bool
	Answer  string

	// MistakeRecorded is true when the question was newly added to the
	// mistake list.
	MistakeRecorded bool

	// PersistErr is set when the mistake list could not be saved. The
	// answer itself still counts.
	PersistErr error
}
