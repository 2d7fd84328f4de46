package session

import (
	"time"

	"github.com/eiken-drill/eiken/internal/question"
)

// Result holds the data displayed on the summary screen once a session
// finishes or is abandoned.
type Result struct {
	SessionID string
	Grade     string
	Settings  string
	Score     int
	Total     int
	Answered  int
	Duration  time.Duration
	Missed    []question.Question
	Abandoned bool
}

// Accuracy is Score / Answered, or 0 when nothing was answered.
func (r Result) Accuracy() float64 {
	if r.Answered == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Answered)
}

// buildResult creates a Result from the session state.
func buildResult(s *Session, end time.Time, abandoned bool) *Result {
	res := &Result{
		SessionID: s.ID,
		Grade:     s.Grade,
		Score:     s.Score,
		Total:     len(s.Questions),
		Answered:  s.Answered(),
		Duration:  end.Sub(s.StartedAt),
		Abandoned: abandoned,
	}
	if s.Grade != question.ReviewGrade {
		res.Settings = s.Settings.String()
	}
	for i, st := range s.State {
		if st.Answered && !st.IsCorrect {
			res.Missed = append(res.Missed, s.Questions[i].Clone())
		}
	}
	return res
}
