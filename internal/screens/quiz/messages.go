package quiz

import "github.com/eiken-drill/eiken/internal/explain"

// explanationMsg carries a tutor explanation back to the update loop.
type explanationMsg struct {
	QuestionID  string
	Explanation *explain.Explanation
	Err         error
}
