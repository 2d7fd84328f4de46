// Package question holds the read-only exam question dataset: the Question
// type, grade naming, dataset loading and validation.
package question

// Question is a single multiple-choice exam item.
//
// The id encodes grade and sequence, e.g. "2-045", "pre-2-010" or the legacy
// "pre2-010". OptionMeanings, when present, is index-aligned with Options.
type Question struct {
	ID             string   `json:"id"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	OptionMeanings []string `json:"optionMeanings,omitempty"`
	Answer         string   `json:"answer"`
	Explanation    string   `json:"explanation,omitempty"`
	Translation    string   `json:"translation,omitempty"`
	Source         string   `json:"source,omitempty"`
}

// Option pairs an option's text with its meaning for display.
type Option struct {
	Text    string `json:"text"`
	Meaning string `json:"meaning"`
}

// Pairs returns the options paired with their meanings in dataset order.
// A missing meaning is the empty string.
func (q Question) Pairs() []Option {
	out := make([]Option, len(q.Options))
	for i, text := range q.Options {
		out[i] = Option{Text: text}
		if i < len(q.OptionMeanings) {
			out[i].Meaning = q.OptionMeanings[i]
		}
	}
	return out
}

// IsCorrect reports whether the given option text is the answer.
func (q Question) IsCorrect(option string) bool {
	return option == q.Answer
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	c := q
	c.Options = append([]string(nil), q.Options...)
	if q.OptionMeanings != nil {
		c.OptionMeanings = append([]string(nil), q.OptionMeanings...)
	}
	return c
}
