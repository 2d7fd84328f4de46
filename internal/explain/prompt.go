package explain

import (
	"fmt"
	"strings"

	"github.com/eiken-drill/eiken/internal/question"
)

const systemPrompt = `You are an experienced Eiken (実用英語技能検定) instructor. You explain multiple-choice questions to Japanese learners concisely and accurately, in Japanese.`

func buildUserMessage(q question.Question, selected string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Grade: %s\n", question.DisplayName(question.GradeFromID(q.ID)))
	fmt.Fprintf(&b, "Question: %s\n", q.Question)
	b.WriteString("Options:\n")
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
	}
	fmt.Fprintf(&b, "Correct answer: %s\n", q.Answer)
	if selected != "" && selected != q.Answer {
		fmt.Fprintf(&b, "The learner chose: %s\n", selected)
	}

	b.WriteString(`
Instructions:
1. Explain in Japanese why the correct answer fits, using the context clues in the sentence.
2. If the learner chose a wrong option, say briefly why it does not fit.
3. List every option with its Japanese meaning as "word: meaning".
4. Translate the completed sentence into natural Japanese.`)

	return b.String()
}
