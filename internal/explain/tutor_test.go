package explain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eiken-drill/eiken/internal/llm"
	"github.com/eiken-drill/eiken/internal/question"
)

var sampleQuestion = question.Question{
	ID:       "pre-2-007",
	Question: "My sister ( ) our mother. They both have curly hair.",
	Options:  []string{"takes after", "looks for", "runs into", "puts off"},
	Answer:   "takes after",
}

const sampleReply = `{
	"reason": "文脈から「似ている」が入ります。",
	"vocabulary": ["take after: 〜に似ている", "look for: 〜を探す", " "],
	"translation": "私の姉は母に似ています。"
}`

func TestTutor_Explain(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(sampleReply)})
	tutor := NewTutor(mock, DefaultConfig(), zaptest.NewLogger(t))

	e, err := tutor.Explain(context.Background(), sampleQuestion, "runs into")
	require.NoError(t, err)
	assert.Equal(t, "pre-2-007", e.QuestionID)
	assert.Equal(t, "私の姉は母に似ています。", e.Translation)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, ExplanationSchema, req.Schema)
	assert.Equal(t, 1024, req.MaxTokens)
	assert.Contains(t, req.Messages[0].Content, "Grade: 準2級")
	assert.Contains(t, req.Messages[0].Content, "2. looks for")
	assert.Contains(t, req.Messages[0].Content, "The learner chose: runs into")

	s := e.Sections(sampleQuestion.Answer)
	assert.Equal(t, "正解：takes after", s.HeaderText())
	assert.Equal(t, "文脈から「似ている」が入ります。", s.Reason)
	assert.Equal(t, []string{"take after: 〜に似ている", "look for: 〜を探す"}, s.Vocabulary)
}

func TestTutor_CachesPerQuestion(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(sampleReply)})
	tutor := NewTutor(mock, DefaultConfig(), nil)

	first, err := tutor.Explain(context.Background(), sampleQuestion, "")
	require.NoError(t, err)
	second, err := tutor.Explain(context.Background(), sampleQuestion, "looks for")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, mock.CallCount())
	assert.NotContains(t, mock.Calls[0].Messages[0].Content, "The learner chose")

	cached, ok := tutor.Cached("pre-2-007")
	assert.True(t, ok)
	assert.Same(t, first, cached)
}

func TestTutor_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	tutor := NewTutor(mock, DefaultConfig(), zaptest.NewLogger(t))

	_, err := tutor.Explain(context.Background(), sampleQuestion, "")
	var unavail *llm.ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
	_, ok := tutor.Cached(sampleQuestion.ID)
	assert.False(t, ok)
}

func TestTutor_RejectsNonConformingReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"reason":"only"}`)})
	tutor := NewTutor(mock, DefaultConfig(), nil)

	_, err := tutor.Explain(context.Background(), sampleQuestion, "")
	var inv *llm.ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
}

func TestTutor_NotConfigured(t *testing.T) {
	tutor := NewTutor(nil, DefaultConfig(), nil)
	assert.False(t, tutor.Available())
	_, err := tutor.Explain(context.Background(), sampleQuestion, "")
	assert.ErrorIs(t, err, ErrNoTutor)

	var nilTutor *Tutor
	assert.False(t, nilTutor.Available())
}

func TestExplanationText(t *testing.T) {
	e := &Explanation{Reason: " 理由 ", Vocabulary: []string{"a: あ"}}
	assert.Equal(t, "<b>正解：a</b>\n理由\n・a: あ", e.Text("a"))
}
