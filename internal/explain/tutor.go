package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eiken-drill/eiken/internal/llm"
	"github.com/eiken-drill/eiken/internal/question"
)

// ErrNoTutor is returned when no LLM provider is configured.
var ErrNoTutor = errors.New("explanation tutor is not configured")

// Config tunes tutor requests.
type Config struct {
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func DefaultConfig() Config {
	return Config{MaxTokens: 1024, Temperature: 0.2, Timeout: 30 * time.Second}
}

// Explanation is a tutor-written explanation.
type Explanation struct {
	QuestionID  string   `json:"-"`
	Reason      string   `json:"reason"`
	Vocabulary  []string `json:"vocabulary"`
	Translation string   `json:"translation"`
}

// Text renders e in the dataset's explanation format so Split can parse it.
func (e *Explanation) Text(answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>正解：%s</b>\n%s", answer, strings.TrimSpace(e.Reason))
	for _, v := range e.Vocabulary {
		if v = strings.TrimSpace(v); v != "" {
			b.WriteString("\n・")
			b.WriteString(v)
		}
	}
	return b.String()
}

// Sections is the split form of Text.
func (e *Explanation) Sections(answer string) Sections {
	return Split(e.Text(answer))
}

// Tutor drafts explanations for questions that have none. Results are cached
// per question id for the life of the process. It is safe for concurrent use.
type Tutor struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger

	mu    sync.Mutex
	cache map[string]*Explanation
}

// NewTutor returns a tutor backed by provider. A nil provider gives a tutor
// whose Explain always fails with ErrNoTutor.
func NewTutor(provider llm.Provider, cfg Config, logger *zap.Logger) *Tutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tutor{
		provider: provider,
		cfg:      cfg,
		logger:   logger.Named("tutor"),
		cache:    make(map[string]*Explanation),
	}
}

// Available reports whether a provider is configured.
func (t *Tutor) Available() bool {
	return t != nil && t.provider != nil
}

// Cached returns a previously generated explanation without calling the model.
func (t *Tutor) Cached(id string) (*Explanation, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.cache[id]
	return e, ok
}

// Explain returns an explanation for q, generating it on first request.
// selected is the learner's choice and only shapes the prompt.
func (t *Tutor) Explain(ctx context.Context, q question.Question, selected string) (*Explanation, error) {
	if !t.Available() {
		return nil, ErrNoTutor
	}
	if e, ok := t.Cached(q.ID); ok {
		return e, nil
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeExplanation)
	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}

	req := llm.UserPrompt(systemPrompt, buildUserMessage(q, selected), ExplanationSchema, t.cfg.MaxTokens)
	req.Temperature = t.cfg.Temperature

	resp, err := t.provider.Generate(ctx, req)
	if err != nil {
		t.logger.Warn("explanation failed", zap.String("question", q.ID), zap.Error(err))
		return nil, fmt.Errorf("explain %s: %w", q.ID, err)
	}

	var e Explanation
	if err := json.Unmarshal(resp.Content, &e); err != nil {
		return nil, fmt.Errorf("parse explanation for %s: %w", q.ID, err)
	}
	e.QuestionID = q.ID

	t.mu.Lock()
	t.cache[q.ID] = &e
	t.mu.Unlock()

	t.logger.Debug("explanation ready",
		zap.String("question", q.ID),
		zap.Int("output_tokens", resp.Usage.OutputTokens))
	return &e, nil
}
