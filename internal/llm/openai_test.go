package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatCapture struct {
	Model          string           `json:"model"`
	Messages       []map[string]any `json:"messages"`
	ResponseFormat map[string]any   `json:"response_format"`
}

func newTestChatProvider(t *testing.T, status int, body any, captured *chatCapture) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	return newChatProvider(ProviderOpenAI, "test-key", server.URL+"/v1", "gpt-4o-mini")
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	var got chatCapture
	p := newTestChatProvider(t, http.StatusOK,
		chatCompletion(`{"reason":"r","vocabulary":["apple: りんご"]}`, "stop"), &got)

	resp, err := p.Generate(context.Background(), UserPrompt("You explain Eiken questions.", "Explain 2-001.", testSchema(), 256))
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 25, resp.Usage.OutputTokens)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, "gpt-4o-mini", resp.Model)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0]["role"])
	assert.Equal(t, "json_schema", got.ResponseFormat["type"])
}

func TestOpenAIProvider_SchemaViolation(t *testing.T) {
	p := newTestChatProvider(t, http.StatusOK, chatCompletion(`{"reason":"r"}`, "stop"), nil)
	_, err := p.Generate(context.Background(), UserPrompt("", "x", testSchema(), 256))
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	p := newTestChatProvider(t, http.StatusOK, chatCompletion(`{"reason":`, "length"), nil)
	_, err := p.Generate(context.Background(), UserPrompt("", "x", testSchema(), 8))
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	body := chatCompletion("", "stop")
	body["choices"] = []any{}
	p := newTestChatProvider(t, http.StatusOK, body, nil)
	_, err := p.Generate(context.Background(), UserPrompt("", "x", nil, 8))
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
}

func TestOpenAIProvider_HTTPErrors(t *testing.T) {
	errBody := map[string]any{"error": map[string]any{"type": "x", "message": "nope"}}

	p := newTestChatProvider(t, http.StatusTooManyRequests, errBody, nil)
	_, err := p.Generate(context.Background(), UserPrompt("", "x", nil, 8))
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	p = newTestChatProvider(t, http.StatusInternalServerError, errBody, nil)
	_, err = p.Generate(context.Background(), UserPrompt("", "x", nil, 8))
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestNewOpenAIProvider(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{})
	assert.Error(t, err)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.ModelID())
	assert.Equal(t, ProviderOpenAI, p.Name())
}

func TestNewOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.0-flash-001"})
	assert.Error(t, err)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", p.ModelID())
	assert.Equal(t, ProviderOpenRouter, p.Name())

	// Aliases are not applied to OpenRouter ids.
	p, err = NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "gpt-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-mini", p.ModelID())
}
