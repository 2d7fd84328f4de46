package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eiken-drill/eiken/internal/mistakes"
	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/store"
)

// resetFlags restores every flag of c and its children to its default, since
// the command tree is shared by all tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// testEnv isolates config, data and API key lookup and returns a DB path.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, k := range []string{
		"EIKEN_DB", "EIKEN_CONFIG", "EIKEN_LLM_PROVIDER",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
	return filepath.Join(dir, "eiken.db")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedMistake(t *testing.T, dbPath string, id string) {
	t.Helper()
	catalog, err := question.Default()
	require.NoError(t, err)
	q, ok := catalog.Lookup(question.GradeFromID(id), id)
	require.True(t, ok)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	list, err := mistakes.Load(context.Background(), st.BlobRepo())
	require.NoError(t, err)
	_, err = list.Record(context.Background(), q)
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "eiken (devel)\n", out)
}

func TestGrades(t *testing.T) {
	db := testEnv(t)
	out, err := execute(t, "grades", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "3級")
	assert.Contains(t, out, "準2級")
	assert.Contains(t, out, "17 questions in 4 grades")
}

func TestGradesBadDataset(t *testing.T) {
	db := testEnv(t)
	_, err := execute(t, "grades", "--db", db, "--data", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMistakes(t *testing.T) {
	db := testEnv(t)

	out, err := execute(t, "mistakes", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No mistakes to review.")

	seedMistake(t, db, "3-001")

	out, err = execute(t, "mistakes", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "3-001")
	assert.Contains(t, out, "1 of 1 mistakes")

	out, err = execute(t, "mistakes", "list", "--db", db, "--grade", "pre-2")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 1 mistakes")

	out, err = execute(t, "mistakes", "show", "3-001", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "My brother usually ( ) his bike to school.")
	assert.Contains(t, out, "✓ 1. rides  (乗る)")
	assert.Contains(t, out, "正解：rides")
	assert.NotContains(t, out, "<b>")
	assert.Contains(t, out, "・ride 乗る")

	_, err = execute(t, "mistakes", "show", "2-999", "--db", db)
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	db := testEnv(t)

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions recorded yet.")

	st, err := store.Open(db)
	require.NoError(t, err)
	ctx := context.Background()
	repo := st.EventRepo()
	require.NoError(t, repo.AppendAnswerEvent(ctx, store.AnswerEventData{
		SessionID: "s-1", QuestionID: "3-001", Grade: "3",
		CorrectAnswer: "rides", SelectedAnswer: "drives", TimeMs: 1500,
	}))
	require.NoError(t, repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID: "s-1", Action: store.ActionAbandon, Grade: "3",
		QuestionsServed: 1, DurationSecs: 65,
	}))
	require.NoError(t, st.Close())

	out, err = execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "s-1")
	assert.Contains(t, out, "1:05")
	assert.Contains(t, out, "quit")

	out, err = execute(t, "history", "s-1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "drives")
	assert.Contains(t, out, "0/1 correct")

	_, err = execute(t, "history", "nope", "--db", db)
	assert.Error(t, err)
}

func TestYearsOf(t *testing.T) {
	assert.Equal(t, "-", yearsOf(nil))
	assert.Equal(t, "2023-1", yearsOf([]question.Question{{Source: "2023-1"}}))
	assert.Equal(t, "2022-3..2023-1 (2)", yearsOf([]question.Question{
		{Source: "2023-1"}, {Source: "2022-3"}, {Source: "2023-1"},
	}))
}

func TestLLM(t *testing.T) {
	db := testEnv(t)

	out, err := execute(t, "llm", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM requests found.")

	out, err = execute(t, "llm", "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM usage recorded yet.")

	st, err := store.Open(db)
	require.NoError(t, err)
	ctx := context.Background()
	repo := st.EventRepo()
	require.NoError(t, repo.AppendLLMRequest(ctx, store.LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "explanation",
		InputTokens: 1000, OutputTokens: 200, LatencyMs: 800, Success: true,
		RequestBody: `{"q":"2-001"}`, ResponseBody: `{"reason":"三単現"}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, store.LLMRequestEventData{
		Provider: "openrouter", Model: "acme/secret-model", Purpose: "explanation",
		InputTokens: 10, LatencyMs: 50, ErrorMessage: "rate limited",
	}))
	require.NoError(t, st.Close())

	out, err = execute(t, "llm", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "acme/secret-model")

	out, err = execute(t, "llm", "list", "--db", db, "--failed")
	require.NoError(t, err)
	assert.NotContains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "acme/secret-model")

	out, err = execute(t, "llm", "view", "1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Provider:  openai")
	assert.Contains(t, out, `{"reason":"三単現"}`)

	out, err = execute(t, "llm", "view", "2", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Error:     rate limited")
	assert.Contains(t, out, "(not captured)")

	_, err = execute(t, "llm", "view", "x", "--db", db)
	assert.Error(t, err)
	_, err = execute(t, "llm", "view", "99", "--db", db)
	assert.Error(t, err)

	out, err = execute(t, "llm", "stats", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "explanation")
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "No pricing for: acme/secret-model")
}

func TestUpdateDevBuild(t *testing.T) {
	out, err := execute(t, "update")
	require.NoError(t, err)
	assert.Contains(t, out, "Cannot update a development build")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "準2", truncate("準2級", 2))
}
