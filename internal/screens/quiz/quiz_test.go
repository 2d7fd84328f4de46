package quiz

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eiken-drill/eiken/internal/llm"
	"github.com/eiken-drill/eiken/internal/router"
	"github.com/eiken-drill/eiken/internal/screen/screentest"
	"github.com/eiken-drill/eiken/internal/screens/summary"
	"github.com/eiken-drill/eiken/internal/session"
	"github.com/eiken-drill/eiken/internal/store"
	"github.com/eiken-drill/eiken/internal/ui/layout"
)

func startQuiz(t *testing.T, env *screentest.Env) *QuizScreen {
	t.Helper()
	c := env.Deps.Controller
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())
	s := New(env.Deps)
	screentest.Drain(s.Init())
	return s
}

// press sends a key and runs the resulting commands.
func press(s *QuizScreen, key string) []tea.Msg {
	_, cmd := s.Update(screentest.Key(key))
	return screentest.Drain(cmd)
}

func numberOf(t *testing.T, s *QuizScreen, text string) string {
	t.Helper()
	for i, o := range s.options.Options {
		if o.Text == text {
			return strconv.Itoa(i + 1)
		}
	}
	t.Fatalf("option %q not shown", text)
	return ""
}

func wrongOption(s *QuizScreen) string {
	for _, o := range s.options.Options {
		if o.Text != s.item.Question.Answer {
			return o.Text
		}
	}
	return ""
}

func countStartEvents(t *testing.T, env *screentest.Env) int {
	t.Helper()
	var n int
	row := env.Store.DB().QueryRow(`SELECT COUNT(*) FROM session_events WHERE action = ?`, store.ActionStart)
	require.NoError(t, row.Scan(&n))
	return n
}

func TestQuizScreen_Start(t *testing.T) {
	env := screentest.New(t)
	s := startQuiz(t, env)

	assert.Equal(t, "Quiz", s.Title())
	assert.Equal(t, 1, countStartEvents(t, env))

	view := s.View(100, 40)
	assert.Contains(t, view, "Question 1 / 5")
	assert.Contains(t, view, "2級")
	assert.Contains(t, view, "出典: 2級 2023-1   (2-001)")
	assert.Contains(t, view, "He ( ) to school every day.")
	assert.Len(t, s.options.Options, 4)
}

func TestQuizScreen_AnswerCorrect(t *testing.T) {
	env := screentest.New(t)
	s := startQuiz(t, env)

	press(s, numberOf(t, s, "walks"))

	require.True(t, s.item.State.Answered)
	assert.True(t, s.item.State.IsCorrect)
	assert.Equal(t, 1, s.item.Score)

	view := s.View(100, 40)
	assert.Contains(t, view, "正解!")
	assert.Contains(t, view, "正解：walks")
	assert.Contains(t, view, "主語が三人称単数。")
	assert.Contains(t, view, "・walk 歩く")
	assert.Contains(t, view, "訳: 彼は毎日歩いて学校に行く。")
	assert.Contains(t, view, "歩いた")

	answers, err := env.Deps.Events.QueryAnswerEvents(context.Background(), s.sessionID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "2-001", answers[0].QuestionID)
	assert.True(t, answers[0].Correct)
	assert.Equal(t, "2", answers[0].Grade)
	assert.False(t, env.Deps.Mistakes.Contains("2-001"))
}

func TestQuizScreen_AnswerWrong(t *testing.T) {
	env := screentest.New(t)
	s := startQuiz(t, env)

	wrong := wrongOption(s)
	press(s, numberOf(t, s, wrong))

	assert.False(t, s.item.State.IsCorrect)
	assert.Equal(t, wrong, s.item.State.SelectedOption)
	assert.True(t, env.Deps.Mistakes.Contains("2-001"))
	assert.Contains(t, s.View(100, 40), "不正解")

	// A second answer is ignored.
	press(s, numberOf(t, s, "walks"))
	assert.Equal(t, wrong, s.item.State.SelectedOption)
	assert.Equal(t, 0, s.item.Score)
}

func TestQuizScreen_EnterAnswersCursor(t *testing.T) {
	env := screentest.New(t)
	s := startQuiz(t, env)

	press(s, "down")
	assert.Equal(t, 1, s.options.Cursor)
	press(s, "enter")

	require.True(t, s.item.State.Answered)
	assert.Equal(t, s.options.Options[1].Text, s.item.State.SelectedOption)
}

func TestQuizScreen_NextNeedsAnswer(t *testing.T) {
	env := screentest.New(t)
	s := startQuiz(t, env)

	press(s, "right")
	assert.Equal(t, 0, s.item.Index)
	assert.Equal(t, session.ErrNotAnswered.Error(), s.notice)
}

func TestQuizScreen_PrevKeepsAnswerAndOrder(t *testing.T) {
	env := screentest.New(t)
	s := startQuiz(t, env)

	order := s.options.Options
	press(s, numberOf(t, s, "walks"))
	press(s, "enter")
	assert.Equal(t, 1, s.item.Index)
	assert.False(t, s.item.State.Answered)

	press(s, "left")
	assert.Equal(t, 0, s.item.Index)
	assert.True(t, s.item.State.Answered)
	assert.Equal(t, order, s.options.Options)

	// Prev on the first question stays put.
	press(s, "left")
	assert.Equal(t, 0, s.item.Index)
}

func TestQuizScreen_Finish(t *testing.T) {
	env := screentest.New(t)
	s := startQuiz(t, env)

	var last []tea.Msg
	for i := 0; i < 5; i++ {
		press(s, numberOf(t, s, s.item.Question.Answer))
		last = press(s, "enter")
	}

	require.NotEmpty(t, last)
	var nav router.PopToRootMsg
	for _, m := range last {
		if pm, ok := m.(router.PopToRootMsg); ok {
			nav = pm
		}
	}
	require.IsType(t, &summary.SummaryScreen{}, nav.Then)
	assert.Equal(t, session.PhaseHome, env.Deps.Controller.Phase())

	summaries, err := env.Deps.Events.QuerySessionSummaries(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, store.ActionEnd, summaries[0].Action)
	assert.Equal(t, 5, summaries[0].CorrectAnswers)
	assert.Equal(t, 5, summaries[0].QuestionsServed)

	// Keys after the end do nothing.
	assert.Empty(t, press(s, "enter"))
}

func TestQuizScreen_HandleBack(t *testing.T) {
	t.Run("nothing answered", func(t *testing.T) {
		env := screentest.New(t)
		s := startQuiz(t, env)

		handled, cmd := s.HandleBack()
		require.True(t, handled)
		msgs := screentest.Drain(cmd)
		assert.Contains(t, msgs, tea.Msg(router.PopToRootMsg{}))
		assert.Equal(t, session.PhaseHome, env.Deps.Controller.Phase())

		summaries, err := env.Deps.Events.QuerySessionSummaries(context.Background(), store.QueryOpts{})
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, store.ActionAbandon, summaries[0].Action)
	})

	t.Run("with answers", func(t *testing.T) {
		env := screentest.New(t)
		s := startQuiz(t, env)
		press(s, numberOf(t, s, wrongOption(s)))

		handled, cmd := s.HandleBack()
		require.True(t, handled)
		var then any
		for _, m := range screentest.Drain(cmd) {
			if pm, ok := m.(router.PopToRootMsg); ok {
				then = pm.Then
			}
		}
		assert.IsType(t, &summary.SummaryScreen{}, then)
	})

	t.Run("no session", func(t *testing.T) {
		env := screentest.New(t)
		s := startQuiz(t, env)
		env.Deps.Controller.Home()

		handled, _ := s.HandleBack()
		assert.False(t, handled)
	})
}

func TestQuizScreen_Tutor(t *testing.T) {
	env := screentest.New(t, screentest.WithTutor())
	content, err := json.Marshal(map[string]any{
		"reason":      "Q3 の理由",
		"vocabulary":  []string{"alpha 最初"},
		"translation": "三問目の訳",
	})
	require.NoError(t, err)
	env.Provider.AddResponse(llm.MockResponse{Content: content})

	s := startQuiz(t, env)
	// 2-001 and 2-002 ship explanations, so the tutor stays idle.
	for i := 0; i < 2; i++ {
		press(s, numberOf(t, s, s.item.Question.Answer))
		press(s, "enter")
	}
	assert.Equal(t, 0, env.Provider.CallCount())
	require.Equal(t, "2-003", s.item.Question.ID)

	_, cmd := s.Update(screentest.Key(numberOf(t, s, "a")))
	assert.True(t, s.explaining["2-003"])
	assert.Contains(t, s.View(100, 40), "Asking the tutor...")

	for _, m := range screentest.Drain(cmd) {
		s.Update(m)
	}
	assert.Equal(t, 1, env.Provider.CallCount())
	assert.False(t, s.explaining["2-003"])

	view := s.View(100, 40)
	assert.Contains(t, view, "Q3 の理由")
	assert.Contains(t, view, "・alpha 最初")
	assert.Contains(t, view, "訳: 三問目の訳")
	assert.Contains(t, view, "(AI tutor)")

	// Cached: asking again makes no call.
	assert.Empty(t, press(s, "e"))
	assert.Equal(t, 1, env.Provider.CallCount())
}

func TestQuizScreen_TutorFailure(t *testing.T) {
	env := screentest.New(t, screentest.WithTutor())
	s := startQuiz(t, env)
	for i := 0; i < 2; i++ {
		press(s, numberOf(t, s, s.item.Question.Answer))
		press(s, "enter")
	}

	for _, m := range press(s, numberOf(t, s, "a")) {
		s.Update(m)
	}
	assert.Contains(t, s.View(100, 40), "could not explain")
	assert.Contains(t, s.KeyHints(), explainHint("E"))

	// Retry with a scripted answer.
	content, _ := json.Marshal(map[string]any{"reason": "ok", "vocabulary": []string{}, "translation": ""})
	env.Provider.AddResponse(llm.MockResponse{Content: content})
	for _, m := range press(s, "e") {
		s.Update(m)
	}
	assert.NotContains(t, s.View(100, 40), "could not explain")
	assert.Equal(t, 2, env.Provider.CallCount())
}

func TestQuizScreen_KeyHints(t *testing.T) {
	env := screentest.New(t)
	s := startQuiz(t, env)
	assert.Equal(t, layout.KeyHint{Key: "1-4", Description: "Answer"}, s.KeyHints()[0])

	press(s, "1")
	assert.Equal(t, "Next", s.KeyHints()[0].Description)
	assert.NotContains(t, s.KeyHints(), explainHint("E"))
}

func explainHint(key string) layout.KeyHint {
	return layout.KeyHint{Key: key, Description: "Explain"}
}

func TestQuizScreen_AnswerHintFollowsOptionCount(t *testing.T) {
	env := screentest.New(t)
	s := startQuiz(t, env)
	s.options.Options = s.options.Options[:3]
	assert.Equal(t, "1-3", s.KeyHints()[0].Key)
}

func TestSourceLine(t *testing.T) {
	assert.Equal(t, "出典: 準2級 2022-3   (pre2-004)", sourceLine("pre2-004", "2022-3"))
	assert.Equal(t, "2級   (2-003)", sourceLine("2-003", ""))
}
