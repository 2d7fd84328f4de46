package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/eiken-drill/eiken/internal/filter"
	"github.com/eiken-drill/eiken/internal/mistakes"
	"github.com/eiken-drill/eiken/internal/question"
)

type memBlobs map[string][]byte

func (m memBlobs) Get(_ context.Context, key string) ([]byte, error) { return m[key], nil }
func (m memBlobs) Put(_ context.Context, key string, v []byte) error {
	m[key] = append([]byte(nil), v...)
	return nil
}

type failingMistakes struct {
	recorded []string
}

func (f *failingMistakes) Record(_ context.Context, q question.Question) (bool, error) {
	f.recorded = append(f.recorded, q.ID)
	return true, errors.New("disk full")
}

func (f *failingMistakes) Questions() []question.Question { return nil }

func gradeTwo(n int) []question.Question {
	qs := make([]question.Question, n)
	for i := range qs {
		qs[i] = question.Question{
			ID:             fmt.Sprintf("2-%03d", i+1),
			Question:       fmt.Sprintf("Question %d", i+1),
			Options:        []string{"right", "wrong1", "wrong2", "wrong3"},
			OptionMeanings: []string{"正", "誤1", "誤2", "誤3"},
			Answer:         "right",
			Source:         "2023-1",
		}
	}
	return qs
}

type fixture struct {
	ctrl     *Controller
	mistakes *mistakes.Store
	blobs    memBlobs
}

func newFixture(t *testing.T, data map[string][]question.Question) *fixture {
	t.Helper()
	blobs := memBlobs{}
	ms, err := mistakes.Load(context.Background(), blobs)
	require.NoError(t, err)

	clock := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	ctrl := New(question.MustCatalog(data), ms,
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
		WithIDGenerator(func() string { return "session-1" }),
		WithLogger(zaptest.NewLogger(t)),
	)
	return &fixture{ctrl: ctrl, mistakes: ms, blobs: blobs}
}

func assertScoreInvariant(t *testing.T, c *Controller) {
	t.Helper()
	s := c.Session()
	if s == nil {
		return
	}
	require.Len(t, s.State, len(s.Questions))
	correct := 0
	for _, st := range s.State {
		if st.IsCorrect {
			correct++
		}
	}
	assert.Equal(t, correct, s.Score, "score must equal number of correct states")
	assert.GreaterOrEqual(t, s.CurrentIndex, 0)
	assert.Less(t, s.CurrentIndex, len(s.Questions))
}

func TestEndToEnd_RangeFilteredSession(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(5)})
	c := f.ctrl
	ctx := context.Background()

	require.NoError(t, c.SelectGrade("2"))
	assert.Equal(t, PhaseSettings, c.Phase())
	assert.Equal(t, 5, c.AvailableCount())

	s := c.Settings()
	s.RangeStart, s.RangeEnd = "2", "4"
	require.NoError(t, c.UpdateSettings(s))
	assert.Equal(t, 3, c.AvailableCount())

	require.NoError(t, c.Start())
	assert.Equal(t, PhaseQuestion, c.Phase())

	var ids []string
	for _, q := range c.Session().Questions {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"2-002", "2-003", "2-004"}, ids)

	answers := []string{"right", "wrong2", "right"}
	var res *Result
	for i, a := range answers {
		_, err := c.Options()
		require.NoError(t, err)
		ar, err := c.Answer(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, a == "right", ar.Correct)
		assert.Equal(t, PhaseAnswered, c.Phase())
		assertScoreInvariant(t, c)

		res, err = c.Next()
		require.NoError(t, err)
		if i < len(answers)-1 {
			assert.Nil(t, res)
		}
	}

	require.NotNil(t, res)
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 3, res.Total)
	assert.False(t, res.Abandoned)
	require.Len(t, res.Missed, 1)
	assert.Equal(t, "2-003", res.Missed[0].ID)

	assert.Equal(t, PhaseHome, c.Phase())
	assert.Nil(t, c.Session())
	assert.Equal(t, res, c.LastResult())

	assert.Equal(t, 1, f.mistakes.Len())
	assert.True(t, f.mistakes.Contains("2-003"))
	assert.NotEmpty(t, f.blobs[mistakes.BlobKey])
}

func TestSelectGrade_EmptyCatalog(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(1)})
	err := f.ctrl.SelectGrade("pre-1")
	assert.ErrorIs(t, err, ErrEmptyGradeCatalog)
	assert.Equal(t, PhaseHome, f.ctrl.Phase())
	assert.Empty(t, f.ctrl.Grade())
}

func TestSelectGrade_NormalizesLegacyGrade(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"pre-2": {{ID: "pre2-001", Options: []string{"a", "b"}, Answer: "a"}}})
	require.NoError(t, f.ctrl.SelectGrade("pre2"))
	assert.Equal(t, "pre-2", f.ctrl.Grade())
}

func TestSelectGrade_ResetsSettings(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(3)})
	c := f.ctrl
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.UpdateSettings(filter.Settings{Year: "2023-1", Order: filter.OrderRandom, Count: "1"}))

	c.Home()
	require.NoError(t, c.SelectGrade("2"))
	assert.Equal(t, filter.DefaultSettings(), c.Settings())
}

func TestStart_EmptyFilterStaysInSettings(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(3)})
	c := f.ctrl
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.UpdateSettings(filter.Settings{Year: "1999-1"}))

	err := c.Start()
	assert.ErrorIs(t, err, ErrEmptyFilterResult)
	assert.Equal(t, PhaseSettings, c.Phase())
	assert.Nil(t, c.Session())
}

func TestStart_RequiresGrade(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(3)})
	assert.ErrorIs(t, f.ctrl.Start(), ErrNoGrade)
	assert.ErrorIs(t, f.ctrl.UpdateSettings(filter.DefaultSettings()), ErrNoGrade)
}

func TestStart_CountAndRandomOrder(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(10)})
	c := f.ctrl
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.UpdateSettings(filter.Settings{Order: filter.OrderRandom, Count: "4"}))
	require.NoError(t, c.Start())

	s := c.Session()
	require.Len(t, s.Questions, 4)
	seen := map[string]bool{}
	for _, q := range s.Questions {
		assert.False(t, seen[q.ID], "duplicate %s", q.ID)
		seen[q.ID] = true
	}
}

func TestAnswer_Idempotent(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(2)})
	c := f.ctrl
	ctx := context.Background()
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())

	_, err := c.Answer(ctx, "wrong1")
	require.NoError(t, err)
	before := c.Session()

	_, err = c.Answer(ctx, "right")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	after := c.Session()
	assert.Equal(t, before, after)
	assert.Equal(t, 0, after.Score)
	assert.Equal(t, "wrong1", after.State[0].SelectedOption)
	assert.Equal(t, 1, f.mistakes.Len())
}

func TestAnswer_UnknownOption(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(1)})
	c := f.ctrl
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())

	_, err := c.Answer(context.Background(), "nonsense")
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.Equal(t, PhaseQuestion, c.Phase())
	assert.False(t, c.Session().State[0].Answered)
}

func TestAnswer_PersistFailureIsNonFatal(t *testing.T) {
	fm := &failingMistakes{}
	c := New(question.MustCatalog(map[string][]question.Question{"2": gradeTwo(1)}), fm)
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())

	res, err := c.Answer(context.Background(), "wrong3")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Error(t, res.PersistErr)
	assert.Equal(t, []string{"2-001"}, fm.recorded)
	assert.Equal(t, PhaseAnswered, c.Phase())
}

func TestNext_RequiresAnswer(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(3)})
	c := f.ctrl
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())

	_, err := c.Next()
	assert.ErrorIs(t, err, ErrNotAnswered)
	assert.Equal(t, 0, c.Session().CurrentIndex)
}

func TestOptions_StableAcrossNavigation(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(3)})
	c := f.ctrl
	ctx := context.Background()
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())

	first, err := c.Options()
	require.NoError(t, err)
	again, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, first, again)

	_, err = c.Answer(ctx, "right")
	require.NoError(t, err)
	_, err = c.Next()
	require.NoError(t, err)
	_, err = c.Options()
	require.NoError(t, err)

	require.NoError(t, c.Prev())
	back, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, first, back)
}

func TestOptions_MeaningsFollowText(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(1)})
	c := f.ctrl
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())

	opts, err := c.Options()
	require.NoError(t, err)
	require.Len(t, opts, 4)
	want := map[string]string{"right": "正", "wrong1": "誤1", "wrong2": "誤2", "wrong3": "誤3"}
	for _, o := range opts {
		assert.Equal(t, want[o.Text], o.Meaning)
	}
}

func TestPrev_KeepsState(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(3)})
	c := f.ctrl
	ctx := context.Background()
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())

	// Prev on the first question is a no-op.
	require.NoError(t, c.Prev())
	assert.Equal(t, 0, c.Session().CurrentIndex)

	_, err := c.Answer(ctx, "wrong1")
	require.NoError(t, err)
	_, err = c.Next()
	require.NoError(t, err)
	assert.Equal(t, PhaseQuestion, c.Phase())

	require.NoError(t, c.Prev())
	assert.Equal(t, PhaseAnswered, c.Phase())
	item, err := c.Current()
	require.NoError(t, err)
	assert.True(t, item.State.Answered)
	assert.Equal(t, "wrong1", item.State.SelectedOption)
	assert.True(t, item.IsFirst())

	// Going forward again lands on the still-unanswered question.
	_, err = c.Next()
	require.NoError(t, err)
	assert.Equal(t, PhaseQuestion, c.Phase())
	assertScoreInvariant(t, c)
}

func TestReview_EmptyStore(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(3)})
	err := f.ctrl.StartReview()
	assert.ErrorIs(t, err, ErrEmptyFilterResult)
	assert.Equal(t, PhaseHome, f.ctrl.Phase())
}

func TestReview_UsesMistakesInOrder(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(5)})
	c := f.ctrl
	ctx := context.Background()

	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())
	for i := 0; i < 5; i++ {
		answer := "right"
		if i == 3 || i == 1 {
			answer = "wrong1"
		}
		_, err := c.Answer(ctx, answer)
		require.NoError(t, err)
		_, err = c.Next()
		require.NoError(t, err)
	}
	require.Equal(t, 2, f.mistakes.Len())

	require.NoError(t, c.StartReview())
	assert.Equal(t, question.ReviewGrade, c.Grade())
	s := c.Session()
	require.Len(t, s.Questions, 2)
	assert.Equal(t, "2-002", s.Questions[0].ID)
	assert.Equal(t, "2-004", s.Questions[1].ID)

	// Missing a question again does not duplicate it.
	_, err := c.Answer(ctx, "wrong2")
	require.NoError(t, err)
	assert.Equal(t, 2, f.mistakes.Len())
}

func TestHome_AbandonsSession(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(3)})
	c := f.ctrl
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())
	_, err := c.Answer(context.Background(), "right")
	require.NoError(t, err)

	res := c.Home()
	require.NotNil(t, res)
	assert.True(t, res.Abandoned)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 1, res.Answered)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, PhaseHome, c.Phase())

	_, err = c.Current()
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = c.Answer(context.Background(), "right")
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Nil(t, c.Home(), "home without a session has no result")
}

func TestScoreInvariant_RandomWalk(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(8)})
	c := f.ctrl
	ctx := context.Background()
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())

	rng := rand.New(rand.NewPCG(5, 8))
	for step := 0; step < 200 && c.Phase().InQuiz(); step++ {
		switch rng.IntN(4) {
		case 0:
			opts, err := c.Options()
			require.NoError(t, err)
			_, _ = c.Answer(ctx, opts[rng.IntN(len(opts))].Text)
		case 1:
			_, _ = c.Next()
		case 2:
			_ = c.Prev()
		case 3:
			_, _ = c.Answer(ctx, "right")
		}
		assertScoreInvariant(t, c)
	}
}

func TestResult_Accuracy(t *testing.T) {
	assert.Equal(t, 0.0, Result{}.Accuracy())
	assert.InDelta(t, 0.5, Result{Score: 1, Answered: 2}.Accuracy(), 1e-9)
}

func TestTimeTaken(t *testing.T) {
	f := newFixture(t, map[string][]question.Question{"2": gradeTwo(1)})
	c := f.ctrl
	require.NoError(t, c.SelectGrade("2"))
	require.NoError(t, c.Start())
	_, err := c.Options()
	require.NoError(t, err)
	_, err = c.Answer(context.Background(), "right")
	require.NoError(t, err)

	item, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, time.Second, item.State.TimeTaken())
}
