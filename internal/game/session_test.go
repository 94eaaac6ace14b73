package game_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ezemirmul/estimator/internal/errors"
	"github.com/ezemirmul/estimator/internal/game"
	"github.com/ezemirmul/estimator/internal/models"
)

// fakeSource serves a fixed grouping, or a fixed error.
type fakeSource struct {
	mu      sync.Mutex
	grouped models.Grouped
	err     error
}

func (f *fakeSource) Grouped(ctx context.Context) (models.Grouped, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.grouped, nil
}

func (f *fakeSource) set(grouped models.Grouped) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grouped = grouped
}

// manualClock records scheduled ticks so tests drive the countdown by hand.
// Cancellation is deliberately a no-op: the session's generation guard alone
// must make stale ticks harmless.
type manualClock struct {
	mu    sync.Mutex
	ticks []func()
}

func (c *manualClock) scheduler(d time.Duration, fn func()) func() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = append(c.ticks, fn)
	return func() bool { return true }
}

// fire runs the i-th scheduled tick.
func (c *manualClock) fire(i int) {
	c.mu.Lock()
	fn := c.ticks[i]
	c.mu.Unlock()
	fn()
}

// fireLatest runs the most recently scheduled tick.
func (c *manualClock) fireLatest() {
	c.mu.Lock()
	fn := c.ticks[len(c.ticks)-1]
	c.mu.Unlock()
	fn()
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ticks)
}

func floatPtr(v float64) *float64 { return &v }

func testGrouping() models.Grouped {
	return models.Grouped{
		"sports": {
			{Question: "How many players on a football pitch?", Answer: 22},
			{Question: "Length of a marathon in km?", Answer: 42.195, Time: floatPtr(5)},
			{Question: "Holes on a golf course?", Answer: 18},
		},
		"space": {
			{Question: "Moons of Mars?", Answer: 2, Time: floatPtr(3)},
		},
	}
}

func newTestSession(t *testing.T) (*game.Session, *fakeSource, *manualClock) {
	t.Helper()
	src := &fakeSource{grouped: testGrouping()}
	clock := &manualClock{}
	return game.NewSession(src, game.WithScheduler(clock.scheduler)), src, clock
}

func TestSession_InitialState(t *testing.T) {
	sess, _, _ := newTestSession(t)

	state := sess.State()
	assert.Equal(t, game.StepSelectingTopic, state.Step)
	assert.Zero(t, state.Score)
	assert.Empty(t, state.Topic)
}

func TestSession_SelectTopic(t *testing.T) {
	sess, _, clock := newTestSession(t)

	state, err := sess.SelectTopic(context.Background(), "sports")
	require.NoError(t, err)

	assert.Equal(t, game.StepAnswering, state.Step)
	assert.Equal(t, "sports", state.Topic)
	assert.Equal(t, 0, state.QuestionIndex)
	assert.Equal(t, 10.0, state.Remaining, "default time limit")
	assert.Equal(t, "How many players on a football pitch?", state.Question)
	assert.Equal(t, 1, clock.count(), "countdown armed")
}

func TestSession_SelectTopic_Normalizes(t *testing.T) {
	sess, _, _ := newTestSession(t)

	state, err := sess.SelectTopic(context.Background(), "  SPORTS ")
	require.NoError(t, err)
	assert.Equal(t, "sports", state.Topic)
}

func TestSession_SelectTopic_CustomTimeLimit(t *testing.T) {
	sess, _, _ := newTestSession(t)

	state, err := sess.SelectTopic(context.Background(), "space")
	require.NoError(t, err)
	assert.Equal(t, 3.0, state.Remaining)
}

func TestSession_SelectTopic_UnknownTopicRejected(t *testing.T) {
	sess, _, _ := newTestSession(t)

	state, err := sess.SelectTopic(context.Background(), "history")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	assert.Equal(t, game.StepSelectingTopic, state.Step, "no state change on rejection")
}

func TestSession_SelectTopic_ResetsPriorRun(t *testing.T) {
	sess, _, _ := newTestSession(t)
	ctx := context.Background()

	_, err := sess.SelectTopic(ctx, "sports")
	require.NoError(t, err)
	state := sess.Submit("22")
	require.Equal(t, 100, state.Score)
	_, err = sess.NextQuestion(ctx)
	require.NoError(t, err)

	// Re-selecting always starts fresh, whatever the previous state was.
	state, err = sess.SelectTopic(ctx, "space")
	require.NoError(t, err)
	assert.Equal(t, 0, state.Score)
	assert.Equal(t, 0, state.QuestionIndex)
	assert.Nil(t, state.Result)
}

func TestSession_SourceUnavailable(t *testing.T) {
	sess, src, _ := newTestSession(t)
	src.err = errors.New("connection refused")

	_, err := sess.SelectTopic(context.Background(), "sports")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeUnavailable, appErr.Code)
}

func TestSession_Submit(t *testing.T) {
	sess, _, _ := newTestSession(t)
	_, err := sess.SelectTopic(context.Background(), "sports")
	require.NoError(t, err)

	state := sess.Submit("20")

	assert.Equal(t, game.StepShowingResult, state.Step)
	require.NotNil(t, state.Result)
	assert.Equal(t, 22.0, state.Result.Correct)
	assert.Equal(t, 2.0, state.Result.Diff)
	assert.Equal(t, 80, state.Result.Points, "2/22 is just over 9 percent")
	assert.Equal(t, 80, state.Score)
}

func TestSession_Submit_Idempotent(t *testing.T) {
	sess, _, _ := newTestSession(t)
	_, err := sess.SelectTopic(context.Background(), "sports")
	require.NoError(t, err)

	first := sess.Submit("22")
	second := sess.Submit("9999")

	assert.Equal(t, first.Score, second.Score, "second submit is a no-op")
	assert.Equal(t, first.Result, second.Result)
}

func TestSession_Submit_BeforeTopicSelected(t *testing.T) {
	sess, _, _ := newTestSession(t)

	state := sess.Submit("42")
	assert.Equal(t, game.StepSelectingTopic, state.Step)
	assert.Nil(t, state.Result)
}

func TestSession_TickCountsDown(t *testing.T) {
	sess, _, clock := newTestSession(t)
	_, err := sess.SelectTopic(context.Background(), "sports")
	require.NoError(t, err)

	clock.fireLatest()
	assert.Equal(t, 9.0, sess.State().Remaining)
	clock.fireLatest()
	assert.Equal(t, 8.0, sess.State().Remaining)
}

func TestSession_TimeoutMatchesEmptySubmission(t *testing.T) {
	sess, _, clock := newTestSession(t)
	_, err := sess.SelectTopic(context.Background(), "space")
	require.NoError(t, err)

	// 3 second limit: three ticks reach zero and auto-submit.
	for i := 0; i < 3; i++ {
		clock.fireLatest()
	}

	state := sess.State()
	assert.Equal(t, game.StepShowingResult, state.Step)
	require.NotNil(t, state.Result)
	assert.Nil(t, state.Result.UserAnswer)
	assert.Equal(t, 2.0, state.Result.Diff)
	assert.Equal(t, 100.0, state.Result.DiffPercent)
	assert.Equal(t, 0, state.Result.Points)

	// An explicit empty submission produces the identical result shape.
	other, _, _ := newTestSession(t)
	_, err = other.SelectTopic(context.Background(), "space")
	require.NoError(t, err)
	explicit := other.Submit("")
	assert.Equal(t, state.Result, explicit.Result)
}

func TestSession_StaleTickCannotFire(t *testing.T) {
	sess, _, clock := newTestSession(t)
	ctx := context.Background()

	_, err := sess.SelectTopic(ctx, "sports")
	require.NoError(t, err)
	staleIdx := clock.count() - 1

	sess.Submit("22")
	_, err = sess.NextQuestion(ctx)
	require.NoError(t, err)
	state := sess.State()
	require.Equal(t, 5.0, state.Remaining, "second question has a 5s limit")

	// The first question's tick fires late; it must not touch the new question.
	clock.fire(staleIdx)
	assert.Equal(t, 5.0, sess.State().Remaining)

	// The live tick still works.
	clock.fireLatest()
	assert.Equal(t, 4.0, sess.State().Remaining)
}

func TestSession_NextQuestionWrapsModulo(t *testing.T) {
	sess, _, _ := newTestSession(t)
	ctx := context.Background()

	_, err := sess.SelectTopic(ctx, "sports")
	require.NoError(t, err)

	// 3 questions: four advances from index 0 land on index 1.
	expected := []int{1, 2, 0, 1}
	for _, want := range expected {
		sess.Submit("")
		state, err := sess.NextQuestion(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, state.QuestionIndex)
	}
}

func TestSession_NextQuestionRederivesTimeLimit(t *testing.T) {
	sess, _, _ := newTestSession(t)
	ctx := context.Background()

	_, err := sess.SelectTopic(ctx, "sports")
	require.NoError(t, err)
	sess.Submit("")

	state, err := sess.NextQuestion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, state.Remaining)
}

func TestSession_NextQuestion_WrongStep(t *testing.T) {
	sess, _, _ := newTestSession(t)

	_, err := sess.NextQuestion(context.Background())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestSession_NextQuestion_TopicDrained(t *testing.T) {
	sess, src, _ := newTestSession(t)
	ctx := context.Background()

	_, err := sess.SelectTopic(ctx, "sports")
	require.NoError(t, err)
	sess.Submit("22")

	// All sports questions were deleted between turns.
	src.set(models.Grouped{})

	state, err := sess.NextQuestion(ctx)
	require.Error(t, err)
	assert.Equal(t, game.StepShowingResult, state.Step, "rejection leaves state untouched")
	assert.Equal(t, 100, state.Score)
}

func TestSession_NextQuestion_TopicGrew(t *testing.T) {
	sess, src, _ := newTestSession(t)
	ctx := context.Background()

	_, err := sess.SelectTopic(ctx, "space")
	require.NoError(t, err)
	sess.Submit("2")

	grouped := testGrouping()
	grouped["space"] = append(grouped["space"], models.GroupedQuestion{Question: "Planets in the solar system?", Answer: 8})
	src.set(grouped)

	state, err := sess.NextQuestion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, state.QuestionIndex)
	assert.Equal(t, "Planets in the solar system?", state.Question)
}

func TestSession_ChangeTopic(t *testing.T) {
	sess, _, _ := newTestSession(t)
	ctx := context.Background()

	_, err := sess.SelectTopic(ctx, "sports")
	require.NoError(t, err)
	sess.Submit("22")

	state := sess.ChangeTopic()

	assert.Equal(t, game.StepSelectingTopic, state.Step)
	assert.Empty(t, state.Topic)
	assert.Zero(t, state.Score)
	assert.Zero(t, state.QuestionIndex)
	assert.Nil(t, state.Result)
}

func TestSession_StateHidesAnswer(t *testing.T) {
	sess, _, _ := newTestSession(t)

	state, err := sess.SelectTopic(context.Background(), "sports")
	require.NoError(t, err)
	assert.NotEmpty(t, state.Question)
	assert.Nil(t, state.Result, "no result until a submission happened")
}
