package replay

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opencode-ai/director/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(opts ...Option) (*Engine, *recordingSimulator, *recordingSleeper) {
	sim := &recordingSimulator{}
	sleeper := &recordingSleeper{}
	base := []Option{WithSleeper(sleeper), WithLogger(zerolog.Nop())}
	engine := New(DefaultConfig(), sim, append(base, opts...)...)
	return engine, sim, sleeper
}

func typeActions(n int) []*models.Action {
	actions := make([]*models.Action, 0, n)
	for i := 1; i <= n; i++ {
		actions = append(actions, action(int64(i), models.ActionTypeType, "{target_id}"))
	}
	return actions
}

// memoryObserver records notifications in order.
type memoryObserver struct {
	mu       sync.Mutex
	started  []RunInfo
	targets  []string
	failures []Failure
	finished []*Result
}

func (o *memoryObserver) RunStarted(_ context.Context, info RunInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, info)
}

func (o *memoryObserver) IterationStarted(_ context.Context, _ string, _ int, targetID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.targets = append(o.targets, targetID)
}

func (o *memoryObserver) ActionFailed(_ context.Context, _ string, failure Failure) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, failure)
}

func (o *memoryObserver) RunFinished(_ context.Context, result *Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, result)
}

func TestRunEachTarget(t *testing.T) {
	observer := &memoryObserver{}
	engine, sim, sleeper := newTestEngine(WithObserver(observer))

	targets := []string{"A1", "B2", "C3"}
	result, err := engine.Run(context.Background(), Request{
		Actions:   typeActions(2),
		TargetIDs: targets,
	}, NewRunState())
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, 3, result.Iterations)
	assert.Equal(t, 6, result.Dispatched)
	assert.Zero(t, result.Failed)
	assert.NotEmpty(t, result.RunID)

	assert.Equal(t, []string{
		"type A1", "type A1",
		"type B2", "type B2",
		"type C3", "type C3",
	}, sim.Calls())
	assert.Len(t, sleeper.Slept(), 6)
	for _, d := range sleeper.Slept() {
		assert.Equal(t, 500*time.Millisecond, d)
	}

	assert.Equal(t, targets, observer.targets)
	require.Len(t, observer.started, 1)
	assert.Equal(t, 3, observer.started[0].Iterations)
	require.Len(t, observer.finished, 1)
	assert.Same(t, result, observer.finished[0])
}

func TestRunLoopCountUsesIterationNumber(t *testing.T) {
	engine, sim, _ := newTestEngine()

	result, err := engine.Run(context.Background(), Request{
		LoopCount: 4,
		Actions:   typeActions(1),
		TargetIDs: []string{"ignored-a", "ignored-b"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, []string{"type 1", "type 2", "type 3", "type 4"}, sim.Calls())
}

func TestTargetForIteration(t *testing.T) {
	byTarget := Request{TargetIDs: []string{"x", "y"}}
	assert.Equal(t, 2, Iterations(byTarget))
	assert.Equal(t, "y", TargetForIteration(byTarget, 1))

	looped := Request{LoopCount: 5, TargetIDs: []string{"x"}}
	assert.Equal(t, 5, Iterations(looped))
	assert.Equal(t, "1", TargetForIteration(looped, 0))
	assert.Equal(t, "5", TargetForIteration(looped, 4))
}

func TestRunNothingToDo(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"no actions", Request{TargetIDs: []string{"a"}}},
		{"no targets", Request{Actions: typeActions(2)}},
		{"no targets with loop count", Request{LoopCount: 3, Actions: typeActions(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := &memoryObserver{}
			engine, sim, sleeper := newTestEngine(WithObserver(observer))

			result, err := engine.Run(context.Background(), tt.req, NewRunState())
			require.NoError(t, err)
			assert.Equal(t, OutcomeNothingToDo, result.Outcome)
			assert.Empty(t, sim.Calls())
			assert.Empty(t, sleeper.Slept())
			assert.Empty(t, observer.started)
			assert.Len(t, observer.finished, 1)
			assert.False(t, engine.Running())
		})
	}
}

func TestRunRejectsNegativeLoopCount(t *testing.T) {
	engine, _, _ := newTestEngine()
	_, err := engine.Run(context.Background(), Request{LoopCount: -1}, nil)
	assert.ErrorIs(t, err, ErrInvalidLoopCount)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	engine, sim, _ := newTestEngine()

	state := NewRunState()
	state.Cancel()

	result, err := engine.Run(context.Background(), Request{
		Actions:   typeActions(3),
		TargetIDs: []string{"a", "b"},
	}, state)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterrupted, result.Outcome)
	assert.Zero(t, result.Iterations)
	assert.Empty(t, sim.Calls())
}

func TestRunCancelIsPolledBeforeEveryAction(t *testing.T) {
	engine, sim, sleeper := newTestEngine()
	state := NewRunState()

	// Cancel during the second action of the first iteration.
	sim.onCall = func(n int) {
		if n == 2 {
			state.Cancel()
		}
	}

	result, err := engine.Run(context.Background(), Request{
		Actions:   typeActions(3),
		TargetIDs: []string{"a", "b"},
	}, state)
	require.NoError(t, err)

	assert.Equal(t, OutcomeInterrupted, result.Outcome)
	assert.Equal(t, []string{"type a", "type a"}, sim.Calls())
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, 2, result.Dispatched)
	// The in-flight action still gets its delay.
	assert.Len(t, sleeper.Slept(), 2)
}

func TestRunCancelBetweenIterations(t *testing.T) {
	engine, sim, _ := newTestEngine()
	state := NewRunState()

	sim.onCall = func(n int) {
		if n == 2 {
			state.Cancel()
		}
	}

	result, err := engine.Run(context.Background(), Request{
		Actions:   typeActions(2),
		TargetIDs: []string{"a", "b", "c"},
	}, state)
	require.NoError(t, err)

	assert.Equal(t, OutcomeInterrupted, result.Outcome)
	assert.Equal(t, []string{"type a", "type a"}, sim.Calls())
	assert.Equal(t, 1, result.Iterations)
}

func TestRunContextCancellation(t *testing.T) {
	engine, sim, _ := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())

	sim.onCall = func(n int) {
		if n == 1 {
			cancel()
		}
	}

	result, err := engine.Run(ctx, Request{
		Actions:   typeActions(2),
		TargetIDs: []string{"a"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterrupted, result.Outcome)
	assert.Len(t, sim.Calls(), 1)
}

func TestRunContinuesAfterFailedAction(t *testing.T) {
	observer := &memoryObserver{}
	engine, sim, sleeper := newTestEngine(WithObserver(observer))

	actions := []*models.Action{
		action(1, models.ActionTypeType, "before"),
		action(2, models.ActionTypeWait, "abc"),
		action(3, models.ActionTypeClick, "left"),
	}
	sim.fail = map[string]error{"click": errRejected}

	result, err := engine.Run(context.Background(), Request{
		Actions:   actions,
		TargetIDs: []string{"t1", "t2"},
	}, NewRunState())
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, 6, result.Dispatched)
	assert.Equal(t, 4, result.Failed)
	assert.Equal(t, []string{"type before", "click left", "type before", "click left"}, sim.Calls())
	// Every action, failed or not, is followed by the delay.
	assert.Len(t, sleeper.Slept(), 6)

	require.Len(t, observer.failures, 4)
	first := observer.failures[0]
	assert.Equal(t, "t1", first.TargetID)
	assert.Equal(t, int64(2), first.Err.ActionID)
	assert.ErrorIs(t, first.Err, ErrInvalidParameters)
	assert.ErrorIs(t, observer.failures[1].Err, errRejected)
}

func TestRunLogsFailureWithActionName(t *testing.T) {
	var buf strings.Builder
	engine, _, _ := newTestEngine(WithLogger(zerolog.New(&buf)))

	_, err := engine.Run(context.Background(), Request{
		Actions:   []*models.Action{{ID: 1, Name: "pause a bit", Type: models.ActionTypeWait, Parameters: "abc"}},
		TargetIDs: []string{"t"},
	}, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"action_name":"pause a bit"`)
	assert.Contains(t, out, "invalid parameters")
}

func TestRunWaitSuspendsWithoutSimulatorCall(t *testing.T) {
	engine, sim, sleeper := newTestEngine()

	result, err := engine.Run(context.Background(), Request{
		Actions:   []*models.Action{action(1, models.ActionTypeWait, "2.5")},
		TargetIDs: []string{"t"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, result.Outcome)
	assert.Empty(t, sim.Calls())
	assert.Equal(t, []time.Duration{2500 * time.Millisecond, 500 * time.Millisecond}, sleeper.Slept())
}

func TestRunSecondConcurrentRunIsIgnored(t *testing.T) {
	engine, sim, _ := newTestEngine()

	inner := make(chan *Result, 1)
	sim.onCall = func(n int) {
		if n != 1 {
			return
		}
		// A start request arriving while the first run is active.
		res, err := engine.Run(context.Background(), Request{
			Actions:   typeActions(1),
			TargetIDs: []string{"other"},
		}, nil)
		if err == nil {
			inner <- res
		}
		close(inner)
	}

	result, err := engine.Run(context.Background(), Request{
		Actions:   typeActions(1),
		TargetIDs: []string{"first"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, result.Outcome)

	second, ok := <-inner
	require.True(t, ok)
	assert.Equal(t, OutcomeAlreadyRunning, second.Outcome)
	assert.Equal(t, []string{"type first"}, sim.Calls())
	assert.False(t, engine.Running())

	// The engine accepts a new run once the first one is done.
	sim.onCall = nil
	again, err := engine.Run(context.Background(), Request{
		Actions:   typeActions(1),
		TargetIDs: []string{"next"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, again.Outcome)
}

func TestRunStateNilSafe(t *testing.T) {
	var state *RunState
	state.Cancel()
	assert.False(t, state.Cancelled())

	s := NewRunState()
	assert.False(t, s.Cancelled())
	s.Cancel()
	s.Cancel()
	assert.True(t, s.Cancelled())
}

func TestObserverFinishedWithoutStartForSkippedRuns(t *testing.T) {
	observer := &memoryObserver{}
	engine, sim, _ := newTestEngine(WithObserver(observer))

	var busy *Result
	sim.onCall = func(n int) {
		if n == 1 {
			busy, _ = engine.Run(context.Background(), Request{Actions: typeActions(1), TargetIDs: []string{"x"}}, nil)
		}
	}

	empty, err := engine.Run(context.Background(), Request{Actions: typeActions(1)}, nil)
	require.NoError(t, err)
	_, err = engine.Run(context.Background(), Request{Actions: typeActions(1), TargetIDs: []string{"a"}}, nil)
	require.NoError(t, err)

	require.NotNil(t, busy)
	assert.Equal(t, OutcomeNothingToDo, empty.Outcome)
	assert.Equal(t, OutcomeAlreadyRunning, busy.Outcome)

	// Only the run that iterated was started; all three finished.
	require.Len(t, observer.started, 1)
	require.Len(t, observer.finished, 3)
	for _, info := range observer.started {
		assert.NotEqual(t, empty.RunID, info.RunID)
		assert.NotEqual(t, busy.RunID, info.RunID)
	}
}
