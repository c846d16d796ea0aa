package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opencode-ai/director/internal/config"
	"github.com/opencode-ai/director/internal/db"
	"github.com/opencode-ai/director/internal/input"
	"github.com/opencode-ai/director/internal/models"
	"github.com/opencode-ai/director/internal/replay"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSimulator counts calls and records typed text.
type countingSimulator struct {
	mu    sync.Mutex
	calls int
	typed []string
}

func (s *countingSimulator) inc() error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return nil
}

func (s *countingSimulator) MoveTo(int, int, time.Duration) error { return s.inc() }
func (s *countingSimulator) Click(input.Button) error             { return s.inc() }
func (s *countingSimulator) DoubleClick(input.Button) error       { return s.inc() }
func (s *countingSimulator) RightClick() error                    { return s.inc() }
func (s *countingSimulator) DragTo(int, int, time.Duration) error { return s.inc() }
func (s *countingSimulator) Hotkey(...string) error               { return s.inc() }

func (s *countingSimulator) TypeText(text string) error {
	s.mu.Lock()
	s.typed = append(s.typed, text)
	s.mu.Unlock()
	return s.inc()
}

type fakeStopListener struct {
	key    string
	closed bool
}

func (f *fakeStopListener) Key() string { return f.key }
func (f *fakeStopListener) Close()      { f.closed = true }

func useBackend(t *testing.T, b Backend) {
	t.Helper()
	previous := backend
	SetBackend(b)
	t.Cleanup(func() { SetBackend(previous) })
}

func writeTargets(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func seedActions(t *testing.T, database *db.DB) {
	t.Helper()
	editor := newActionEditor(database)
	ctx := context.Background()
	for _, a := range [][3]string{
		{"focus", "move", "10,20"},
		{"enter", "type", "id={target_id}"},
		{"broken", "move", "nowhere"},
	} {
		_, err := editor.add(ctx, a[0], a[1], a[2])
		require.NoError(t, err)
	}
}

func noDelay() config.ReplayConfig {
	return config.ReplayConfig{StopKey: "esc"}
}

func TestExecuteRunDryRun(t *testing.T) {
	database := setupTestDB(t)
	seedActions(t, database)
	useBackend(t, Backend{})

	result, err := executeRun(context.Background(), database, runOptions{
		TargetsPath: writeTargets(t, "A1", "B2"),
		DryRun:      true,
		Replay:      config.ReplayConfig{ActionDelay: time.Hour, Transition: time.Hour},
	})
	require.NoError(t, err)

	assert.Equal(t, replay.OutcomeCompleted, result.Outcome)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, 6, result.Dispatched)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "B2", result.Failures[1].TargetID)

	assert.Equal(t, 1, countEvents(t, database, models.EventTypeRunStarted))
	assert.Equal(t, 1, countEvents(t, database, models.EventTypeRunCompleted))
	assert.Equal(t, 2, countEvents(t, database, models.EventTypeActionFailed))
}

func TestExecuteRunWithBackend(t *testing.T) {
	database := setupTestDB(t)
	seedActions(t, database)

	sim := &countingSimulator{}
	var listener *fakeStopListener
	var armedKey string
	useBackend(t, Backend{
		NewSimulator: func(zerolog.Logger) input.Simulator { return sim },
		ListenStopKey: func(key string, onPress func(), _ zerolog.Logger) StopListener {
			armedKey = key
			listener = &fakeStopListener{key: key}
			return listener
		},
	})

	var notices bytes.Buffer
	result, err := executeRun(context.Background(), database, runOptions{
		LoopCount:   2,
		TargetsPath: writeTargets(t, "ignored"),
		Replay:      noDelay(),
		Notices:     &notices,
	})
	require.NoError(t, err)
	assert.Contains(t, notices.String(), "Press esc to stop")

	assert.Equal(t, replay.OutcomeCompleted, result.Outcome)
	assert.Equal(t, []string{"id=1", "id=2"}, sim.typed)
	assert.Equal(t, "esc", armedKey)
	require.NotNil(t, listener)
	assert.True(t, listener.closed, "stop key should be released after the run")
}

func TestExecuteRunStopKeyInterrupts(t *testing.T) {
	database := setupTestDB(t)
	seedActions(t, database)

	sim := &countingSimulator{}
	useBackend(t, Backend{
		NewSimulator: func(zerolog.Logger) input.Simulator { return sim },
		ListenStopKey: func(_ string, onPress func(), _ zerolog.Logger) StopListener {
			onPress()
			return &fakeStopListener{}
		},
	})

	result, err := executeRun(context.Background(), database, runOptions{
		TargetsPath: writeTargets(t, "A1"),
		Replay:      noDelay(),
	})
	require.NoError(t, err)

	assert.Equal(t, replay.OutcomeInterrupted, result.Outcome)
	assert.Zero(t, sim.calls)
	assert.Equal(t, 1, countEvents(t, database, models.EventTypeRunInterrupted))
}

func TestExecuteRunMissingTargets(t *testing.T) {
	database := setupTestDB(t)
	seedActions(t, database)
	useBackend(t, Backend{})

	result, err := executeRun(context.Background(), database, runOptions{
		TargetsPath: filepath.Join(t.TempDir(), "missing.csv"),
		DryRun:      true,
		Replay:      noDelay(),
	})
	require.NoError(t, err)
	assert.Equal(t, replay.OutcomeNothingToDo, result.Outcome)
	assert.Equal(t, 1, countEvents(t, database, models.EventTypeRunSkipped))
}

func TestExecuteRunRequiresBackend(t *testing.T) {
	database := setupTestDB(t)
	useBackend(t, Backend{})

	_, err := executeRun(context.Background(), database, runOptions{
		TargetsPath: writeTargets(t, "A1"),
		Replay:      noDelay(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--dry-run")
}

func TestWriteRunResult(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	result := &replay.Result{
		RunID:      "run-1",
		Outcome:    replay.OutcomeCompleted,
		Iterations: 2,
		Dispatched: 4,
		Failed:     1,
		Failures: []replay.Failure{{
			Iteration: 1,
			TargetID:  "B2",
			Err: &replay.DispatchError{
				ActionID:   7,
				ActionName: "drag",
				Type:       models.ActionTypeDrag,
				Err:        replay.ErrInvalidParameters,
			},
		}},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}

	t.Run("text", func(t *testing.T) {
		setNoColor(t, true)
		var buf bytes.Buffer
		require.NoError(t, writeRunResult(&buf, result))

		out := buf.String()
		assert.Contains(t, out, "WARN completed")
		assert.Contains(t, out, "2 iteration(s), 4 action(s), 1 failed in 1.5s")
		assert.Contains(t, out, "B2")
		assert.Contains(t, out, "invalid parameters")
	})

	t.Run("json", func(t *testing.T) {
		setJSONOutput(t, true)
		var buf bytes.Buffer
		require.NoError(t, writeRunResult(&buf, result))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "completed", decoded["outcome"])
		assert.Equal(t, float64(1500), decoded["duration_ms"])

		failures, ok := decoded["failures"].([]any)
		require.True(t, ok)
		require.Len(t, failures, 1)
		failure := failures[0].(map[string]any)
		assert.Equal(t, float64(2), failure["iteration"])
		assert.Equal(t, "drag", failure["action_name"])
	})
}

func setJSONOutput(t *testing.T, value bool) {
	t.Helper()
	previous := jsonOutput
	jsonOutput = value
	t.Cleanup(func() { jsonOutput = previous })
}

func setNoColor(t *testing.T, value bool) {
	t.Helper()
	previous := noColor
	noColor = value
	t.Cleanup(func() { noColor = previous })
}
