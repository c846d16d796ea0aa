// Package replay executes the stored action list once per target id.
//
// A run polls its cancellation signal before every iteration and before every
// action. A pending input call or sleep is never cut short: cancellation takes
// effect at the next poll point.
package replay

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/opencode-ai/director/internal/input"
	"github.com/opencode-ai/director/internal/logging"
	"github.com/opencode-ai/director/internal/models"
	"github.com/rs/zerolog"
)

// ErrInvalidLoopCount is returned for a negative loop count.
var ErrInvalidLoopCount = errors.New("loop count must not be negative")

// Outcome is the terminal state of a Run call.
type Outcome string

const (
	// OutcomeNothingToDo means there were no actions or no targets.
	OutcomeNothingToDo Outcome = "nothing_to_do"
	// OutcomeCompleted means every iteration ran.
	OutcomeCompleted Outcome = "completed"
	// OutcomeInterrupted means the run stopped at a poll point.
	OutcomeInterrupted Outcome = "interrupted"
	// OutcomeAlreadyRunning means another run was active and this call did nothing.
	OutcomeAlreadyRunning Outcome = "already_running"
)

// Config contains engine timing.
type Config struct {
	// ActionDelay is the pause after every dispatched action.
	// Default: 500ms.
	ActionDelay time.Duration

	// Transition is the pointer travel time for move and drag actions.
	// Default: 500ms.
	Transition time.Duration
}

// DefaultConfig returns the default timing.
func DefaultConfig() Config {
	return Config{
		ActionDelay: 500 * time.Millisecond,
		Transition:  500 * time.Millisecond,
	}
}

// Request is the input of a single run. Actions are replayed in slice order,
// which callers take from the store's ascending-id listing.
type Request struct {
	// LoopCount of 0 runs once per target id. A positive count runs that many
	// iterations and binds the 1-based iteration number as the target id,
	// ignoring the contents of TargetIDs.
	LoopCount int
	Actions   []*models.Action
	TargetIDs []string
}

// Result summarizes a run.
type Result struct {
	RunID      string    `json:"run_id"`
	Outcome    Outcome   `json:"outcome"`
	LoopCount  int       `json:"loop_count"`
	Iterations int       `json:"iterations"`
	Dispatched int       `json:"dispatched"`
	Failed     int       `json:"failed"`
	Failures   []Failure `json:"-"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration returns the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Engine replays actions. Only one run may be active per engine.
type Engine struct {
	config     Config
	dispatcher *Dispatcher
	sleeper    input.Sleeper
	observer   Observer
	logger     zerolog.Logger
	now        func() time.Time

	running atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSleeper replaces the wall-clock sleeper for delays and wait actions.
func WithSleeper(s input.Sleeper) Option {
	return func(e *Engine) {
		if s != nil {
			e.sleeper = s
		}
	}
}

// WithObserver registers a run observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine driving sim.
func New(config Config, sim input.Simulator, opts ...Option) *Engine {
	if config.ActionDelay < 0 {
		config.ActionDelay = 0
	}
	if config.Transition < 0 {
		config.Transition = 0
	}

	e := &Engine{
		config:   config,
		sleeper:  input.RealSleeper{},
		observer: NopObserver{},
		logger:   logging.Component("replay"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}

	e.dispatcher = &Dispatcher{
		Simulator:  sim,
		Sleeper:    e.sleeper,
		Transition: config.Transition,
	}
	return e
}

// Running reports whether a run is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Iterations returns how many iterations req produces.
func Iterations(req Request) int {
	if req.LoopCount == 0 {
		return len(req.TargetIDs)
	}
	return req.LoopCount
}

// TargetForIteration returns the target id bound to the 0-based iteration i.
func TargetForIteration(req Request, i int) string {
	if req.LoopCount == 0 {
		return req.TargetIDs[i]
	}
	return strconv.Itoa(i + 1)
}

// Run executes req synchronously and blocks until it finishes. state may be
// nil; ctx cancellation is treated like state.Cancel. Per-action failures are
// logged and counted, never returned.
func (e *Engine) Run(ctx context.Context, req Request, state *RunState) (*Result, error) {
	if req.LoopCount < 0 {
		return nil, ErrInvalidLoopCount
	}

	result := &Result{
		RunID:     uuid.New().String(),
		LoopCount: req.LoopCount,
		StartedAt: e.now(),
	}
	logger := e.logger.With().Str("run_id", result.RunID).Logger()

	if !e.running.CompareAndSwap(false, true) {
		logger.Warn().Msg("a run is already in progress; ignoring start request")
		return e.finish(ctx, result, OutcomeAlreadyRunning), nil
	}
	defer e.running.Store(false)

	if len(req.Actions) == 0 || len(req.TargetIDs) == 0 {
		logger.Info().
			Int("actions", len(req.Actions)).
			Int("targets", len(req.TargetIDs)).
			Msg("no targets or actions to process")
		return e.finish(ctx, result, OutcomeNothingToDo), nil
	}

	info := RunInfo{
		RunID:       result.RunID,
		LoopCount:   req.LoopCount,
		Iterations:  Iterations(req),
		ActionCount: len(req.Actions),
		TargetCount: len(req.TargetIDs),
	}
	logger.Info().
		Int("iterations", info.Iterations).
		Int("actions", info.ActionCount).
		Int("loop_count", req.LoopCount).
		Msg("run started")
	e.observer.RunStarted(ctx, info)

	outcome := e.iterate(ctx, req, state, result, info.Iterations, logger)
	return e.finish(ctx, result, outcome), nil
}

func (e *Engine) iterate(ctx context.Context, req Request, state *RunState, result *Result, iterations int, logger zerolog.Logger) Outcome {
	for i := 0; i < iterations; i++ {
		if e.stopRequested(ctx, state) {
			return OutcomeInterrupted
		}

		targetID := TargetForIteration(req, i)
		result.Iterations++
		logger.Info().Int("iteration", i+1).Str("target_id", targetID).Msg("processing target")
		e.observer.IterationStarted(ctx, result.RunID, i, targetID)

		for _, action := range req.Actions {
			if e.stopRequested(ctx, state) {
				return OutcomeInterrupted
			}

			result.Dispatched++
			if err := e.dispatcher.Dispatch(action, targetID); err != nil {
				var dispatchErr *DispatchError
				if !errors.As(err, &dispatchErr) {
					dispatchErr = &DispatchError{ActionID: action.ID, ActionName: action.Name, Type: action.Type, Err: err}
				}
				failure := Failure{Iteration: i, TargetID: targetID, Err: dispatchErr}
				result.Failed++
				result.Failures = append(result.Failures, failure)

				logger.Error().
					Err(dispatchErr.Err).
					Int64("action_id", action.ID).
					Str("action_name", action.Name).
					Str("action_type", string(action.Type)).
					Str("target_id", targetID).
					Msgf("action %q failed", action.Name)
				e.observer.ActionFailed(ctx, result.RunID, failure)
			}

			e.sleeper.Sleep(e.config.ActionDelay)
		}
	}
	return OutcomeCompleted
}

func (e *Engine) stopRequested(ctx context.Context, state *RunState) bool {
	return state.Cancelled() || ctx.Err() != nil
}

func (e *Engine) finish(ctx context.Context, result *Result, outcome Outcome) *Result {
	result.Outcome = outcome
	result.FinishedAt = e.now()

	event := e.logger.Info()
	if outcome == OutcomeInterrupted {
		event = e.logger.Warn()
	}
	event.
		Str("run_id", result.RunID).
		Str("outcome", string(outcome)).
		Int("iterations", result.Iterations).
		Int("dispatched", result.Dispatched).
		Int("failed", result.Failed).
		Dur("duration", result.Duration()).
		Msg("run finished")

	e.observer.RunFinished(ctx, result)
	return result
}
