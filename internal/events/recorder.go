package events

import (
	"context"

	"github.com/opencode-ai/director/internal/models"
	"github.com/opencode-ai/director/internal/replay"
	"github.com/rs/zerolog"
)

// Recorder persists replay notifications as events. Write failures are
// logged and never reach the engine.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

var _ replay.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) RunStarted(ctx context.Context, info replay.RunInfo) {
	err := LogRunStarted(context.WithoutCancel(ctx), r.repo, info.RunID, models.RunStartedPayload{
		LoopCount:   info.LoopCount,
		Iterations:  info.Iterations,
		ActionCount: info.ActionCount,
		TargetCount: info.TargetCount,
	})
	r.warn(err, models.EventTypeRunStarted)
}

// IterationStarted is not persisted; the log carries per-target progress.
func (r *Recorder) IterationStarted(context.Context, string, int, string) {}

func (r *Recorder) ActionFailed(ctx context.Context, runID string, failure replay.Failure) {
	payload := models.ActionFailedPayload{
		RunID:    runID,
		TargetID: failure.TargetID,
	}
	if failure.Err != nil {
		payload.ActionID = failure.Err.ActionID
		payload.ActionName = failure.Err.ActionName
		payload.ActionType = failure.Err.Type
		payload.Error = failure.Err.Err.Error()
	}
	r.warn(LogActionFailed(context.WithoutCancel(ctx), r.repo, payload), models.EventTypeActionFailed)
}

func (r *Recorder) RunFinished(ctx context.Context, result *replay.Result) {
	eventType := OutcomeEventType(result.Outcome)
	err := LogRunFinished(context.WithoutCancel(ctx), r.repo, eventType, result.RunID, models.RunFinishedPayload{
		Outcome:    string(result.Outcome),
		Iterations: result.Iterations,
		Dispatched: result.Dispatched,
		Failed:     result.Failed,
		DurationMS: result.Duration().Milliseconds(),
	})
	r.warn(err, eventType)
}

// OutcomeEventType maps a run outcome to the event recorded for it.
func OutcomeEventType(outcome replay.Outcome) models.EventType {
	switch outcome {
	case replay.OutcomeCompleted:
		return models.EventTypeRunCompleted
	case replay.OutcomeInterrupted:
		return models.EventTypeRunInterrupted
	default:
		return models.EventTypeRunSkipped
	}
}

func (r *Recorder) warn(err error, eventType models.EventType) {
	if err != nil {
		r.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to record event")
	}
}
