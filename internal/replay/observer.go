package replay

import "context"

// RunInfo describes a run that is about to start iterating.
type RunInfo struct {
	RunID       string
	LoopCount   int
	Iterations  int
	ActionCount int
	TargetCount int
}

// Failure records one failed dispatch inside a run.
type Failure struct {
	Iteration int
	TargetID  string
	Err       *DispatchError
}

// Observer receives run notifications. Calls happen on the run goroutine, so
// implementations should return quickly and must not fail the run.
//
// RunFinished is called for every Run call, but RunStarted only for runs that
// begin iterating. Runs that end as nothing_to_do or already_running report
// RunFinished alone, with a run id that was never started.
type Observer interface {
	RunStarted(ctx context.Context, info RunInfo)
	IterationStarted(ctx context.Context, runID string, iteration int, targetID string)
	ActionFailed(ctx context.Context, runID string, failure Failure)
	RunFinished(ctx context.Context, result *Result)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) RunStarted(context.Context, RunInfo)                   {}
func (NopObserver) IterationStarted(context.Context, string, int, string) {}
func (NopObserver) ActionFailed(context.Context, string, Failure)         {}
func (NopObserver) RunFinished(context.Context, *Result)                  {}
