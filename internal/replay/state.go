package replay

import "sync/atomic"

// RunState is the cancellation flag for a single run. It is owned by the
// caller of Engine.Run and shared by reference with whatever requests the
// stop, such as a stop-key hook.
type RunState struct {
	cancel atomic.Bool
}

// NewRunState returns a state with no cancellation requested.
func NewRunState() *RunState {
	return &RunState{}
}

// Cancel requests the run to stop at its next poll point. Safe to call from
// any goroutine, any number of times.
func (s *RunState) Cancel() {
	if s == nil {
		return
	}
	s.cancel.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (s *RunState) Cancelled() bool {
	if s == nil {
		return false
	}
	return s.cancel.Load()
}
