package cli

import (
	"github.com/opencode-ai/director/internal/input"
	"github.com/rs/zerolog"
)

// StopListener is an armed stop key.
type StopListener interface {
	Key() string
	Close()
}

// Backend supplies the OS input layer. The zero value only supports dry runs.
type Backend struct {
	NewSimulator  func(logger zerolog.Logger) input.Simulator
	ListenStopKey func(key string, onPress func(), logger zerolog.Logger) StopListener
	// Position reports the pointer location.
	Position func() (x, y int, err error)
}

var backend Backend

// SetBackend installs the input backend used by run.
func SetBackend(b Backend) {
	backend = b
}
