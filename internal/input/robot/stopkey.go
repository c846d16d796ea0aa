package robot

import (
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog"
)

// StopKey watches a global key and calls onPress every time it goes down.
type StopKey struct {
	key    string
	once   sync.Once
	logger zerolog.Logger
}

// ListenStopKey installs the global hook. Close must be called to remove it.
func ListenStopKey(key string, onPress func(), logger zerolog.Logger) *StopKey {
	key = strings.ToLower(strings.TrimSpace(key))
	sk := &StopKey{key: key, logger: logger}

	hook.Register(hook.KeyDown, []string{key}, func(hook.Event) {
		logger.Warn().Str("key", key).Msg("stop key pressed")
		onPress()
	})

	events := hook.Start()
	go func() {
		<-hook.Process(events)
	}()

	logger.Info().Str("key", key).Msg("press the stop key to interrupt the run")
	return sk
}

// Key returns the watched key name.
func (s *StopKey) Key() string {
	return s.key
}

// Close removes the hook.
func (s *StopKey) Close() {
	s.once.Do(hook.End)
}
