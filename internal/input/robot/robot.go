// Package robot drives the real mouse and keyboard through robotgo.
package robot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/opencode-ai/director/internal/input"
	"github.com/rs/zerolog"
)

// DefaultStep is the interval between intermediate pointer positions.
const DefaultStep = 10 * time.Millisecond

// Simulator implements input.Simulator on top of robotgo.
type Simulator struct {
	step   time.Duration
	logger zerolog.Logger
}

// New returns a robotgo-backed simulator.
func New(logger zerolog.Logger) *Simulator {
	return &Simulator{step: DefaultStep, logger: logger}
}

var _ input.Simulator = (*Simulator)(nil)

func (s *Simulator) MoveTo(x, y int, d time.Duration) error {
	return guard("move", func() error {
		s.glide(x, y, d)
		return nil
	})
}

func (s *Simulator) Click(button input.Button) error {
	return guard("click", func() error {
		robotgo.Click(robotButton(button), false)
		return nil
	})
}

func (s *Simulator) DoubleClick(button input.Button) error {
	return guard("double click", func() error {
		robotgo.Click(robotButton(button), true)
		return nil
	})
}

func (s *Simulator) RightClick() error {
	return guard("right click", func() error {
		robotgo.Click("right", false)
		return nil
	})
}

func (s *Simulator) DragTo(x, y int, d time.Duration) error {
	return guard("drag", func() error {
		if err := robotgo.Toggle("left"); err != nil {
			return fmt.Errorf("press left button: %w", err)
		}
		s.glide(x, y, d)
		if err := robotgo.Toggle("left", "up"); err != nil {
			return fmt.Errorf("release left button: %w", err)
		}
		return nil
	})
}

func (s *Simulator) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return errors.New("hotkey requires at least one key")
	}
	return guard("hotkey", func() error {
		pressed := make([]string, 0, len(keys))
		defer func() {
			for i := len(pressed) - 1; i >= 0; i-- {
				if err := robotgo.KeyToggle(pressed[i], "up"); err != nil {
					s.logger.Warn().Err(err).Str("key", pressed[i]).Msg("failed to release key")
				}
			}
		}()

		for _, key := range keys {
			name := robotKey(key)
			if err := robotgo.KeyToggle(name, "down"); err != nil {
				return fmt.Errorf("press %q: %w", key, err)
			}
			pressed = append(pressed, name)
		}
		return nil
	})
}

func (s *Simulator) TypeText(text string) error {
	return guard("type", func() error {
		robotgo.TypeStr(text)
		return nil
	})
}

// Position returns the current pointer coordinates.
func (s *Simulator) Position() (x, y int, err error) {
	err = guard("position", func() error {
		x, y = robotgo.Location()
		return nil
	})
	return x, y, err
}

func (s *Simulator) glide(x, y int, d time.Duration) {
	fromX, fromY := robotgo.Location()
	path := input.GlidePath(input.Point{X: fromX, Y: fromY}, input.Point{X: x, Y: y}, d, s.step)
	for i, p := range path {
		robotgo.Move(p.X, p.Y)
		if i < len(path)-1 {
			time.Sleep(s.step)
		}
	}
}

// guard turns robotgo panics on bad input into errors.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", op, r)
		}
	}()
	return fn()
}

func robotButton(b input.Button) string {
	if b == input.ButtonMiddle {
		return "center"
	}
	return string(b)
}

var keyAliases = map[string]string{
	"ctrl":   "control",
	"cmd":    "command",
	"win":    "command",
	"option": "alt",
	"return": "enter",
	"esc":    "escape",
	"del":    "delete",
	"pgup":   "pageup",
	"pgdn":   "pagedown",
}

func robotKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	return key
}
