package input

import (
	"time"

	"github.com/rs/zerolog"
)

// DryRun logs every call instead of touching the OS.
type DryRun struct {
	logger zerolog.Logger
}

// NewDryRun returns a simulator that only logs.
func NewDryRun(logger zerolog.Logger) *DryRun {
	return &DryRun{logger: logger}
}

func (d *DryRun) MoveTo(x, y int, dur time.Duration) error {
	d.logger.Info().Int("x", x).Int("y", y).Dur("duration", dur).Msg("move")
	return nil
}

func (d *DryRun) Click(button Button) error {
	d.logger.Info().Str("button", string(button)).Msg("click")
	return nil
}

func (d *DryRun) DoubleClick(button Button) error {
	d.logger.Info().Str("button", string(button)).Msg("double click")
	return nil
}

func (d *DryRun) RightClick() error {
	d.logger.Info().Msg("right click")
	return nil
}

func (d *DryRun) DragTo(x, y int, dur time.Duration) error {
	d.logger.Info().Int("x", x).Int("y", y).Dur("duration", dur).Msg("drag")
	return nil
}

func (d *DryRun) Hotkey(keys ...string) error {
	d.logger.Info().Strs("keys", keys).Msg("hotkey")
	return nil
}

func (d *DryRun) TypeText(text string) error {
	d.logger.Info().Str("text", text).Msg("type")
	return nil
}

// NoSleep skips every pause, used with DryRun so previews finish instantly.
type NoSleep struct {
	logger zerolog.Logger
}

// NewNoSleep returns a Sleeper that logs and returns immediately.
func NewNoSleep(logger zerolog.Logger) *NoSleep {
	return &NoSleep{logger: logger}
}

func (n *NoSleep) Sleep(d time.Duration) {
	n.logger.Debug().Dur("duration", d).Msg("sleep skipped")
}
