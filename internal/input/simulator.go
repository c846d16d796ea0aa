// Package input defines the OS input simulation boundary used by the replay engine.
package input

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownButton is returned for mouse button names outside left, right and middle.
var ErrUnknownButton = errors.New("unknown mouse button")

// Button is a mouse button name.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// ParseButton lowercases name and checks it against the known buttons.
func ParseButton(name string) (Button, error) {
	switch b := Button(strings.ToLower(strings.TrimSpace(name))); b {
	case ButtonLeft, ButtonRight, ButtonMiddle:
		return b, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownButton, name)
	}
}

// Simulator performs synchronous OS-level input. Every call returns an error
// when its arguments are rejected.
type Simulator interface {
	// MoveTo moves the pointer to (x, y) over duration d.
	MoveTo(x, y int, d time.Duration) error
	// Click presses and releases button at the current position.
	Click(button Button) error
	// DoubleClick clicks button twice in quick succession.
	DoubleClick(button Button) error
	// RightClick clicks the right button at the current position.
	RightClick() error
	// DragTo holds the left button while moving to (x, y) over duration d.
	DragTo(x, y int, d time.Duration) error
	// Hotkey presses keys in order and releases them in reverse.
	Hotkey(keys ...string) error
	// TypeText sends text as keystrokes.
	TypeText(text string) error
}

// Sleeper suspends the calling goroutine.
type Sleeper interface {
	Sleep(d time.Duration)
}

// RealSleeper sleeps on the wall clock.
type RealSleeper struct{}

// Sleep calls time.Sleep.
func (RealSleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}
