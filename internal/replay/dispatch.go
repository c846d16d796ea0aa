package replay

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/opencode-ai/director/internal/input"
	"github.com/opencode-ai/director/internal/models"
)

// Dispatch errors.
var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrUnknownActionType = errors.New("unknown action type")
)

// DispatchError is the failed result of dispatching one action.
type DispatchError struct {
	ActionID   int64
	ActionName string
	Type       models.ActionType
	Err        error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("action %q (%s) failed: %v", e.ActionName, e.Type, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Dispatcher decodes action parameters and drives the simulator.
type Dispatcher struct {
	Simulator input.Simulator
	Sleeper   input.Sleeper

	// Transition is the pointer travel time for move and drag.
	Transition time.Duration
}

// Dispatch performs one action for targetID. It returns nil or a *DispatchError.
func (d *Dispatcher) Dispatch(action *models.Action, targetID string) error {
	if err := d.dispatch(action, targetID); err != nil {
		return &DispatchError{
			ActionID:   action.ID,
			ActionName: action.Name,
			Type:       action.Type,
			Err:        err,
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(action *models.Action, targetID string) error {
	params := action.Parameters

	switch action.Type {
	case models.ActionTypeMove:
		x, y, err := parseCoordinates(params)
		if err != nil {
			return err
		}
		return d.Simulator.MoveTo(x, y, d.Transition)

	case models.ActionTypeClick:
		button, err := input.ParseButton(params)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
		}
		return d.Simulator.Click(button)

	case models.ActionTypeDoubleClick:
		button, err := input.ParseButton(params)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
		}
		return d.Simulator.DoubleClick(button)

	case models.ActionTypeRightClick:
		return d.Simulator.RightClick()

	case models.ActionTypeDrag:
		x, y, err := parseCoordinates(params)
		if err != nil {
			return err
		}
		return d.Simulator.DragTo(x, y, d.Transition)

	case models.ActionTypeHotkey:
		keys, err := parseKeys(params)
		if err != nil {
			return err
		}
		return d.Simulator.Hotkey(keys...)

	case models.ActionTypeType:
		return d.Simulator.TypeText(SubstituteTarget(params, targetID))

	case models.ActionTypeWait:
		wait, err := parseSeconds(params)
		if err != nil {
			return err
		}
		d.Sleeper.Sleep(wait)
		return nil

	default:
		return fmt.Errorf("%w %q", ErrUnknownActionType, action.Type)
	}
}

// SubstituteTarget replaces every placeholder in text with targetID. An empty
// targetID leaves text untouched.
func SubstituteTarget(text, targetID string) string {
	if targetID == "" || !strings.Contains(text, models.TargetIDPlaceholder) {
		return text
	}
	return strings.ReplaceAll(text, models.TargetIDPlaceholder, targetID)
}

func parseCoordinates(params string) (int, int, error) {
	cleaned := strings.NewReplacer(`"`, "", "'", "").Replace(params)
	parts := strings.Split(cleaned, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected x,y, got %q", ErrInvalidParameters, params)
	}

	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: x coordinate: %w", ErrInvalidParameters, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: y coordinate: %w", ErrInvalidParameters, err)
	}
	return x, y, nil
}

func parseKeys(params string) ([]string, error) {
	var keys []string
	for _, key := range strings.Split(params, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: hotkey needs at least one key", ErrInvalidParameters)
	}
	return keys, nil
}

func parseSeconds(params string) (time.Duration, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(params), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: wait seconds: %w", ErrInvalidParameters, err)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("%w: wait seconds must be a non-negative number, got %q", ErrInvalidParameters, params)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
