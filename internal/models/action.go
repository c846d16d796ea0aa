// Package models defines the records shared by the store, the replay engine and the CLI.
package models

import (
	"strings"
	"time"
)

// ActionType identifies what an action does when replayed.
type ActionType string

const (
	ActionTypeMove        ActionType = "move"
	ActionTypeClick       ActionType = "click"
	ActionTypeDoubleClick ActionType = "double_click"
	ActionTypeRightClick  ActionType = "right_click"
	ActionTypeDrag        ActionType = "drag"
	ActionTypeHotkey      ActionType = "hotkey"
	ActionTypeType        ActionType = "type"
	ActionTypeWait        ActionType = "wait"
)

// TargetIDPlaceholder is replaced with the current target id in type actions.
const TargetIDPlaceholder = "{target_id}"

var actionTypes = []ActionType{
	ActionTypeMove,
	ActionTypeClick,
	ActionTypeDoubleClick,
	ActionTypeRightClick,
	ActionTypeDrag,
	ActionTypeHotkey,
	ActionTypeType,
	ActionTypeWait,
}

var parameterHints = map[ActionType]string{
	ActionTypeMove:        "x,y (e.g. 100,200)",
	ActionTypeClick:       "left, right or middle",
	ActionTypeDoubleClick: "left, right or middle",
	ActionTypeRightClick:  "none (current position)",
	ActionTypeDrag:        "x,y (e.g. 300,400)",
	ActionTypeHotkey:      "keys (e.g. ctrl,c for copy)",
	ActionTypeType:        "text, may contain " + TargetIDPlaceholder,
	ActionTypeWait:        "seconds (e.g. 2.5)",
}

// AllActionTypes returns the closed set of action types in editor order.
func AllActionTypes() []ActionType {
	out := make([]ActionType, len(actionTypes))
	copy(out, actionTypes)
	return out
}

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	for _, known := range actionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParameterHint describes the parameter grammar for t.
func ParameterHint(t ActionType) string {
	return parameterHints[t]
}

// Action is one configured step of the automation script.
type Action struct {
	// ID is assigned by the store and never reused.
	ID int64 `json:"id"`

	// Name is a free-form display label.
	Name string `json:"name"`

	// Type selects how Parameters are interpreted.
	Type ActionType `json:"type"`

	// Parameters is a type-specific string, see ParameterHint.
	Parameters string `json:"parameters"`

	// UpdatedAt is the time of the last create or update.
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields the editor is responsible for.
func (a *Action) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(a.Name) == "" {
		validation.AddMessage("name", "action name is required")
	}
	if !a.Type.Valid() {
		validation.AddMessage("type", "unknown action type "+quote(string(a.Type)))
	}
	return validation.Err()
}

// NormalizeParameters trims the input and strips quote characters, the way
// parameters are cleaned before they are saved.
func NormalizeParameters(params string) string {
	params = strings.TrimSpace(params)
	return strings.NewReplacer(`"`, "", "'", "").Replace(params)
}

func quote(s string) string {
	return `"` + s + `"`
}
