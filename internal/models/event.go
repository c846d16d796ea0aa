package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the run history.
type EventType string

const (
	// Run events
	EventTypeRunStarted     EventType = "run.started"
	EventTypeRunCompleted   EventType = "run.completed"
	EventTypeRunInterrupted EventType = "run.interrupted"
	EventTypeRunSkipped     EventType = "run.skipped"

	// Action events
	EventTypeActionFailed  EventType = "action.failed"
	EventTypeActionCreated EventType = "action.created"
	EventTypeActionUpdated EventType = "action.updated"
	EventTypeActionDeleted EventType = "action.deleted"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeRun    EntityType = "run"
	EntityTypeAction EntityType = "action"
)

// Event represents an append-only log entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the run id or the action id.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// RunStartedPayload is the payload for run.started events.
type RunStartedPayload struct {
	LoopCount   int `json:"loop_count"`
	Iterations  int `json:"iterations"`
	ActionCount int `json:"action_count"`
	TargetCount int `json:"target_count"`
}

// RunFinishedPayload is the payload for run.completed, run.interrupted and run.skipped events.
type RunFinishedPayload struct {
	Outcome    string `json:"outcome"`
	Iterations int    `json:"iterations"`
	Dispatched int    `json:"dispatched"`
	Failed     int    `json:"failed"`
	DurationMS int64  `json:"duration_ms"`
}

// ActionFailedPayload is the payload for action.failed events.
type ActionFailedPayload struct {
	RunID      string     `json:"run_id"`
	ActionID   int64      `json:"action_id"`
	ActionName string     `json:"action_name"`
	ActionType ActionType `json:"action_type"`
	TargetID   string     `json:"target_id"`
	Error      string     `json:"error"`
}

// ActionChangedPayload is the payload for action.created, action.updated and action.deleted events.
type ActionChangedPayload struct {
	Name       string     `json:"name,omitempty"`
	Type       ActionType `json:"type,omitempty"`
	Parameters string     `json:"parameters,omitempty"`
}
