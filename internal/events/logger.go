// Package events provides helper functions for recording director run history.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/opencode-ai/director/internal/models"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// LogRunStarted records the start of a run.
func LogRunStarted(ctx context.Context, repo Repository, runID string, payload models.RunStartedPayload) error {
	return logEvent(ctx, repo, models.EventTypeRunStarted, models.EntityTypeRun, runID, payload)
}

// LogRunFinished records the terminal outcome of a run. eventType must be one
// of run.completed, run.interrupted or run.skipped.
func LogRunFinished(ctx context.Context, repo Repository, eventType models.EventType, runID string, payload models.RunFinishedPayload) error {
	switch eventType {
	case models.EventTypeRunCompleted, models.EventTypeRunInterrupted, models.EventTypeRunSkipped:
	default:
		return fmt.Errorf("event type %q is not a run outcome", eventType)
	}
	return logEvent(ctx, repo, eventType, models.EntityTypeRun, runID, payload)
}

// LogActionFailed records a failed dispatch within a run.
func LogActionFailed(ctx context.Context, repo Repository, payload models.ActionFailedPayload) error {
	if payload.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	return logEvent(ctx, repo, models.EventTypeActionFailed, models.EntityTypeRun, payload.RunID, payload)
}

// LogActionChanged records an edit made through the editor surface.
func LogActionChanged(ctx context.Context, repo Repository, eventType models.EventType, actionID int64, payload models.ActionChangedPayload) error {
	switch eventType {
	case models.EventTypeActionCreated, models.EventTypeActionUpdated, models.EventTypeActionDeleted:
	default:
		return fmt.Errorf("event type %q is not an action change", eventType)
	}
	if actionID <= 0 {
		return fmt.Errorf("action id is required")
	}
	return logEvent(ctx, repo, eventType, models.EntityTypeAction, strconv.FormatInt(actionID, 10), payload)
}

func logEvent(ctx context.Context, repo Repository, eventType models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}
	if entityID == "" {
		return fmt.Errorf("entity id is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    data,
	})
}
