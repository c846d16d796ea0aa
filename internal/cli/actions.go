package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/opencode-ai/director/internal/db"
	"github.com/opencode-ai/director/internal/events"
	"github.com/opencode-ai/director/internal/logging"
	"github.com/opencode-ai/director/internal/models"
	"github.com/opencode-ai/director/internal/sequences"
	"github.com/rs/zerolog"
)

// actionEditor applies editor operations to the store and records each change
// in the run history.
type actionEditor struct {
	actions *db.ActionRepository
	events  events.Repository
	logger  zerolog.Logger
}

func newActionEditor(database *db.DB) *actionEditor {
	return &actionEditor{
		actions: db.NewActionRepository(database),
		events:  db.NewEventRepository(database),
		logger:  logging.Component("editor"),
	}
}

// actionChanges holds the fields an edit replaces. Nil fields are kept.
type actionChanges struct {
	Name       *string
	Type       *string
	Parameters *string
}

func buildAction(name, actionType, params string) (*models.Action, error) {
	t := models.ActionType(strings.ToLower(strings.TrimSpace(actionType)))
	if strings.TrimSpace(name) == "" {
		name = string(t)
	}
	action := &models.Action{
		Name:       strings.TrimSpace(name),
		Type:       t,
		Parameters: models.NormalizeParameters(params),
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}
	return action, nil
}

func (e *actionEditor) add(ctx context.Context, name, actionType, params string) (*models.Action, error) {
	action, err := buildAction(name, actionType, params)
	if err != nil {
		return nil, err
	}
	if err := e.actions.Create(ctx, action); err != nil {
		return nil, err
	}
	e.record(ctx, models.EventTypeActionCreated, action)
	return action, nil
}

func (e *actionEditor) edit(ctx context.Context, id int64, changes actionChanges) (*models.Action, error) {
	current, err := e.actions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("action %d: %w", id, err)
	}

	name, actionType, params := current.Name, string(current.Type), current.Parameters
	if changes.Name != nil {
		name = *changes.Name
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("action name cannot be empty")
		}
	}
	if changes.Type != nil {
		actionType = *changes.Type
	}
	if changes.Parameters != nil {
		params = *changes.Parameters
	}

	updated, err := buildAction(name, actionType, params)
	if err != nil {
		return nil, err
	}
	updated.ID = id
	if err := e.actions.Update(ctx, updated); err != nil {
		return nil, err
	}
	e.record(ctx, models.EventTypeActionUpdated, updated)
	return updated, nil
}

func (e *actionEditor) remove(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		current, err := e.actions.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("action %d: %w", id, err)
		}
		if err := e.actions.Delete(ctx, id); err != nil {
			return err
		}
		e.record(ctx, models.EventTypeActionDeleted, current)
	}
	return nil
}

func (e *actionEditor) clear(ctx context.Context) (int64, error) {
	existing, err := e.actions.List(ctx)
	if err != nil {
		return 0, err
	}
	n, err := e.actions.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, action := range existing {
		e.record(ctx, models.EventTypeActionDeleted, action)
	}
	return n, nil
}

// importSequence appends seq to the store, or replaces the store when replace
// is set. It returns the created actions in order.
func (e *actionEditor) importSequence(ctx context.Context, seq *sequences.Sequence, replace bool) ([]*models.Action, error) {
	if seq == nil || len(seq.Actions) == 0 {
		return nil, fmt.Errorf("sequence has no actions")
	}
	if replace {
		if _, err := e.clear(ctx); err != nil {
			return nil, err
		}
	}

	created := make([]*models.Action, 0, len(seq.Actions))
	for _, action := range seq.ToActions() {
		if err := action.Validate(); err != nil {
			return created, fmt.Errorf("sequence %s: %w", seq.Name, err)
		}
		if err := e.actions.Create(ctx, action); err != nil {
			return created, err
		}
		e.record(ctx, models.EventTypeActionCreated, action)
		created = append(created, action)
	}

	e.logger.Info().
		Str("sequence", seq.Name).
		Int("actions", len(created)).
		Bool("replace", replace).
		Msg("imported sequence")
	return created, nil
}

func (e *actionEditor) export(ctx context.Context, path, name, description string) (*sequences.Sequence, error) {
	actions, err := e.actions.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("no actions to export")
	}
	seq := sequences.FromActions(name, description, actions)
	if err := sequences.WriteSequence(path, seq); err != nil {
		return nil, err
	}
	seq.Source = path
	return seq, nil
}

func (e *actionEditor) record(ctx context.Context, eventType models.EventType, action *models.Action) {
	err := events.LogActionChanged(ctx, e.events, eventType, action.ID, models.ActionChangedPayload{
		Name:       action.Name,
		Type:       action.Type,
		Parameters: action.Parameters,
	})
	if err != nil {
		e.logger.Warn().Err(err).Int64("action_id", action.ID).Msg("failed to record action change")
	}
}
