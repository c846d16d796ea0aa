package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/opencode-ai/director/internal/models"
)

// Action repository errors.
var (
	ErrActionNotFound = errors.New("action not found")
	ErrInvalidAction  = errors.New("invalid action")
)

// ActionRepository handles action persistence. List order is ascending id,
// which is also replay order.
type ActionRepository struct {
	db *DB
}

// NewActionRepository creates a new ActionRepository.
func NewActionRepository(db *DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// List returns every action in ascending id order.
func (r *ActionRepository) List(ctx context.Context) ([]*models.Action, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action_name, action_type, parameters, timestamp
		FROM actions
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	actions := make([]*models.Action, 0)
	for rows.Next() {
		action, err := r.scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return actions, nil
}

// Get retrieves an action by ID.
func (r *ActionRepository) Get(ctx context.Context, id int64) (*models.Action, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, action_name, action_type, parameters, timestamp
		FROM actions WHERE id = ?
	`, id)

	action, err := r.scanAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActionNotFound
	}
	return action, err
}

// Create inserts a new action and sets its ID and UpdatedAt.
func (r *ActionRepository) Create(ctx context.Context, action *models.Action) error {
	if action == nil {
		return ErrInvalidAction
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO actions (action_name, action_type, parameters, timestamp)
		VALUES (?, ?, ?, ?)
	`,
		action.Name,
		string(action.Type),
		action.Parameters,
		now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read action id: %w", err)
	}

	action.ID = id
	action.UpdatedAt = now
	return nil
}

// Update replaces name, type and parameters of an existing action.
// Returns ErrActionNotFound if the id is absent.
func (r *ActionRepository) Update(ctx context.Context, action *models.Action) error {
	if action == nil {
		return ErrInvalidAction
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE actions
		SET action_name = ?, action_type = ?, parameters = ?, timestamp = ?
		WHERE id = ?
	`,
		action.Name,
		string(action.Type),
		action.Parameters,
		now.Format(timeLayout),
		action.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update action: %w", err)
	}

	if err := requireAffected(result, action.ID); err != nil {
		return err
	}

	action.UpdatedAt = now
	return nil
}

// Delete removes an action. Returns ErrActionNotFound if the id is absent.
func (r *ActionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM actions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}
	return requireAffected(result, id)
}

// DeleteAll clears the store. Ids keep increasing afterwards.
func (r *ActionRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM actions`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete actions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func requireAffected(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("action %d: %w", id, ErrActionNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ActionRepository) scanAction(row rowScanner) (*models.Action, error) {
	var action models.Action
	var actionType, timestamp string

	if err := row.Scan(
		&action.ID,
		&action.Name,
		&actionType,
		&action.Parameters,
		&timestamp,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan action: %w", err)
	}

	action.Type = models.ActionType(actionType)

	if t, err := time.Parse(timeLayout, timestamp); err == nil {
		action.UpdatedAt = t
	} else {
		r.db.logger.Warn().Err(err).Int64("action_id", action.ID).Msg("failed to parse action timestamp")
	}

	return &action, nil
}
