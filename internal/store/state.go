package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/franz/spotify-warehouse/internal/util"
)

// StateEntry is one etl_state row
type StateEntry struct {
	PipelineName string
	StateKey     string
	StateValue   sql.NullString
	UpdatedAt    string
}

// GetState returns one etl_state entry, or util.ErrNotFound
func (s *Store) GetState(ctx context.Context, pipeline, key string) (*StateEntry, error) {
	e := &StateEntry{}
	err := s.db.QueryRowContext(ctx, `
		SELECT pipeline_name, state_key, state_value, updated_at
		FROM etl_state
		WHERE pipeline_name = ? AND state_key = ?
	`, pipeline, key).Scan(&e.PipelineName, &e.StateKey, &e.StateValue, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("state %s/%s: %w", pipeline, key, util.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state %s/%s: %w", pipeline, key, err)
	}
	return e, nil
}

// SetState inserts or replaces one etl_state value and refreshes updated_at
func (s *Store) SetState(ctx context.Context, pipeline, key, value string) error {
	if pipeline == "" || key == "" {
		return fmt.Errorf("%w: pipeline and key are required", util.ErrInvalidConfig)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO etl_state (pipeline_name, state_key, state_value)
		VALUES (?, ?, ?)
		ON CONFLICT(pipeline_name, state_key) DO UPDATE SET
			state_value = excluded.state_value,
			updated_at = datetime('now')
	`, pipeline, key, value)
	if err != nil {
		return fmt.Errorf("failed to write state %s/%s: %w", pipeline, key, err)
	}
	return nil
}

// ListState returns the entries of one pipeline, or of all pipelines when pipeline is empty
func (s *Store) ListState(ctx context.Context, pipeline string) ([]StateEntry, error) {
	query := `SELECT pipeline_name, state_key, state_value, updated_at FROM etl_state`
	var args []interface{}
	if pipeline != "" {
		query += ` WHERE pipeline_name = ?`
		args = append(args, pipeline)
	}
	query += ` ORDER BY pipeline_name, state_key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list state: %w", err)
	}
	defer rows.Close()

	var entries []StateEntry
	for rows.Next() {
		var e StateEntry
		if err := rows.Scan(&e.PipelineName, &e.StateKey, &e.StateValue, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
