// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/delphi-survey/models"
)

// SaveSession stores the serialized wizard state under id. A submitted
// session is never overwritten; ErrSessionSubmitted is returned instead.
func (s *Store) SaveSession(ctx context.Context, id string, state []byte) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO wizard_session (id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at
		WHERE wizard_session.submitted = 0`),
		id, string(state), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if n == 0 {
		return ErrSessionSubmitted
	}
	return nil
}

// SubmitSession marks the session submitted, replaces its state and
// stores the responses in one transaction. Only the first call for a
// session succeeds; later or concurrent ones get ErrSessionSubmitted
// and store nothing.
func (s *Store) SubmitSession(ctx context.Context, id string, state []byte, responses []models.Response) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE wizard_session SET state = ?, submitted = 1, updated_at = ?
		WHERE id = ? AND submitted = 0`),
		string(state), formatTime(time.Now()), id)
	if err != nil {
		return 0, fmt.Errorf("close session: %w", err)
	}
	closed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("close session: %w", err)
	}
	if closed == 0 {
		var exists int
		err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM wizard_session WHERE id = ?`), id)
		if err != nil {
			return 0, fmt.Errorf("close session: %w", err)
		}
		if exists == 0 {
			return 0, ErrNotFound
		}
		return 0, ErrSessionSubmitted
	}

	n, err := insertResponses(ctx, tx, responses)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit submission: %w", err)
	}
	return n, nil
}

// LoadSession returns the serialized state saved under id.
func (s *Store) LoadSession(ctx context.Context, id string) ([]byte, error) {
	var state string
	err := s.db.GetContext(ctx, &state, s.db.Rebind(`SELECT state FROM wizard_session WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return []byte(state), nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM wizard_session WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
