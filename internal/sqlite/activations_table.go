// This file implements the activations table accessor for the SQLite
// backend. Same document + version layout as the lifecycles table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// Compile-time interface check: activationTable must implement ActivationTable.
var _ types.ActivationTable = (*activationTable)(nil)

// activationTable implements types.ActivationTable.
type activationTable struct {
	backend *Backend
}

// Get retrieves an activation record by user ID.
// Returns ErrInvalidID for an empty ID and ErrNotFound when absent.
func (t *activationTable) Get(ctx context.Context, userID string) (*types.ActivationRecord, error) {
	if userID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := t.backend.conn()
	if err != nil {
		return nil, err
	}

	var doc string
	var version int64
	err = db.QueryRowContext(ctx,
		"SELECT record, version FROM activations WHERE user_id = ?", userID,
	).Scan(&doc, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting activation %s: %w", userID, err)
	}

	var rec types.ActivationRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling activation: %w", err)
	}
	rec.Version = version
	return &rec, nil
}

// Create inserts a new activation record at version 1.
// Returns ErrAlreadyExists if the user already has one.
func (t *activationTable) Create(ctx context.Context, rec *types.ActivationRecord) error {
	if rec == nil || rec.UserID == "" {
		return types.ErrInvalidData
	}
	db, err := t.backend.conn()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling activation: %w", err)
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO activations (user_id, assigned_path, is_activated, record, version, updated_at) VALUES (?, ?, ?, ?, 1, ?)",
		rec.UserID, rec.AssignedPath, boolToInt(rec.IsActivated), string(doc),
		rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if rowExists(ctx, db, "activations", rec.UserID) {
			return types.ErrAlreadyExists
		}
		return fmt.Errorf("inserting activation %s: %w", rec.UserID, err)
	}
	rec.Version = 1
	return nil
}

// Update replaces the stored record if rec.Version matches, then bumps
// rec.Version. Returns ErrConflict on a version mismatch and ErrNotFound
// if the row is gone.
func (t *activationTable) Update(ctx context.Context, rec *types.ActivationRecord) error {
	if rec == nil || rec.UserID == "" {
		return types.ErrInvalidData
	}
	db, err := t.backend.conn()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling activation: %w", err)
	}

	res, err := db.ExecContext(ctx,
		"UPDATE activations SET assigned_path = ?, is_activated = ?, record = ?, version = version + 1, updated_at = ? WHERE user_id = ? AND version = ?",
		rec.AssignedPath, boolToInt(rec.IsActivated), string(doc),
		rec.UpdatedAt.UTC().Format(time.RFC3339), rec.UserID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("updating activation %s: %w", rec.UserID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating activation %s: %w", rec.UserID, err)
	}
	if n == 0 {
		if rowExists(ctx, db, "activations", rec.UserID) {
			return types.ErrConflict
		}
		return types.ErrNotFound
	}
	rec.Version++
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
