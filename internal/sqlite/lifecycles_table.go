// This file implements the lifecycles table accessor for the SQLite
// backend. Each operation hydrates/dehydrates between the JSON document
// column and *types.LifecycleRecord, with the version column driving
// optimistic concurrency.
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

// Compile-time interface check: lifecycleTable must implement LifecycleTable.
var _ types.LifecycleTable = (*lifecycleTable)(nil)

// lifecycleTable implements types.LifecycleTable.
type lifecycleTable struct {
	backend *Backend
}

// Get retrieves a lifecycle record by user ID.
// Returns ErrInvalidID for an empty ID and ErrNotFound when absent.
func (t *lifecycleTable) Get(ctx context.Context, userID string) (*types.LifecycleRecord, error) {
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
		"SELECT record, version FROM lifecycles WHERE user_id = ?", userID,
	).Scan(&doc, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting lifecycle %s: %w", userID, err)
	}

	return hydrateLifecycle(doc, version)
}

// Create inserts a new lifecycle record at version 1.
// Returns ErrAlreadyExists if the user already has one.
func (t *lifecycleTable) Create(ctx context.Context, rec *types.LifecycleRecord) error {
	if rec == nil || rec.UserID == "" {
		return types.ErrInvalidData
	}
	db, err := t.backend.conn()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling lifecycle: %w", err)
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO lifecycles (user_id, current_state, record, version, updated_at) VALUES (?, ?, ?, 1, ?)",
		rec.UserID, rec.CurrentState, string(doc), rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if rowExists(ctx, db, "lifecycles", rec.UserID) {
			return types.ErrAlreadyExists
		}
		return fmt.Errorf("inserting lifecycle %s: %w", rec.UserID, err)
	}
	rec.Version = 1
	return nil
}

// Update replaces the stored record if rec.Version matches, then bumps
// rec.Version. Returns ErrConflict on a version mismatch and ErrNotFound
// if the row is gone.
func (t *lifecycleTable) Update(ctx context.Context, rec *types.LifecycleRecord) error {
	if rec == nil || rec.UserID == "" {
		return types.ErrInvalidData
	}
	db, err := t.backend.conn()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling lifecycle: %w", err)
	}

	res, err := db.ExecContext(ctx,
		"UPDATE lifecycles SET current_state = ?, record = ?, version = version + 1, updated_at = ? WHERE user_id = ? AND version = ?",
		rec.CurrentState, string(doc), rec.UpdatedAt.UTC().Format(time.RFC3339), rec.UserID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("updating lifecycle %s: %w", rec.UserID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating lifecycle %s: %w", rec.UserID, err)
	}
	if n == 0 {
		if rowExists(ctx, db, "lifecycles", rec.UserID) {
			return types.ErrConflict
		}
		return types.ErrNotFound
	}
	rec.Version++
	return nil
}

// List returns every lifecycle record ordered by user ID.
func (t *lifecycleTable) List(ctx context.Context) ([]*types.LifecycleRecord, error) {
	db, err := t.backend.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT record, version FROM lifecycles ORDER BY user_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing lifecycles: %w", err)
	}
	defer rows.Close()

	records := []*types.LifecycleRecord{}
	for rows.Next() {
		var doc string
		var version int64
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, fmt.Errorf("scanning lifecycle: %w", err)
		}
		rec, err := hydrateLifecycle(doc, version)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lifecycles: %w", err)
	}
	return records, nil
}

// hydrateLifecycle decodes the JSON document and restores the version tag.
func hydrateLifecycle(doc string, version int64) (*types.LifecycleRecord, error) {
	var rec types.LifecycleRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling lifecycle: %w", err)
	}
	rec.Version = version
	return &rec, nil
}

// rowExists distinguishes ErrConflict from ErrNotFound and duplicate
// inserts from other failures.
func rowExists(ctx context.Context, db *sql.DB, table, userID string) bool {
	var one int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM "+table+" WHERE user_id = ?", userID).Scan(&one)
	return err == nil
}
