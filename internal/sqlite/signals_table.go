// This file implements the signals table accessor for the SQLite backend.
// Signals are an upsert-only feed written by upstream systems; there is no
// version column because the engine never mutates them.
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

// Compile-time interface check: signalTable must implement SignalTable.
var _ types.SignalTable = (*signalTable)(nil)

// signalTable implements types.SignalTable.
type signalTable struct {
	backend *Backend
}

// Get returns the signal row for a user. A missing row is not an error;
// the bool reports presence and the zero-value signal applies.
func (t *signalTable) Get(ctx context.Context, userID string) (*types.EngagementSignal, bool, error) {
	if userID == "" {
		return nil, false, types.ErrInvalidID
	}
	db, err := t.backend.conn()
	if err != nil {
		return nil, false, err
	}

	var doc string
	err = db.QueryRowContext(ctx,
		"SELECT record FROM signals WHERE user_id = ?", userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return &types.EngagementSignal{UserID: userID}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting signal %s: %w", userID, err)
	}

	var sig types.EngagementSignal
	if err := json.Unmarshal([]byte(doc), &sig); err != nil {
		return nil, false, fmt.Errorf("unmarshaling signal: %w", err)
	}
	return &sig, true, nil
}

// Put inserts or fully replaces the signal row for sig.UserID.
func (t *signalTable) Put(ctx context.Context, sig *types.EngagementSignal) error {
	if sig == nil || sig.UserID == "" {
		return types.ErrInvalidData
	}
	db, err := t.backend.conn()
	if err != nil {
		return err
	}

	doc, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshaling signal: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO signals (user_id, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		sig.UserID, string(doc), sig.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("putting signal %s: %w", sig.UserID, err)
	}
	return nil
}
