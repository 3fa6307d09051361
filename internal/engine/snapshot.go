// Context snapshot manager: saves the small breadcrumb bundle referenced
// by a later returning experience. Save fully overwrites the prior
// snapshot; there is no merge.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// SaveContextSnapshot overwrites the user's context snapshot and stamps
// SavedAt. Returns ErrNotFound if the user has no lifecycle record.
func (e *Engine) SaveContextSnapshot(ctx context.Context, userID string, snap types.ContextSnapshot) error {
	_, err := e.mutateLifecycle(ctx, userID, func(rec *types.LifecycleRecord) error {
		snap.SavedAt = e.now()
		rec.ContextSnapshot = snap
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Debug("context snapshot saved", zap.String("user_id", userID))
	return nil
}
