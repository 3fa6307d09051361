// Personalization level adapter: a pure function over tenure and current
// state. Rules are evaluated in order and later rules override earlier
// ones; expert wins unconditionally for power users.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// PersonalizationLevel returns the guidance tier for a user with the
// given tenure and lifecycle state.
func PersonalizationLevel(tenureDays int, state string) string {
	level := types.LevelOnboarding
	if tenureDays > 30 && state == types.StateEngaged {
		level = types.LevelLearning
	}
	if tenureDays > 60 && state == types.StateEngaged {
		level = types.LevelAutonomous
	}
	if state == types.StatePowerUser {
		level = types.LevelExpert
	}
	return level
}

// UpdatePersonalizationLevel recomputes the user's guidance tier from
// tenure and current state, persists it, and returns it.
// Returns ErrNotFound if the user has no lifecycle record.
func (e *Engine) UpdatePersonalizationLevel(ctx context.Context, userID string) (string, error) {
	var level string
	_, err := e.mutateLifecycle(ctx, userID, func(rec *types.LifecycleRecord) error {
		level = PersonalizationLevel(rec.TenureDays(e.now()), rec.CurrentState)
		rec.PersonalizationLevel = level
		return nil
	})
	if err != nil {
		return "", err
	}

	e.log.Debug("personalization level updated",
		zap.String("user_id", userID), zap.String("level", level))
	return level, nil
}
