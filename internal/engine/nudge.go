// Nudge generator: evaluates the ordered rule table against the user's
// activation state and the permanent dismissal/suppression sets, subject
// to a global per-user cooldown.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// ReasonCooldown marks an emission suppressed by the global cooldown.
const ReasonCooldown = "cooldown"

// Nudge is one emitted behavioral prompt.
type Nudge struct {
	ID       string `json:"id"`
	Message  string `json:"message"`
	Action   string `json:"action"`
	Surface  string `json:"surface"`
	Priority int    `json:"priority"`
}

// NudgeResult is the outcome of GenerateNudges. Reason is empty for a
// normal emission (including a legitimately empty one) and
// ReasonCooldown when a non-empty candidate list was suppressed.
type NudgeResult struct {
	Nudges []Nudge `json:"nudges"`
	Reason string  `json:"reason,omitempty"`

	// BatchID identifies one persisted emission for tracing. Time-ordered
	// (UUIDv7), empty when nothing was emitted.
	BatchID string `json:"batch_id,omitempty"`
}

// GenerateNudges evaluates every rule in table order and collects all
// whose predicate holds and whose id is neither dismissed nor suppressed.
// A non-empty candidate list within the cooldown window is suppressed
// entirely; an empty candidate list is never cooldown-blocked. A
// non-suppressed, non-empty emission persists the emitted ids as the
// user's active guidance elements and stamps the nudge timestamp.
// Returns ErrNotFound if the user has no activation record.
func (e *Engine) GenerateNudges(ctx context.Context, userID string) (NudgeResult, error) {
	if userID == "" {
		return NudgeResult{}, types.ErrInvalidID
	}
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := e.store.Activations().Get(ctx, userID)
	if err != nil {
		return NudgeResult{}, err
	}

	suppressed, err := e.suppressedSet(ctx, userID)
	if err != nil {
		return NudgeResult{}, err
	}

	now := e.now()
	nudges := []Nudge{}
	for _, rule := range e.rules {
		if rec.IsDismissed(rule.ID) || suppressed[rule.ID] {
			continue
		}
		if !rule.When.Holds(rec, now) {
			continue
		}
		nudges = append(nudges, Nudge{
			ID:       rule.ID,
			Message:  rule.Message,
			Action:   rule.Action,
			Surface:  rule.Surface,
			Priority: rule.Priority,
		})
	}

	if len(nudges) == 0 {
		return NudgeResult{Nudges: nudges}, nil
	}

	if !rec.LastNudgeTimestamp.IsZero() && now.Sub(rec.LastNudgeTimestamp) < e.cooldown {
		e.log.Debug("nudges suppressed by cooldown",
			zap.String("user_id", userID),
			zap.Time("last_emission", rec.LastNudgeTimestamp))
		return NudgeResult{Nudges: []Nudge{}, Reason: ReasonCooldown}, nil
	}

	ids := make([]string, len(nudges))
	for i, n := range nudges {
		ids[i] = n.ID
	}
	rec.ActiveGuidanceElements = ids
	rec.LastNudgeTimestamp = now
	rec.UpdatedAt = now
	if err := e.store.Activations().Update(ctx, rec); err != nil {
		return NudgeResult{}, fmt.Errorf("writing activation: %w", err)
	}

	batchID := uuid.Must(uuid.NewV7()).String()
	e.log.Info("nudges emitted",
		zap.String("user_id", userID),
		zap.String("batch_id", batchID),
		zap.Strings("ids", ids))
	return NudgeResult{Nudges: nudges, BatchID: batchID}, nil
}

// DismissGuidance permanently opts the user out of one nudge id. The id
// never appears in a future candidate set. Returns ErrNotFound if the
// user has no activation record.
func (e *Engine) DismissGuidance(ctx context.Context, userID, nudgeID string) error {
	if nudgeID == "" {
		return types.ErrInvalidInput
	}
	_, err := e.mutateActivation(ctx, userID, func(rec *types.ActivationRecord) error {
		rec.DismissGuidance(nudgeID, e.now())
		return nil
	})
	return err
}

// suppressedSet reads the lifecycle record's suppressed interventions.
// A user with no lifecycle record has nothing suppressed.
func (e *Engine) suppressedSet(ctx context.Context, userID string) (map[string]bool, error) {
	rec, err := e.store.Lifecycles().Get(ctx, userID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading lifecycle: %w", err)
	}
	return rec.SuppressedInterventions, nil
}
