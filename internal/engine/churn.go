// Churn risk scorer: a pure additive function over behavioral counters.
// The session and inactivity rules are cumulative, not mutually exclusive;
// that double-count is contract behavior and must be kept literal.
package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// churnBaseline is the score every user starts from before signals apply.
const churnBaseline = 50

// ChurnResult is the outcome of CalculateChurnRisk.
type ChurnResult struct {
	Score   int                `json:"score"`
	Level   string             `json:"level"`
	Signals types.ChurnSignals `json:"signals"`
}

// churnRecoveryIntervention is attached to a user's active interventions
// when their risk level reaches high, unless permanently suppressed.
const churnRecoveryIntervention = "churn_recovery_outreach"

// ScoreChurnRisk computes the churn risk score for one signal snapshot.
// All applicable rules fire; the result is clamped to [0,100].
func ScoreChurnRisk(sig *types.EngagementSignal) int {
	score := churnBaseline
	if sig.WeeklySessions >= 3 {
		score -= 30
	}
	if sig.WeeklySessions >= 1 {
		score -= 15
	}
	if sig.InactivityDays > 7 {
		score += 20
	}
	if sig.InactivityDays > 14 {
		score += 20
	}
	if sig.InactivityDays > 21 {
		score += 15
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// RiskLevel maps a churn risk score to its discrete level.
func RiskLevel(score int) string {
	switch {
	case score > 70:
		return types.RiskHigh
	case score > 40:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// CalculateChurnRisk scores the user's current signals, persists the score
// and the signal breakdown on the lifecycle record, and returns both.
// A high risk level attaches the churn recovery intervention unless the
// user has permanently suppressed it.
// Returns ErrNotFound if the user has no lifecycle record.
func (e *Engine) CalculateChurnRisk(ctx context.Context, userID string) (ChurnResult, error) {
	var result ChurnResult

	_, err := e.mutateLifecycle(ctx, userID, func(rec *types.LifecycleRecord) error {
		sig, err := e.signalFor(ctx, userID)
		if err != nil {
			return err
		}

		score := ScoreChurnRisk(sig)
		signals := types.ChurnSignals{
			EngagementDecline: sig.EngagementTrendPct,
			AbandonedFlows:    sig.AbandonedFlows,
			IgnoredNudges:     sig.IgnoredNudges,
			MissedHabitLoops:  sig.MissedHabitLoops,
			InactivityDays:    sig.InactivityDays,
		}

		rec.ChurnRiskScore = score
		rec.ChurnSignals = signals
		result = ChurnResult{Score: score, Level: RiskLevel(score), Signals: signals}

		if result.Level == types.RiskHigh &&
			!rec.SuppressedInterventions[churnRecoveryIntervention] &&
			!contains(rec.ActiveInterventions, churnRecoveryIntervention) {
			rec.ActiveInterventions = append(rec.ActiveInterventions, churnRecoveryIntervention)
		}
		return nil
	})
	if err != nil {
		return ChurnResult{}, err
	}

	e.log.Debug("churn risk calculated",
		zap.String("user_id", userID),
		zap.Int("score", result.Score),
		zap.String("level", result.Level))
	return result, nil
}

// SuppressIntervention permanently opts the user out of one intervention
// ID and removes it from the active set.
func (e *Engine) SuppressIntervention(ctx context.Context, userID, interventionID string) error {
	if interventionID == "" {
		return types.ErrInvalidInput
	}
	_, err := e.mutateLifecycle(ctx, userID, func(rec *types.LifecycleRecord) error {
		rec.SuppressIntervention(interventionID)
		kept := rec.ActiveInterventions[:0]
		for _, id := range rec.ActiveInterventions {
			if id != interventionID {
				kept = append(kept, id)
			}
		}
		rec.ActiveInterventions = kept
		return nil
	})
	return err
}

// contains reports whether list holds id.
func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
