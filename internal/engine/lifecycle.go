// Lifecycle state machine: the ordered transition rule table and the
// detect operation. First matching rule wins and a call moves a user at
// most one hop. A call with no matching rule is the normal
// transitioned=false outcome, not an error.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// TransitionResult reports the outcome of DetectTransition. When
// Transitioned is false, From and To both hold the unchanged state.
type TransitionResult struct {
	Transitioned bool   `json:"transitioned"`
	From         string `json:"from"`
	To           string `json:"to"`
}

// transitionInput bundles the read-only inputs a transition predicate
// sees: the activation flag and the upstream engagement signal.
type transitionInput struct {
	activated bool
	signal    *types.EngagementSignal
}

// transitionRule is one entry of the ordered evaluation table.
type transitionRule struct {
	from string
	to   string
	when func(in transitionInput) bool
}

// transitionRules is evaluated in order on every detect call. Rules for a
// state other than the record's current state never fire; among the rest,
// the first whose predicate holds wins.
var transitionRules = []transitionRule{
	{types.StateNew, types.StateActivated, func(in transitionInput) bool {
		return in.activated
	}},
	{types.StateActivated, types.StateEngaged, func(in transitionInput) bool {
		return in.signal.WeeklyVisits >= 2 && in.signal.HabitSignalActive
	}},
	// Tier unlock is checked before the at_risk slide.
	{types.StateEngaged, types.StatePowerUser, func(in transitionInput) bool {
		return in.signal.UnlockedTiers > 0
	}},
	{types.StateEngaged, types.StateAtRisk, func(in transitionInput) bool {
		return in.signal.EngagementTrendPct < -40 && in.signal.InactivityDays > 7
	}},
	{types.StateAtRisk, types.StateDormant, func(in transitionInput) bool {
		return in.signal.InactivityDays > 21
	}},
	// A dormant user seen again within the week overrides the default
	// stay outcome.
	{types.StateDormant, types.StateReturning, func(in transitionInput) bool {
		return in.signal.InactivityDays < 7
	}},
	// Recovery edges back to engaged.
	{types.StateAtRisk, types.StateEngaged, func(in transitionInput) bool {
		return in.signal.WeeklyVisits >= 2 && in.signal.InactivityDays <= 7
	}},
	{types.StateDormant, types.StateEngaged, func(in transitionInput) bool {
		return in.signal.WeeklyVisits >= 2 && in.signal.HabitSignalActive
	}},
}

// DetectTransition evaluates the transition table for a user and applies
// at most one hop. Returns ErrNotFound if the user has no lifecycle
// record; use GetOrCreateLifecycle first.
func (e *Engine) DetectTransition(ctx context.Context, userID string) (TransitionResult, error) {
	var result TransitionResult

	_, err := e.mutateLifecycle(ctx, userID, func(rec *types.LifecycleRecord) error {
		in, err := e.transitionInput(ctx, userID)
		if err != nil {
			return err
		}

		result = TransitionResult{From: rec.CurrentState, To: rec.CurrentState}
		for _, rule := range transitionRules {
			if rule.from != rec.CurrentState || !rule.when(in) {
				continue
			}
			if err := rec.ApplyTransition(rule.to, e.now()); err != nil {
				return fmt.Errorf("applying %s -> %s: %w", rule.from, rule.to, err)
			}
			result = TransitionResult{Transitioned: true, From: rule.from, To: rule.to}
			return nil
		}
		return errNoTransition
	})
	if err != nil && !errors.Is(err, errNoTransition) {
		return TransitionResult{}, err
	}

	if result.Transitioned {
		e.log.Info("lifecycle transition",
			zap.String("user_id", userID),
			zap.String("from", result.From),
			zap.String("to", result.To))
	}
	return result, nil
}

// errNoTransition aborts the mutate cycle without writing when no rule
// fired. It never escapes DetectTransition.
var errNoTransition = errors.New("no transition")

// transitionInput gathers the activation flag and the signal row. A user
// with no activation record is simply not activated yet.
func (e *Engine) transitionInput(ctx context.Context, userID string) (transitionInput, error) {
	in := transitionInput{}

	act, err := e.store.Activations().Get(ctx, userID)
	switch {
	case err == nil:
		in.activated = act.IsActivated
	case errors.Is(err, types.ErrNotFound):
		// No onboarding yet.
	default:
		return in, fmt.Errorf("reading activation: %w", err)
	}

	sig, err := e.signalFor(ctx, userID)
	if err != nil {
		return in, err
	}
	in.signal = sig
	return in, nil
}
