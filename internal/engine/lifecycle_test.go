package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// setState walks a lifecycle record directly into the given state for
// test setup, bypassing the detector.
func setState(t *testing.T, e *Engine, userID string, path ...string) {
	t.Helper()
	_, err := e.mutateLifecycle(context.Background(), userID, func(rec *types.LifecycleRecord) error {
		for _, to := range path {
			if err := rec.ApplyTransition(to, e.now()); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestDetectTransitionMissingRecord(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})

	_, err := e.DetectTransition(context.Background(), "ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDetectTransitionNewToActivated(t *testing.T) {
	e, _, store := newTestEngine(t, Options{})
	ctx := context.Background()

	_, _, err := e.GetOrCreateLifecycle(ctx, "user-1")
	require.NoError(t, err)

	// Not activated yet: the detector reports no movement.
	result, err := e.DetectTransition(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, result.Transitioned)
	assert.Equal(t, types.StateNew, result.From)
	assert.Equal(t, types.StateNew, result.To)

	// Reach activation, then detect.
	_, err = e.AssignActivationPath(ctx, "user-1", &types.OnboardingProfile{})
	require.NoError(t, err)
	_, err = e.TrackMilestone(ctx, "user-1", MilestoneFirstDealView)
	require.NoError(t, err)

	result, err = e.DetectTransition(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, result.Transitioned)
	assert.Equal(t, types.StateNew, result.From)
	assert.Equal(t, types.StateActivated, result.To)

	rec, err := store.Lifecycles().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.StateActivated, rec.CurrentState)
	require.Len(t, rec.StateHistory, 1)
	assert.Equal(t, types.StateNew, rec.StateHistory[0].State)
}

func TestDetectTransitionSingleHopPerCall(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	_, _, err := e.GetOrCreateLifecycle(ctx, "user-1")
	require.NoError(t, err)
	_, err = e.AssignActivationPath(ctx, "user-1", &types.OnboardingProfile{})
	require.NoError(t, err)
	_, err = e.TrackMilestone(ctx, "user-1", MilestoneFirstDealView)
	require.NoError(t, err)

	// The signal already qualifies the user for activated -> engaged,
	// but one call moves at most one hop.
	require.NoError(t, e.PutSignals(ctx, &types.EngagementSignal{
		UserID:            "user-1",
		WeeklyVisits:      3,
		HabitSignalActive: true,
	}))

	result, err := e.DetectTransition(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.StateActivated, result.To)

	result, err = e.DetectTransition(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.StateEngaged, result.To)
}

func TestDetectTransitionEngagedBranches(t *testing.T) {
	tests := []struct {
		name       string
		sig        types.EngagementSignal
		wantMove   bool
		wantTarget string
	}{
		{
			name:       "tier unlock promotes to power user",
			sig:        types.EngagementSignal{UnlockedTiers: 1},
			wantMove:   true,
			wantTarget: types.StatePowerUser,
		},
		{
			name: "steep decline with inactivity slides to at risk",
			sig: types.EngagementSignal{
				EngagementTrendPct: -55,
				InactivityDays:     10,
			},
			wantMove:   true,
			wantTarget: types.StateAtRisk,
		},
		{
			// The power-user rule is evaluated first; an unlocked tier
			// wins even when the at-risk predicate also holds.
			name: "tier unlock outranks the at risk slide",
			sig: types.EngagementSignal{
				UnlockedTiers:      1,
				EngagementTrendPct: -55,
				InactivityDays:     10,
			},
			wantMove:   true,
			wantTarget: types.StatePowerUser,
		},
		{
			name: "mild decline stays engaged",
			sig: types.EngagementSignal{
				EngagementTrendPct: -20,
				InactivityDays:     10,
			},
			wantMove:   false,
			wantTarget: types.StateEngaged,
		},
		{
			name: "decline without inactivity stays engaged",
			sig: types.EngagementSignal{
				EngagementTrendPct: -55,
				InactivityDays:     3,
			},
			wantMove:   false,
			wantTarget: types.StateEngaged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, Options{})
			ctx := context.Background()

			_, _, err := e.GetOrCreateLifecycle(ctx, "user-1")
			require.NoError(t, err)
			setState(t, e, "user-1", types.StateActivated, types.StateEngaged)

			tt.sig.UserID = "user-1"
			require.NoError(t, e.PutSignals(ctx, &tt.sig))

			result, err := e.DetectTransition(ctx, "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantMove, result.Transitioned)
			assert.Equal(t, tt.wantTarget, result.To)
		})
	}
}

func TestDetectTransitionDecayAndRecovery(t *testing.T) {
	tests := []struct {
		name       string
		path       []string
		sig        types.EngagementSignal
		wantMove   bool
		wantTarget string
	}{
		{
			name:       "at risk goes dormant after three weeks idle",
			path:       []string{types.StateActivated, types.StateEngaged, types.StateAtRisk},
			sig:        types.EngagementSignal{InactivityDays: 22},
			wantMove:   true,
			wantTarget: types.StateDormant,
		},
		{
			name:       "at risk recovers to engaged",
			path:       []string{types.StateActivated, types.StateEngaged, types.StateAtRisk},
			sig:        types.EngagementSignal{WeeklyVisits: 3, InactivityDays: 2},
			wantMove:   true,
			wantTarget: types.StateEngaged,
		},
		{
			name:       "at risk holds without movement",
			path:       []string{types.StateActivated, types.StateEngaged, types.StateAtRisk},
			sig:        types.EngagementSignal{WeeklyVisits: 1, InactivityDays: 12},
			wantMove:   false,
			wantTarget: types.StateAtRisk,
		},
		{
			name:       "dormant user seen this week returns",
			path:       []string{types.StateActivated, types.StateEngaged, types.StateAtRisk, types.StateDormant},
			sig:        types.EngagementSignal{InactivityDays: 2},
			wantMove:   true,
			wantTarget: types.StateReturning,
		},
		{
			name:       "dormant user still idle stays dormant",
			path:       []string{types.StateActivated, types.StateEngaged, types.StateAtRisk, types.StateDormant},
			sig:        types.EngagementSignal{InactivityDays: 40},
			wantMove:   false,
			wantTarget: types.StateDormant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newTestEngine(t, Options{})
			ctx := context.Background()

			_, _, err := e.GetOrCreateLifecycle(ctx, "user-1")
			require.NoError(t, err)
			setState(t, e, "user-1", tt.path...)

			tt.sig.UserID = "user-1"
			require.NoError(t, e.PutSignals(ctx, &tt.sig))

			result, err := e.DetectTransition(ctx, "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantMove, result.Transitioned)
			assert.Equal(t, tt.wantTarget, result.To)
		})
	}
}

func TestDetectTransitionNoMatchLeavesRecordUntouched(t *testing.T) {
	e, clock, store := newTestEngine(t, Options{})
	ctx := context.Background()

	_, _, err := e.GetOrCreateLifecycle(ctx, "user-1")
	require.NoError(t, err)

	before, err := store.Lifecycles().Get(ctx, "user-1")
	require.NoError(t, err)

	clock.Advance(1)
	result, err := e.DetectTransition(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, result.Transitioned)

	// No rule fired, so nothing was written.
	after, err := store.Lifecycles().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}
