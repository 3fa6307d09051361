package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

func TestScoreChurnRisk(t *testing.T) {
	tests := []struct {
		name string
		sig  types.EngagementSignal
		want int
	}{
		{
			name: "zero signal stays at baseline",
			sig:  types.EngagementSignal{},
			want: 50,
		},
		{
			name: "session rules are cumulative",
			sig:  types.EngagementSignal{WeeklySessions: 3},
			want: 5, // 50 - 30 - 15
		},
		{
			name: "one session only hits the lower rule",
			sig:  types.EngagementSignal{WeeklySessions: 1},
			want: 35,
		},
		{
			name: "inactivity rules stack",
			sig:  types.EngagementSignal{InactivityDays: 15},
			want: 90, // 50 + 20 + 20
		},
		{
			name: "no sessions and 25 days idle clamps at 100",
			sig:  types.EngagementSignal{WeeklySessions: 0, InactivityDays: 25},
			want: 100, // 50 + 20 + 20 + 15 = 105, clamped
		},
		{
			name: "heavy sessions bottom out at five",
			sig:  types.EngagementSignal{WeeklySessions: 50},
			want: 5,
		},
		{
			name: "huge inactivity clamps at 100",
			sig:  types.EngagementSignal{InactivityDays: 10000},
			want: 100,
		},
		{
			name: "negative counters leave the baseline alone",
			sig:  types.EngagementSignal{WeeklySessions: -3, InactivityDays: -40},
			want: 50,
		},
		{
			name: "sessions and inactivity offset",
			sig:  types.EngagementSignal{WeeklySessions: 3, InactivityDays: 8},
			want: 25, // 50 - 45 + 20
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreChurnRisk(&tt.sig)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, types.RiskLow},
		{40, types.RiskLow},
		{41, types.RiskMedium},
		{70, types.RiskMedium},
		{71, types.RiskHigh},
		{100, types.RiskHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.score), "score %d", tt.score)
	}
}

func TestCalculateChurnRisk(t *testing.T) {
	e, _, store := newTestEngine(t, Options{})
	ctx := context.Background()

	_, _, err := e.GetOrCreateLifecycle(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, e.PutSignals(ctx, &types.EngagementSignal{
		UserID:             "user-1",
		InactivityDays:     25,
		EngagementTrendPct: -60,
		AbandonedFlows:     2,
		IgnoredNudges:      3,
	}))

	result, err := e.CalculateChurnRisk(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, types.RiskHigh, result.Level)
	assert.Equal(t, -60.0, result.Signals.EngagementDecline)
	assert.Equal(t, 25, result.Signals.InactivityDays)

	// Score, breakdown, and the recovery intervention are persisted.
	rec, err := store.Lifecycles().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100, rec.ChurnRiskScore)
	assert.Equal(t, 3, rec.ChurnSignals.IgnoredNudges)
	assert.Contains(t, rec.ActiveInterventions, "churn_recovery_outreach")

	// A second high-risk pass does not duplicate the intervention.
	_, err = e.CalculateChurnRisk(ctx, "user-1")
	require.NoError(t, err)
	rec, err = store.Lifecycles().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"churn_recovery_outreach"}, rec.ActiveInterventions)
}

func TestCalculateChurnRiskNoSignalRow(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	_, _, err := e.GetOrCreateLifecycle(ctx, "user-1")
	require.NoError(t, err)

	// No signal row: the zero value applies and the score is the baseline.
	result, err := e.CalculateChurnRisk(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, types.RiskMedium, result.Level)
}

func TestCalculateChurnRiskMissingRecord(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})

	_, err := e.CalculateChurnRisk(context.Background(), "ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSuppressInterventionBlocksReattach(t *testing.T) {
	e, _, store := newTestEngine(t, Options{})
	ctx := context.Background()

	_, _, err := e.GetOrCreateLifecycle(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, e.PutSignals(ctx, &types.EngagementSignal{
		UserID:         "user-1",
		InactivityDays: 25,
	}))

	_, err = e.CalculateChurnRisk(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, e.SuppressIntervention(ctx, "user-1", "churn_recovery_outreach"))

	rec, err := store.Lifecycles().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.NotContains(t, rec.ActiveInterventions, "churn_recovery_outreach")
	assert.True(t, rec.SuppressedInterventions["churn_recovery_outreach"])

	// Still high risk, but the suppressed intervention never comes back.
	result, err := e.CalculateChurnRisk(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.RiskHigh, result.Level)

	rec, err = store.Lifecycles().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.NotContains(t, rec.ActiveInterventions, "churn_recovery_outreach")
}
