package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/waypoint/internal/engine/rules"
	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// nudgeTestRules is a small deterministic table: the first two rules
// fire for any fresh record, the third never does.
func nudgeTestRules() rules.Table {
	return rules.Table{
		{
			ID:       "finish_onboarding",
			When:     rules.Condition{Kind: rules.KindMilestoneIncomplete, Milestone: MilestoneFirstDealView},
			Message:  "Pick up where you left off.",
			Action:   "open_guidance",
			Surface:  "home_banner",
			Priority: 1,
		},
		{
			ID:       "first_post",
			When:     rules.Condition{Kind: rules.KindLowActivityCount, Activity: types.ActivityPostCreated, Count: 1},
			Message:  "Introduce yourself.",
			Action:   "compose_post",
			Surface:  "community_feed",
			Priority: 2,
		},
		{
			ID:       "long_idle",
			When:     rules.Condition{Kind: rules.KindInactiveDays, Days: 30},
			Message:  "Welcome back.",
			Action:   "open_digest",
			Surface:  "email_digest",
			Priority: 3,
		},
	}
}

func newNudgeEngine(t *testing.T) (*Engine, *testClock, types.Store) {
	t.Helper()
	e, clock, store := newTestEngine(t, Options{Rules: nudgeTestRules()})

	_, err := e.AssignActivationPath(context.Background(), "user-1", &types.OnboardingProfile{
		Step1IndustryInterests: []string{"tech"},
	})
	require.NoError(t, err)
	return e, clock, store
}

func TestGenerateNudgesCollectsAllMatchesInOrder(t *testing.T) {
	e, _, store := newNudgeEngine(t)
	ctx := context.Background()

	result, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, result.Reason)

	// Every matching rule is collected; table order is preserved.
	require.Len(t, result.Nudges, 2)
	assert.Equal(t, "finish_onboarding", result.Nudges[0].ID)
	assert.Equal(t, "first_post", result.Nudges[1].ID)
	assert.NotEmpty(t, result.BatchID)

	// The emitted ids become the active guidance set and the cooldown
	// timestamp is stamped.
	rec, err := store.Activations().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"finish_onboarding", "first_post"}, rec.ActiveGuidanceElements)
	assert.False(t, rec.LastNudgeTimestamp.IsZero())
}

func TestGenerateNudgesCooldown(t *testing.T) {
	e, clock, _ := newNudgeEngine(t)
	ctx := context.Background()

	first, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, first.Nudges)

	// A second call inside the window is suppressed entirely.
	clock.Advance(2 * time.Hour)
	second, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, second.Nudges)
	assert.Equal(t, ReasonCooldown, second.Reason)

	// Once the window elapses, emission resumes.
	clock.Advance(5 * time.Hour)
	third, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, third.Nudges)
	assert.Empty(t, third.Reason)
}

func TestGenerateNudgesEmptyResultNeverStartsCooldown(t *testing.T) {
	e, clock, _ := newTestEngine(t, Options{Rules: rules.Table{
		{
			ID:      "long_idle",
			When:    rules.Condition{Kind: rules.KindInactiveDays, Days: 30},
			Message: "Welcome back.",
		},
	}})
	ctx := context.Background()

	_, err := e.AssignActivationPath(ctx, "user-1", &types.OnboardingProfile{})
	require.NoError(t, err)

	// Nothing matches a fresh user against a 30-day idle rule.
	first, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, first.Nudges)
	assert.Empty(t, first.Reason)

	// The empty emission did not arm the cooldown: a later call inside
	// what would have been the window is evaluated normally.
	clock.Advance(time.Hour)
	second, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, second.Reason)
}

func TestGenerateNudgesSkipsDismissed(t *testing.T) {
	e, clock, _ := newNudgeEngine(t)
	ctx := context.Background()

	require.NoError(t, e.DismissGuidance(ctx, "user-1", "finish_onboarding"))

	result, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, result.Nudges, 1)
	assert.Equal(t, "first_post", result.Nudges[0].ID)

	// Dismissal is permanent.
	clock.Advance(30 * 24 * time.Hour)
	result, err = e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	for _, n := range result.Nudges {
		assert.NotEqual(t, "finish_onboarding", n.ID)
	}
}

func TestGenerateNudgesSkipsSuppressed(t *testing.T) {
	e, _, _ := newNudgeEngine(t)
	ctx := context.Background()

	_, _, err := e.GetOrCreateLifecycle(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, e.SuppressIntervention(ctx, "user-1", "first_post"))

	result, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, result.Nudges, 1)
	assert.Equal(t, "finish_onboarding", result.Nudges[0].ID)
}

func TestGenerateNudgesWithoutLifecycleRecord(t *testing.T) {
	// A user with an activation record but no lifecycle record simply
	// has nothing suppressed.
	e, _, _ := newNudgeEngine(t)

	result, err := e.GenerateNudges(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, result.Nudges, 2)
}

func TestGenerateNudgesMissingActivationRecord(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})

	_, err := e.GenerateNudges(context.Background(), "ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDismissGuidanceErrors(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	ctx := context.Background()

	assert.ErrorIs(t, e.DismissGuidance(ctx, "user-1", ""), types.ErrInvalidInput)
	assert.ErrorIs(t, e.DismissGuidance(ctx, "ghost", "some_nudge"), types.ErrNotFound)
}

func TestCustomCooldownOption(t *testing.T) {
	e, clock, _ := newTestEngine(t, Options{
		Rules:         nudgeTestRules(),
		NudgeCooldown: time.Hour,
	})
	ctx := context.Background()

	_, err := e.AssignActivationPath(ctx, "user-1", &types.OnboardingProfile{})
	require.NoError(t, err)

	first, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, first.Nudges)

	clock.Advance(61 * time.Minute)
	second, err := e.GenerateNudges(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, second.Nudges)
	assert.Empty(t, second.Reason)
}
