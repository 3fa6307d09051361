package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkMilestoneActivatesExactlyOnce(t *testing.T) {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := NewActivationRecord("user-1", created)

	first := created.AddDate(0, 0, 2)
	activatedNow := rec.MarkMilestone("first_deal_view", first)
	require.True(t, activatedNow)
	assert.True(t, rec.IsActivated)
	assert.Equal(t, first, rec.ActivatedAt)
	assert.Equal(t, 2, rec.DaysToActivation)
	assert.Equal(t, "first_deal_view", rec.FirstMeaningfulAction)

	// Repeat with the same milestone.
	again := rec.MarkMilestone("first_deal_view", first.AddDate(0, 0, 5))
	assert.False(t, again)
	assert.Equal(t, first, rec.ActivatedAt)
	assert.Equal(t, 2, rec.DaysToActivation)

	// A different milestone later marks the map but never recomputes the
	// activation fields.
	later := rec.MarkMilestone("first_deal_save", first.AddDate(0, 0, 10))
	assert.False(t, later)
	assert.True(t, rec.Milestones["first_deal_save"])
	assert.Equal(t, first, rec.ActivatedAt)
	assert.Equal(t, 2, rec.DaysToActivation)
	assert.Equal(t, "first_deal_view", rec.FirstMeaningfulAction)
}

func TestMarkMilestoneMonotone(t *testing.T) {
	rec := NewActivationRecord("user-1", time.Now())
	rec.MarkMilestone("first_post_created", time.Now())

	assert.True(t, rec.Milestones["first_post_created"])
	// Marking again cannot unset it.
	rec.MarkMilestone("first_post_created", time.Now())
	assert.True(t, rec.Milestones["first_post_created"])
}

func TestRecordActivity(t *testing.T) {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := NewActivationRecord("user-1", created)

	now := created.AddDate(0, 0, 4)
	rec.RecordActivity(ActivityDealView, 1, now)
	rec.RecordActivity(ActivityDealView, 2, now)
	rec.RecordActivity(ActivitySession, 1, now)

	assert.Equal(t, 3, rec.ActivitySummary.Counts[ActivityDealView])
	assert.Equal(t, 1, rec.ActivitySummary.Counts[ActivitySession])
	assert.Equal(t, now, rec.ActivitySummary.LastActivityDate)
	assert.Equal(t, 4, rec.ActivitySummary.DaysSinceSignup)
}

func TestDismissGuidance(t *testing.T) {
	rec := NewActivationRecord("user-1", time.Now())
	rec.ActiveGuidanceElements = []string{"a", "b", "c"}

	rec.DismissGuidance("b", time.Now())

	assert.True(t, rec.IsDismissed("b"))
	assert.False(t, rec.IsDismissed("a"))
	assert.Equal(t, []string{"a", "c"}, rec.ActiveGuidanceElements)

	// Idempotent.
	rec.DismissGuidance("b", time.Now())
	assert.Equal(t, []string{"a", "c"}, rec.ActiveGuidanceElements)
}

func TestValidActivityType(t *testing.T) {
	assert.True(t, ValidActivityType(ActivitySession))
	assert.True(t, ValidActivityType(ActivityEventRSVP))
	assert.False(t, ValidActivityType("page_scroll"))
	assert.False(t, ValidActivityType(""))
}
