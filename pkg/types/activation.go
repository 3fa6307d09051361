package types

import "time"

// Activation paths. Each new user is assigned to exactly one competing
// onboarding journey based on their onboarding answers.
const (
	PathDealFirst      = "deal_first"
	PathPortfolioFirst = "portfolio_first"
	PathCommunityFirst = "community_first"
)

// AllPaths lists the candidate paths in declaration order. Declaration
// order is also the tie-break order for path assignment.
var AllPaths = []string{
	PathDealFirst,
	PathPortfolioFirst,
	PathCommunityFirst,
}

// Activity types tracked on the activation record's activity summary.
const (
	ActivitySession         = "session"
	ActivityDealView        = "deal_view"
	ActivityDealSave        = "deal_save"
	ActivityPortfolioUpdate = "portfolio_update"
	ActivityPostCreated     = "post_created"
	ActivityCommentCreated  = "comment_created"
	ActivityEventRSVP       = "event_rsvp"
)

// validActivityTypes is the set of recognized activity counter names.
var validActivityTypes = map[string]bool{
	ActivitySession:         true,
	ActivityDealView:        true,
	ActivityDealSave:        true,
	ActivityPortfolioUpdate: true,
	ActivityPostCreated:     true,
	ActivityCommentCreated:  true,
	ActivityEventRSVP:       true,
}

// ValidActivityType reports whether t is a recognized activity type.
func ValidActivityType(t string) bool {
	return validActivityTypes[t]
}

// ActivitySummary aggregates a user's behavioral counters.
type ActivitySummary struct {
	Counts           map[string]int `json:"counts,omitempty"`
	LastActivityDate time.Time      `json:"last_activity_date"`
	DaysSinceSignup  int            `json:"days_since_signup"`
}

// ActivationRecord tracks a user's onboarding journey: the assigned path,
// milestone progress, and whether they reached their first meaningful
// action. One per user, mutated only by the engine.
type ActivationRecord struct {
	UserID             string          `json:"user_id"`
	OnboardingFlowType string          `json:"onboarding_flow_type,omitempty"`
	AssignedPath       string          `json:"assigned_path,omitempty"`
	Milestones         map[string]bool `json:"milestones,omitempty"`

	// IsActivated flips false -> true exactly once. ActivatedAt,
	// DaysToActivation, and FirstMeaningfulAction are immutable after
	// the first qualifying milestone.
	IsActivated           bool      `json:"is_activated"`
	ActivatedAt           time.Time `json:"activated_at,omitzero"`
	DaysToActivation      int       `json:"days_to_activation"`
	FirstMeaningfulAction string    `json:"first_meaningful_action,omitempty"`

	ActivitySummary        ActivitySummary `json:"activity_summary"`
	ActiveGuidanceElements []string        `json:"active_guidance_elements,omitempty"`
	LastNudgeTimestamp     time.Time       `json:"last_nudge_timestamp,omitzero"`
	DismissedGuidance      map[string]bool `json:"dismissed_guidance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version is the optimistic concurrency tag managed by the store.
	Version int64 `json:"-"`
}

// NewActivationRecord returns a fresh, unassigned activation record.
func NewActivationRecord(userID string, now time.Time) *ActivationRecord {
	return &ActivationRecord{
		UserID:     userID,
		Milestones: make(map[string]bool),
		ActivitySummary: ActivitySummary{
			Counts: make(map[string]int),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkMilestone sets the milestone to reached. The milestone map is
// monotone: once true, never false. If no milestone has yet counted as the
// first meaningful action, this one does: IsActivated flips true and
// ActivatedAt, DaysToActivation, and FirstMeaningfulAction are set exactly
// once; subsequent calls, with the same or a different milestone, never
// recompute them. Returns true if this call performed the activation.
func (r *ActivationRecord) MarkMilestone(id string, now time.Time) bool {
	if r.Milestones == nil {
		r.Milestones = make(map[string]bool)
	}
	r.Milestones[id] = true
	r.UpdatedAt = now

	if r.IsActivated {
		return false
	}
	r.IsActivated = true
	r.ActivatedAt = now
	r.DaysToActivation = daysBetween(r.CreatedAt, now)
	r.FirstMeaningfulAction = id
	return true
}

// RecordActivity increments the named counter by delta, updates the last
// activity date, and recomputes days since signup.
func (r *ActivationRecord) RecordActivity(activityType string, delta int, now time.Time) {
	if r.ActivitySummary.Counts == nil {
		r.ActivitySummary.Counts = make(map[string]int)
	}
	r.ActivitySummary.Counts[activityType] += delta
	r.ActivitySummary.LastActivityDate = now
	r.ActivitySummary.DaysSinceSignup = daysBetween(r.CreatedAt, now)
	r.UpdatedAt = now
}

// DismissGuidance permanently excludes a guidance/nudge ID from future
// candidate sets and drops it from the active elements. Idempotent.
func (r *ActivationRecord) DismissGuidance(id string, now time.Time) {
	if r.DismissedGuidance == nil {
		r.DismissedGuidance = make(map[string]bool)
	}
	r.DismissedGuidance[id] = true

	kept := r.ActiveGuidanceElements[:0]
	for _, e := range r.ActiveGuidanceElements {
		if e != id {
			kept = append(kept, e)
		}
	}
	r.ActiveGuidanceElements = kept
	r.UpdatedAt = now
}

// IsDismissed reports whether the guidance ID was permanently dismissed.
func (r *ActivationRecord) IsDismissed(id string) bool {
	return r.DismissedGuidance[id]
}
