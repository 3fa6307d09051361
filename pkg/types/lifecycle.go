package types

import "time"

// Lifecycle states. A user progresses through these stages as their
// engagement matures or decays.
const (
	StateNew       = "new"
	StateActivated = "activated"
	StateEngaged   = "engaged"
	StatePowerUser = "power_user"
	StateAtRisk    = "at_risk"
	StateDormant   = "dormant"
	StateReturning = "returning"
)

// AllStates lists every lifecycle state in declaration order.
var AllStates = []string{
	StateNew,
	StateActivated,
	StateEngaged,
	StatePowerUser,
	StateAtRisk,
	StateDormant,
	StateReturning,
}

// validStates is the set of recognized lifecycle state values.
var validStates = map[string]bool{
	StateNew:       true,
	StateActivated: true,
	StateEngaged:   true,
	StatePowerUser: true,
	StateAtRisk:    true,
	StateDormant:   true,
	StateReturning: true,
}

// validEdges is the directed transition graph. No transition outside this
// set is ever valid; no state is terminal.
var validEdges = map[string]map[string]bool{
	StateNew:       {StateActivated: true},
	StateActivated: {StateEngaged: true},
	StateEngaged:   {StatePowerUser: true, StateAtRisk: true},
	StateAtRisk:    {StateDormant: true, StateEngaged: true},
	StateDormant:   {StateReturning: true, StateEngaged: true},
}

// ValidState reports whether s is a recognized lifecycle state.
func ValidState(s string) bool {
	return validStates[s]
}

// ValidTransition reports whether from -> to is one of the declared edges.
func ValidTransition(from, to string) bool {
	return validEdges[from][to]
}

// Personalization levels. Discrete tiers controlling onboarding guidance
// intensity. Ordered from most to least hand-holding.
const (
	LevelOnboarding = "onboarding"
	LevelLearning   = "learning"
	LevelAutonomous = "autonomous"
	LevelExpert     = "expert"
)

// Churn risk levels derived from the churn risk score.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// StateHistoryEntry records one completed stay in a lifecycle state.
// Entries are append-only and strictly chronological;
// ExitedAt of entry n equals EnteredAt of entry n+1.
type StateHistoryEntry struct {
	State        string    `json:"state"`
	EnteredAt    time.Time `json:"entered_at"`
	ExitedAt     time.Time `json:"exited_at"`
	DurationDays int       `json:"duration_days"`
}

// ChurnSignals is the behavioral breakdown persisted alongside the churn
// risk score.
type ChurnSignals struct {
	EngagementDecline float64 `json:"engagement_decline"`
	AbandonedFlows    int     `json:"abandoned_flows"`
	IgnoredNudges     int     `json:"ignored_nudges"`
	MissedHabitLoops  int     `json:"missed_habit_loops"`
	InactivityDays    int     `json:"inactivity_days"`
}

// ContextSnapshot is a small breadcrumb bundle saved when a user drifts
// toward at_risk or dormant, so a later returning experience can reference
// what they last viewed. Save fully overwrites; there is no merge.
type ContextSnapshot struct {
	LastViewedDeals      []string  `json:"last_viewed_deals"`
	LastViewedPortfolios []string  `json:"last_viewed_portfolios"`
	LastViewedPosts      []string  `json:"last_viewed_posts"`
	SavedAt              time.Time `json:"saved_at"`
}

// LifecycleRecord is the per-user lifecycle aggregate. Created lazily on
// first touch, never deleted, and mutated only by the engine.
type LifecycleRecord struct {
	UserID                  string              `json:"user_id"`
	CurrentState            string              `json:"current_state"`
	PreviousState           string              `json:"previous_state,omitempty"`
	StateEnteredAt          time.Time           `json:"state_entered_at"`
	StateHistory            []StateHistoryEntry `json:"state_history,omitempty"`
	ChurnRiskScore          int                 `json:"churn_risk_score"`
	ChurnSignals            ChurnSignals        `json:"churn_signals"`
	ActiveInterventions     []string            `json:"active_interventions,omitempty"`
	SuppressedInterventions map[string]bool     `json:"suppressed_interventions,omitempty"`
	PersonalizationLevel    string              `json:"personalization_level"`
	ContextSnapshot         ContextSnapshot     `json:"context_snapshot"`
	CreatedAt               time.Time           `json:"created_at"`
	UpdatedAt               time.Time           `json:"updated_at"`

	// Version is the optimistic concurrency tag managed by the store.
	// It is not part of the persisted document.
	Version int64 `json:"-"`
}

// NewLifecycleRecord returns a fresh record in the initial state.
func NewLifecycleRecord(userID string, now time.Time) *LifecycleRecord {
	return &LifecycleRecord{
		UserID:               userID,
		CurrentState:         StateNew,
		StateEnteredAt:       now,
		ChurnRiskScore:       50,
		PersonalizationLevel: LevelOnboarding,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// ApplyTransition moves the record along one declared edge. It appends the
// completed stay to StateHistory, updates PreviousState and CurrentState,
// and resets StateEnteredAt to now.
// Returns ErrInvalidState for an unknown target and ErrInvalidTransition
// for any from -> to pair outside the declared graph (including self).
func (r *LifecycleRecord) ApplyTransition(to string, now time.Time) error {
	if !validStates[to] {
		return ErrInvalidState
	}
	if !ValidTransition(r.CurrentState, to) {
		return ErrInvalidTransition
	}

	r.StateHistory = append(r.StateHistory, StateHistoryEntry{
		State:        r.CurrentState,
		EnteredAt:    r.StateEnteredAt,
		ExitedAt:     now,
		DurationDays: daysBetween(r.StateEnteredAt, now),
	})
	r.PreviousState = r.CurrentState
	r.CurrentState = to
	r.StateEnteredAt = now
	r.UpdatedAt = now
	return nil
}

// SuppressIntervention permanently excludes an intervention ID from future
// nudge candidate sets. Idempotent.
func (r *LifecycleRecord) SuppressIntervention(id string) {
	if r.SuppressedInterventions == nil {
		r.SuppressedInterventions = make(map[string]bool)
	}
	r.SuppressedInterventions[id] = true
}

// TenureDays returns whole days elapsed since the record was created.
func (r *LifecycleRecord) TenureDays(now time.Time) int {
	return daysBetween(r.CreatedAt, now)
}

// daysBetween returns whole days from a to b, never negative.
func daysBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
