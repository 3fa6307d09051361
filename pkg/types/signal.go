package types

import "time"

// EngagementSignal is the read-only upstream feed of behavioral counters
// for one user: weekly engagement, habit loops, and unlocked tiers.
// Upstream systems write it; the engine only reads it. A user with no
// signal row reads as the zero value (no activity observed).
type EngagementSignal struct {
	UserID             string    `json:"user_id"`
	WeeklyVisits       int       `json:"weekly_visits"`
	WeeklySessions     int       `json:"weekly_sessions"`
	EngagementTrendPct float64   `json:"engagement_trend_pct"`
	InactivityDays     int       `json:"inactivity_days"`
	HabitSignalActive  bool      `json:"habit_signal_active"`
	UnlockedTiers      int       `json:"unlocked_tiers"`
	AbandonedFlows     int       `json:"abandoned_flows"`
	IgnoredNudges      int       `json:"ignored_nudges"`
	MissedHabitLoops   int       `json:"missed_habit_loops"`
	UpdatedAt          time.Time `json:"updated_at"`
}
