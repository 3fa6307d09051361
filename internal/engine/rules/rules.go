// Package rules defines the ordered nudge rule table and its YAML
// loading. The table is immutable after load: evaluation walks every rule
// in order and collects all matches, there is no early exit.
// Predicates are a closed set of kinds so a deployment can swap in its own
// table without code changes.
// See docs/ARCHITECTURE.md § Nudge Generator.
package rules

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// Predicate kinds recognized in rule conditions.
const (
	KindNotActivatedAfterDays = "not_activated_after_days"
	KindMilestoneIncomplete   = "milestone_incomplete"
	KindInactiveDays          = "inactive_days"
	KindLowActivityCount      = "low_activity_count"
)

// Rule validation errors.
var (
	ErrEmptyRuleID   = errors.New("rule id must not be empty")
	ErrDuplicateRule = errors.New("duplicate rule id")
	ErrUnknownKind   = errors.New("unknown condition kind")
	ErrMissingParam  = errors.New("missing condition parameter")
)

// Condition is the declarative predicate of one rule. Kind selects the
// predicate; the remaining fields are its parameters.
type Condition struct {
	Kind      string `yaml:"kind"`
	Days      int    `yaml:"days,omitempty"`
	Milestone string `yaml:"milestone,omitempty"`
	Activity  string `yaml:"activity,omitempty"`
	Count     int    `yaml:"count,omitempty"`
}

// Rule is one entry of the ordered nudge table.
type Rule struct {
	ID       string    `yaml:"id"`
	When     Condition `yaml:"when"`
	Message  string    `yaml:"message"`
	Action   string    `yaml:"action"`
	Surface  string    `yaml:"surface"`
	Priority int       `yaml:"priority"`
}

// Table is an ordered, immutable nudge rule table.
type Table []Rule

// ruleFile is the YAML document shape for a rules file.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Validate checks ids are unique and non-empty, kinds are known, and each
// condition carries the parameters its kind requires.
func (t Table) Validate() error {
	seen := make(map[string]bool, len(t))
	for _, r := range t {
		if r.ID == "" {
			return ErrEmptyRuleID
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateRule, r.ID)
		}
		seen[r.ID] = true

		switch r.When.Kind {
		case KindNotActivatedAfterDays, KindInactiveDays:
			if r.When.Days <= 0 {
				return fmt.Errorf("rule %s: %w: days", r.ID, ErrMissingParam)
			}
		case KindMilestoneIncomplete:
			if r.When.Milestone == "" {
				return fmt.Errorf("rule %s: %w: milestone", r.ID, ErrMissingParam)
			}
		case KindLowActivityCount:
			if r.When.Activity == "" {
				return fmt.Errorf("rule %s: %w: activity", r.ID, ErrMissingParam)
			}
			if r.When.Count <= 0 {
				return fmt.Errorf("rule %s: %w: count", r.ID, ErrMissingParam)
			}
		default:
			return fmt.Errorf("rule %s: %w: %q", r.ID, ErrUnknownKind, r.When.Kind)
		}
	}
	return nil
}

// Holds evaluates the condition against an activation record at the given
// time.
func (c Condition) Holds(rec *types.ActivationRecord, now time.Time) bool {
	switch c.Kind {
	case KindNotActivatedAfterDays:
		return !rec.IsActivated && daysSince(rec.CreatedAt, now) >= c.Days
	case KindMilestoneIncomplete:
		return !rec.Milestones[c.Milestone]
	case KindInactiveDays:
		last := rec.ActivitySummary.LastActivityDate
		if last.IsZero() {
			// Never active: fall back to signup age.
			return daysSince(rec.CreatedAt, now) >= c.Days
		}
		return daysSince(last, now) >= c.Days
	case KindLowActivityCount:
		return rec.ActivitySummary.Counts[c.Activity] < c.Count
	default:
		return false
	}
}

// Load reads a rule table from a YAML file and validates it.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	t := Table(f.Rules)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Default returns the built-in rule table used when no rules file is
// configured. Order matters: the emitted nudge list preserves it.
func Default() Table {
	return Table{
		{
			ID:       "reach_first_milestone",
			When:     Condition{Kind: KindNotActivatedAfterDays, Days: 1},
			Message:  "Take your first step: your activation path has one action waiting.",
			Action:   "open_guidance",
			Surface:  "home_banner",
			Priority: 1,
		},
		{
			ID:       "browse_first_deal",
			When:     Condition{Kind: KindMilestoneIncomplete, Milestone: "first_deal_view"},
			Message:  "Browse the deal flow to see what's live right now.",
			Action:   "view_deals",
			Surface:  "home_card",
			Priority: 2,
		},
		{
			ID:       "post_introduction",
			When:     Condition{Kind: KindLowActivityCount, Activity: types.ActivityPostCreated, Count: 1},
			Message:  "Introduce yourself to the community with a first post.",
			Action:   "compose_post",
			Surface:  "community_feed",
			Priority: 3,
		},
		{
			ID:       "come_back_soon",
			When:     Condition{Kind: KindInactiveDays, Days: 7},
			Message:  "It's been a week. Here's what you missed.",
			Action:   "open_digest",
			Surface:  "email_digest",
			Priority: 4,
		},
	}
}

// daysSince returns whole days from a to b, never negative.
func daysSince(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
