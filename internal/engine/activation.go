// Activation path assigner and milestone tracker. Each candidate path
// accumulates points from a fixed rule set over the onboarding profile;
// the arg-max wins with ties broken in declaration order. Each path
// declares the milestones that can count as the user's first meaningful
// action.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// Milestone ids, grouped by the path that declares them.
const (
	MilestoneFirstDealView    = "first_deal_view"
	MilestoneFirstDealSave    = "first_deal_save"
	MilestoneFirstPortfolio   = "first_portfolio_created"
	MilestoneFirstPostCreated = "first_post_created"
	MilestoneFirstComment     = "first_comment"
)

// GuidanceStep is one step of a path's fixed onboarding script.
type GuidanceStep struct {
	Element string `json:"element"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// pathDefinition binds a path name to its guidance script and candidate
// first-meaningful-action milestones.
type pathDefinition struct {
	name       string
	milestones []string
	guidance   []GuidanceStep
}

// pathDefinitions is ordered: declaration order is the assignment
// tie-break order.
var pathDefinitions = []pathDefinition{
	{
		name:       types.PathDealFirst,
		milestones: []string{MilestoneFirstDealView, MilestoneFirstDealSave},
		guidance: []GuidanceStep{
			{Element: "deal_feed_tour", Message: "Browse live deals matched to your interests.", Action: "view_deals"},
			{Element: "deal_detail_tour", Message: "Open a deal to see the full brief.", Action: "open_deal"},
			{Element: "deal_save_prompt", Message: "Save a deal to start your watchlist.", Action: "save_deal"},
		},
	},
	{
		name:       types.PathPortfolioFirst,
		milestones: []string{MilestoneFirstPortfolio},
		guidance: []GuidanceStep{
			{Element: "portfolio_intro", Message: "Set up a portfolio to track your goals.", Action: "create_portfolio"},
			{Element: "portfolio_goals", Message: "Add your first target allocation.", Action: "edit_portfolio"},
			{Element: "portfolio_review", Message: "Review your projected performance.", Action: "view_portfolio"},
		},
	},
	{
		name:       types.PathCommunityFirst,
		milestones: []string{MilestoneFirstPostCreated, MilestoneFirstComment},
		guidance: []GuidanceStep{
			{Element: "community_tour", Message: "Meet the communities around your interests.", Action: "view_communities"},
			{Element: "introduce_yourself", Message: "Post a short introduction.", Action: "compose_post"},
			{Element: "join_discussion", Message: "Reply to a discussion that interests you.", Action: "view_feed"},
		},
	},
}

// knownMilestones is the registry of every milestone id any path declares.
var knownMilestones = func() map[string]bool {
	m := make(map[string]bool)
	for _, p := range pathDefinitions {
		for _, id := range p.milestones {
			m[id] = true
		}
	}
	return m
}()

// AssignResult is the outcome of AssignActivationPath.
type AssignResult struct {
	Path     string         `json:"path"`
	Guidance []GuidanceStep `json:"guidance"`
}

// scorePath returns the points one path accumulates for a profile.
func scorePath(path string, p *types.OnboardingProfile) int {
	score := 0
	switch path {
	case types.PathDealFirst:
		if len(p.Step1IndustryInterests) > 0 {
			score += 3
		}
		if !p.Skipped(types.StepIndustryInterests) {
			score += 2
		}
	case types.PathPortfolioFirst:
		if len(p.Step4PortfolioGoals) > 0 {
			score += 3
		}
		if !p.Skipped(types.StepPortfolioGoals) {
			score += 2
		}
	case types.PathCommunityFirst:
		if len(p.Step5CommunityInterests) > 0 {
			score += 3
		}
		if !p.Skipped(types.StepCommunityInterests) {
			score += 2
		}
		if p.Step2EngagementStyle == types.EngagementStyleNetworking {
			score += 2
		}
	}
	return score
}

// choosePath scores every candidate path and returns the winner. A tie
// goes to the earliest declared path, so identical profiles always get
// identical assignments.
func choosePath(p *types.OnboardingProfile) pathDefinition {
	best := pathDefinitions[0]
	bestScore := scorePath(best.name, p)
	for _, def := range pathDefinitions[1:] {
		if s := scorePath(def.name, p); s > bestScore {
			best, bestScore = def, s
		}
	}
	return best
}

// AssignActivationPath scores the onboarding profile, assigns the winning
// path, and returns it with the path's guidance script. Creates the
// activation record on first call; a later call with a new profile
// re-scores and may reassign, but never resets milestone progress.
func (e *Engine) AssignActivationPath(ctx context.Context, userID string, profile *types.OnboardingProfile) (AssignResult, error) {
	if userID == "" {
		return AssignResult{}, types.ErrInvalidID
	}
	if err := profile.Validate(); err != nil {
		return AssignResult{}, err
	}

	def := choosePath(profile)

	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := e.store.Activations().Get(ctx, userID)
	created := false
	switch {
	case errors.Is(err, types.ErrNotFound):
		rec = types.NewActivationRecord(userID, e.now())
		created = true
	case err != nil:
		return AssignResult{}, fmt.Errorf("reading activation: %w", err)
	}

	rec.OnboardingFlowType = profile.FlowType
	rec.AssignedPath = def.name
	for _, id := range def.milestones {
		if _, ok := rec.Milestones[id]; !ok {
			rec.Milestones[id] = false
		}
	}
	rec.UpdatedAt = e.now()

	if created {
		err = e.store.Activations().Create(ctx, rec)
	} else {
		err = e.store.Activations().Update(ctx, rec)
	}
	if err != nil {
		return AssignResult{}, fmt.Errorf("writing activation: %w", err)
	}

	e.log.Info("activation path assigned",
		zap.String("user_id", userID), zap.String("path", def.name))
	return AssignResult{Path: def.name, Guidance: def.guidance}, nil
}

// MilestoneResult is the outcome of TrackMilestone.
type MilestoneResult struct {
	IsActivated bool `json:"is_activated"`

	// ActivatedNow is true only on the call that performed the
	// activation.
	ActivatedNow bool `json:"activated_now"`
}

// TrackMilestone records that the user reached a milestone. The first
// qualifying milestone becomes the user's first meaningful action and
// activates them exactly once; repeats and later milestones only mark the
// map. Returns ErrUnknownMilestone for an id no path declares and
// ErrNotFound if the user has no activation record.
func (e *Engine) TrackMilestone(ctx context.Context, userID, milestoneID string) (MilestoneResult, error) {
	if !knownMilestones[milestoneID] {
		return MilestoneResult{}, types.ErrUnknownMilestone
	}

	var result MilestoneResult
	_, err := e.mutateActivation(ctx, userID, func(rec *types.ActivationRecord) error {
		activatedNow := rec.MarkMilestone(milestoneID, e.now())
		result = MilestoneResult{IsActivated: rec.IsActivated, ActivatedNow: activatedNow}
		return nil
	})
	if err != nil {
		return MilestoneResult{}, err
	}

	if result.ActivatedNow {
		e.log.Info("user activated",
			zap.String("user_id", userID),
			zap.String("milestone", milestoneID))
	}
	return result, nil
}

// UpdateActivity increments the named behavioral counter. Delta defaults
// to 1 at the CLI; here it must be positive. Returns ErrUnknownActivityType
// for an unrecognized counter name and ErrNotFound if the user has no
// activation record.
func (e *Engine) UpdateActivity(ctx context.Context, userID, activityType string, delta int) (*types.ActivationRecord, error) {
	if !types.ValidActivityType(activityType) {
		return nil, types.ErrUnknownActivityType
	}
	if delta < 1 {
		return nil, fmt.Errorf("delta must be positive: %w", types.ErrInvalidInput)
	}

	rec, err := e.mutateActivation(ctx, userID, func(rec *types.ActivationRecord) error {
		rec.RecordActivity(activityType, delta, e.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}
