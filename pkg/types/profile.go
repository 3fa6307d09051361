package types

// Onboarding step indices referenced by OnboardingProfile.SkippedSteps.
const (
	StepIndustryInterests  = 1
	StepEngagementStyle    = 2
	StepExperienceLevel    = 3
	StepPortfolioGoals     = 4
	StepCommunityInterests = 5
)

// EngagementStyleNetworking is the categorical answer that boosts the
// community path during assignment.
const EngagementStyleNetworking = "networking"

// OnboardingProfile carries a user's per-step onboarding answers plus the
// set of step indices they skipped. It is a read-only input collected by
// the onboarding flow.
type OnboardingProfile struct {
	FlowType                string   `json:"flow_type,omitempty"`
	Step1IndustryInterests  []string `json:"step_1_industry_interests,omitempty"`
	Step2EngagementStyle    string   `json:"step_2_engagement_style,omitempty"`
	Step3ExperienceLevel    string   `json:"step_3_experience_level,omitempty"`
	Step4PortfolioGoals     []string `json:"step_4_portfolio_goals,omitempty"`
	Step5CommunityInterests []string `json:"step_5_community_interests,omitempty"`
	SkippedSteps            []int    `json:"skipped_steps,omitempty"`
}

// Validate checks that the profile is well-formed. Skipped step indices
// must reference declared onboarding steps.
func (p *OnboardingProfile) Validate() error {
	if p == nil {
		return ErrInvalidProfile
	}
	for _, s := range p.SkippedSteps {
		if s < StepIndustryInterests || s > StepCommunityInterests {
			return ErrInvalidProfile
		}
	}
	return nil
}

// Skipped reports whether the given step index was skipped.
func (p *OnboardingProfile) Skipped(step int) bool {
	for _, s := range p.SkippedSteps {
		if s == step {
			return true
		}
	}
	return false
}
