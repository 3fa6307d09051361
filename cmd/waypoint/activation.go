// Activation commands: path assignment, milestone tracking, and activity
// counters.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagProfilePath   string
	flagActivityDelta int
)

var activationCmd = &cobra.Command{
	Use:   "activation",
	Short: "Manage a user's activation journey",
}

func init() {
	activationAssignCmd.Flags().StringVar(&flagProfilePath, "profile", "-", "onboarding profile JSON file ('-' for stdin)")
	activationActivityCmd.Flags().IntVar(&flagActivityDelta, "delta", 1, "counter increment")

	activationCmd.AddCommand(activationAssignCmd)
	activationCmd.AddCommand(activationMilestoneCmd)
	activationCmd.AddCommand(activationActivityCmd)
}

var activationAssignCmd = &cobra.Command{
	Use:   "assign <user-id>",
	Short: "Score the onboarding profile and assign an activation path",
	Long: `Assign scores the onboarding answers against the three candidate
paths and persists the winner along with its guidance script. Identical
profiles always yield identical assignments.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := readProfile(flagProfilePath)
		if err != nil {
			return err
		}

		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		res, err := eng.AssignActivationPath(cmd.Context(), args[0], profile)
		if err != nil {
			return fmt.Errorf("assign path: %w", err)
		}

		human := fmt.Sprintf("user %s: assigned path %s (%d guidance steps)",
			args[0], res.Path, len(res.Guidance))
		return printResult(res, human)
	},
}

var activationMilestoneCmd = &cobra.Command{
	Use:   "milestone <user-id> <milestone-id>",
	Short: "Record a reached milestone",
	Long: `Milestone marks the given milestone reached. The first qualifying
milestone becomes the user's first meaningful action and activates them;
activation fires exactly once.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		res, err := eng.TrackMilestone(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("track milestone: %w", err)
		}

		human := fmt.Sprintf("user %s: milestone %s recorded (activated=%v)",
			args[0], args[1], res.IsActivated)
		return printResult(res, human)
	},
}

var activationActivityCmd = &cobra.Command{
	Use:   "activity <user-id> <activity-type>",
	Short: "Increment a behavioral activity counter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		rec, err := eng.UpdateActivity(cmd.Context(), args[0], args[1], flagActivityDelta)
		if err != nil {
			return fmt.Errorf("update activity: %w", err)
		}

		human := fmt.Sprintf("user %s: %s=%d", args[0], args[1],
			rec.ActivitySummary.Counts[args[1]])
		return printResult(rec.ActivitySummary, human)
	},
}
