// Nudge commands: generation, dismissal, and permanent suppression.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nudgesCmd = &cobra.Command{
	Use:   "nudges",
	Short: "Generate and manage behavioral nudges",
}

func init() {
	nudgesCmd.AddCommand(nudgesGenerateCmd)
	nudgesCmd.AddCommand(nudgesDismissCmd)
	nudgesCmd.AddCommand(nudgesSuppressCmd)
}

var nudgesGenerateCmd = &cobra.Command{
	Use:   "generate <user-id>",
	Short: "Evaluate the nudge rule table for a user",
	Long: `Generate runs every rule in table order and emits all that hold,
minus permanently dismissed or suppressed ids. A non-empty emission within
the global cooldown window is suppressed entirely and reported with
reason "cooldown".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		res, err := eng.GenerateNudges(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("generate nudges: %w", err)
		}

		human := fmt.Sprintf("user %s: %d nudge(s)", args[0], len(res.Nudges))
		if res.Reason != "" {
			human += " (" + res.Reason + ")"
		}
		return printResult(res, human)
	},
}

var nudgesDismissCmd = &cobra.Command{
	Use:   "dismiss <user-id> <nudge-id>",
	Short: "Permanently dismiss a nudge for a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		if err := eng.DismissGuidance(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("dismiss nudge: %w", err)
		}

		human := fmt.Sprintf("user %s: nudge %s dismissed", args[0], args[1])
		return printResult(map[string]string{"dismissed": args[1]}, human)
	},
}

var nudgesSuppressCmd = &cobra.Command{
	Use:   "suppress <user-id> <intervention-id>",
	Short: "Permanently suppress an intervention for a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		if err := eng.SuppressIntervention(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("suppress intervention: %w", err)
		}

		human := fmt.Sprintf("user %s: intervention %s suppressed", args[0], args[1])
		return printResult(map[string]string{"suppressed": args[1]}, human)
	},
}
