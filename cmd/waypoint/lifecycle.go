// Lifecycle commands: get-or-create a record and run transition detection.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Inspect and advance a user's lifecycle record",
}

func init() {
	lifecycleCmd.AddCommand(lifecycleGetCmd)
	lifecycleCmd.AddCommand(lifecycleDetectCmd)
}

var lifecycleGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Get or create a user's lifecycle record",
	Long: `Get returns the user's lifecycle record, creating it in the initial
state on first touch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		rec, created, err := eng.GetOrCreateLifecycle(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get lifecycle: %w", err)
		}

		out := struct {
			Created bool `json:"created"`
			Record  any  `json:"record"`
		}{created, rec}
		human := fmt.Sprintf("user %s: state=%s (created=%v)", rec.UserID, rec.CurrentState, created)
		return printResult(out, human)
	},
}

var lifecycleDetectCmd = &cobra.Command{
	Use:   "detect <user-id>",
	Short: "Evaluate the transition table for a user",
	Long: `Detect evaluates the ordered transition rules once and applies at
most one hop. A call with no matching rule reports transitioned=false.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		res, err := eng.DetectTransition(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("detect transition: %w", err)
		}

		human := fmt.Sprintf("user %s: no transition (state=%s)", args[0], res.From)
		if res.Transitioned {
			human = fmt.Sprintf("user %s: %s -> %s", args[0], res.From, res.To)
		}
		return printResult(res, human)
	},
}
