// Churn command: scores churn risk from the current signal snapshot.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var churnCmd = &cobra.Command{
	Use:   "churn <user-id>",
	Short: "Calculate and persist a user's churn risk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		res, err := eng.CalculateChurnRisk(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("calculate churn risk: %w", err)
		}

		human := fmt.Sprintf("user %s: churn risk %d (%s)", args[0], res.Score, res.Level)
		return printResult(res, human)
	},
}
