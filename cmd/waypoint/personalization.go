// Personalization command: recomputes the user's guidance tier.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var personalizationCmd = &cobra.Command{
	Use:   "personalization <user-id>",
	Short: "Recompute and persist a user's personalization level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		level, err := eng.UpdatePersonalizationLevel(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("update personalization: %w", err)
		}

		out := struct {
			Level string `json:"level"`
		}{level}
		human := fmt.Sprintf("user %s: personalization level %s", args[0], level)
		return printResult(out, human)
	},
}
