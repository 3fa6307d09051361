// Sweep command: the periodic re-evaluation loop. Waypoint itself has no
// background scheduler; a cron or job runner invokes this.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var flagSweepConcurrency int

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Re-evaluate every user's lifecycle, churn risk, and level",
	Long: `Sweep runs transition detection, churn scoring, and personalization
for every lifecycle record. Users are independent aggregates, so the sweep
fans out across them; per-user mutations stay serialized inside the
engine.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		ctx := cmd.Context()
		records, err := backend.Lifecycles().List(ctx)
		if err != nil {
			return fmt.Errorf("list lifecycles: %w", err)
		}

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(flagSweepConcurrency)

		transitions := make([]bool, len(records))
		for i, rec := range records {
			i, rec := i, rec
			g.Go(func() error {
				res, err := eng.DetectTransition(ctx, rec.UserID)
				if err != nil {
					return fmt.Errorf("user %s: %w", rec.UserID, err)
				}
				transitions[i] = res.Transitioned

				if _, err := eng.CalculateChurnRisk(ctx, rec.UserID); err != nil {
					return fmt.Errorf("user %s: %w", rec.UserID, err)
				}
				if _, err := eng.UpdatePersonalizationLevel(ctx, rec.UserID); err != nil {
					return fmt.Errorf("user %s: %w", rec.UserID, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		moved := 0
		for _, t := range transitions {
			if t {
				moved++
			}
		}

		out := struct {
			Users       int `json:"users"`
			Transitions int `json:"transitions"`
		}{len(records), moved}
		human := fmt.Sprintf("swept %d user(s), %d transition(s)", len(records), moved)
		return printResult(out, human)
	},
}

func init() {
	sweepCmd.Flags().IntVar(&flagSweepConcurrency, "concurrency", 8, "maximum concurrent users")
}
