// Snapshot command: saves the context breadcrumb bundle for a user.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

var (
	flagSnapshotDeals      []string
	flagSnapshotPortfolios []string
	flagSnapshotPosts      []string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage a user's context snapshot",
}

func init() {
	snapshotSaveCmd.Flags().StringSliceVar(&flagSnapshotDeals, "deals", nil, "last viewed deal ids")
	snapshotSaveCmd.Flags().StringSliceVar(&flagSnapshotPortfolios, "portfolios", nil, "last viewed portfolio ids")
	snapshotSaveCmd.Flags().StringSliceVar(&flagSnapshotPosts, "posts", nil, "last viewed post ids")
	snapshotCmd.AddCommand(snapshotSaveCmd)
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <user-id>",
	Short: "Overwrite the user's context snapshot",
	Long: `Save fully overwrites the prior snapshot with the given last-viewed
lists and stamps the save time. Used when a user drifts toward at_risk or
dormant so a later returning experience can pick up where they left off.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		snap := types.ContextSnapshot{
			LastViewedDeals:      flagSnapshotDeals,
			LastViewedPortfolios: flagSnapshotPortfolios,
			LastViewedPosts:      flagSnapshotPosts,
		}
		if err := eng.SaveContextSnapshot(cmd.Context(), args[0], snap); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}

		human := fmt.Sprintf("user %s: context snapshot saved", args[0])
		return printResult(snap, human)
	},
}
