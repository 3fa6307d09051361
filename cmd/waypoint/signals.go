// Signals command: the write path for upstream engagement counters.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

var (
	flagWeeklyVisits   int
	flagWeeklySessions int
	flagTrendPct       float64
	flagInactivityDays int
	flagHabitActive    bool
	flagUnlockedTiers  int
	flagAbandonedFlows int
	flagIgnoredNudges  int
	flagMissedLoops    int
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Feed upstream engagement signals into the store",
}

func init() {
	f := signalsSetCmd.Flags()
	f.IntVar(&flagWeeklyVisits, "weekly-visits", 0, "visits in the trailing week")
	f.IntVar(&flagWeeklySessions, "weekly-sessions", 0, "sessions in the trailing week")
	f.Float64Var(&flagTrendPct, "trend-pct", 0, "engagement trend, signed percent")
	f.IntVar(&flagInactivityDays, "inactivity-days", 0, "days since last seen")
	f.BoolVar(&flagHabitActive, "habit-active", false, "active habit signal present")
	f.IntVar(&flagUnlockedTiers, "unlocked-tiers", 0, "unlocked tier count")
	f.IntVar(&flagAbandonedFlows, "abandoned-flows", 0, "abandoned flow count")
	f.IntVar(&flagIgnoredNudges, "ignored-nudges", 0, "ignored nudge count")
	f.IntVar(&flagMissedLoops, "missed-habit-loops", 0, "missed habit loop count")

	signalsCmd.AddCommand(signalsSetCmd)
}

var signalsSetCmd = &cobra.Command{
	Use:   "set <user-id>",
	Short: "Insert or replace a user's signal row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, eng, err := attachEngine()
		if err != nil {
			return err
		}
		defer backend.Detach()

		sig := &types.EngagementSignal{
			UserID:             args[0],
			WeeklyVisits:       flagWeeklyVisits,
			WeeklySessions:     flagWeeklySessions,
			EngagementTrendPct: flagTrendPct,
			InactivityDays:     flagInactivityDays,
			HabitSignalActive:  flagHabitActive,
			UnlockedTiers:      flagUnlockedTiers,
			AbandonedFlows:     flagAbandonedFlows,
			IgnoredNudges:      flagIgnoredNudges,
			MissedHabitLoops:   flagMissedLoops,
		}
		if err := eng.PutSignals(cmd.Context(), sig); err != nil {
			return fmt.Errorf("set signals: %w", err)
		}

		human := fmt.Sprintf("user %s: signals updated", args[0])
		return printResult(sig, human)
	},
}
