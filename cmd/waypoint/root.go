// Root command for the waypoint CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/waypoint/internal/paths"
	"github.com/mesh-intelligence/waypoint/pkg/waypoint"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagVerbose   bool
)

// Values loaded from config.yaml by PersistentPreRunE so all subcommands
// can use them.
var (
	configDataDir   string
	configRulesFile string
	configCooldown  int
)

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Waypoint is a user-lifecycle orchestration engine",
	Long: `Waypoint classifies users into lifecycle stages, scores churn risk,
assigns activation paths from onboarding answers, and generates
rate-limited behavioral nudges. All state lives in a local store; upstream
systems feed engagement signals in and consume the emitted nudges.`,
	Version: waypoint.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		configRulesFile = cfg.GetString(cfgKeyRulesFile)
		configCooldown = cfg.GetInt(cfgKeyCooldownHours)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.waypoint-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable structured debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lifecycleCmd)
	rootCmd.AddCommand(churnCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(personalizationCmd)
	rootCmd.AddCommand(activationCmd)
	rootCmd.AddCommand(nudgesCmd)
	rootCmd.AddCommand(signalsCmd)
	rootCmd.AddCommand(sweepCmd)
}

// resolveDataDir returns the data directory path following the precedence
// --data-dir flag > config.yaml data_dir > WAYPOINT_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence --config-dir flag > WAYPOINT_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
