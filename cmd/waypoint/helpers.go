// Shared helpers for waypoint CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/waypoint/internal/engine"
	"github.com/mesh-intelligence/waypoint/internal/engine/rules"
	"github.com/mesh-intelligence/waypoint/internal/sqlite"
	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// attachEngine resolves the data directory, attaches a SQLite backend,
// and builds the engine on top of it. The caller must defer
// backend.Detach().
func attachEngine() (*sqlite.Backend, *engine.Engine, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend:            types.BackendSQLite,
		DataDir:            dataDir,
		RulesFile:          configRulesFile,
		NudgeCooldownHours: configCooldown,
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, nil, fmt.Errorf("attach backend: %w", err)
	}

	table := rules.Table(nil)
	if cfg.RulesFile != "" {
		table, err = rules.Load(cfg.RulesFile)
		if err != nil {
			backend.Detach()
			return nil, nil, fmt.Errorf("load nudge rules: %w", err)
		}
	}

	eng := engine.New(backend, engine.Options{
		Rules:         table,
		NudgeCooldown: time.Duration(cfg.NudgeCooldownHours) * time.Hour,
		Logger:        buildLogger(),
	})
	return backend, eng, nil
}

// buildLogger returns a development logger on stderr with --verbose,
// otherwise a nop logger so command output stays clean.
func buildLogger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// printResult writes v as indented JSON with --json, or falls back to the
// given human-readable line.
func printResult(v any, human string) error {
	if flagJSON {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(human)
	return nil
}

// readProfile loads an onboarding profile from a JSON file, or stdin
// when path is "-".
func readProfile(path string) (*types.OnboardingProfile, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p types.OnboardingProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", types.ErrInvalidProfile)
	}
	return &p, nil
}
