package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// RulesFile optionally points at a YAML nudge rule table. Empty
	// means the built-in default table.
	RulesFile string `json:"rules_file" yaml:"rules_file"`

	// NudgeCooldownHours overrides the global per-user nudge cooldown.
	// Zero means the default of 6 hours.
	NudgeCooldownHours int `json:"nudge_cooldown_hours" yaml:"nudge_cooldown_hours"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrCooldownInvalid = errors.New("nudge cooldown must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.NudgeCooldownHours < 0 {
		return ErrCooldownInvalid
	}
	return nil
}
