// Package sqlite implements the SQLite storage backend for the Waypoint
// lifecycle engine.
// See docs/ARCHITECTURE.md § SQLite Backend.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "waypoint.db"

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// Backend implements the Store interface on a single SQLite database.
// The database file is the source of truth; one row per user per table.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	lifecycles  *lifecycleTable
	activations *activationTable
	signals     *signalTable
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	b := &Backend{}
	b.lifecycles = &lifecycleTable{backend: b}
	b.activations = &activationTable{backend: b}
	b.signals = &signalTable{backend: b}
	return b
}

// Attach initializes the backend with the given configuration. Creates
// DataDir if it does not exist and applies the schema. Existing data is
// preserved across attach cycles.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the SQLite connection. Idempotent. After Detach, table
// operations return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Lifecycles returns the lifecycle record table.
func (b *Backend) Lifecycles() types.LifecycleTable { return b.lifecycles }

// Activations returns the activation record table.
func (b *Backend) Activations() types.ActivationTable { return b.activations }

// Signals returns the engagement signal table.
func (b *Backend) Signals() types.SignalTable { return b.signals }

// conn returns the live database handle, or ErrStoreDetached.
// Table accessors call this at the top of every operation.
func (b *Backend) conn() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached || b.db == nil {
		return nil, types.ErrStoreDetached
	}
	return b.db, nil
}
