package types

import "context"

// Store defines backend-agnostic access to per-user records. Callers
// attach to a backend, use the typed tables, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns
	// ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, table operations return ErrStoreDetached.
	Detach() error

	// Lifecycles returns the lifecycle record table.
	Lifecycles() LifecycleTable

	// Activations returns the activation record table.
	Activations() ActivationTable

	// Signals returns the engagement signal table.
	Signals() SignalTable
}

// LifecycleTable persists one LifecycleRecord per user.
type LifecycleTable interface {
	// Get retrieves the record for a user.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, userID string) (*LifecycleRecord, error)

	// Create inserts a new record at version 1.
	// Returns ErrAlreadyExists if the user already has one.
	Create(ctx context.Context, rec *LifecycleRecord) error

	// Update replaces the record if rec.Version matches the stored
	// version, then increments rec.Version. Returns ErrConflict on a
	// version mismatch and ErrNotFound if the record is gone.
	Update(ctx context.Context, rec *LifecycleRecord) error

	// List returns every lifecycle record, ordered by user ID.
	List(ctx context.Context) ([]*LifecycleRecord, error)
}

// ActivationTable persists one ActivationRecord per user.
type ActivationTable interface {
	Get(ctx context.Context, userID string) (*ActivationRecord, error)
	Create(ctx context.Context, rec *ActivationRecord) error
	Update(ctx context.Context, rec *ActivationRecord) error
}

// SignalTable stores the upstream engagement signal feed, one row per
// user, written by upstream systems and read by the engine.
type SignalTable interface {
	// Get returns the signal row for a user. The bool reports whether a
	// row exists; absence is not an error, the zero value applies.
	Get(ctx context.Context, userID string) (*EngagementSignal, bool, error)

	// Put inserts or fully replaces the signal row for sig.UserID.
	Put(ctx context.Context, sig *EngagementSignal) error
}
