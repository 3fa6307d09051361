// Package engine implements the user-lifecycle orchestration core: the
// lifecycle state machine, churn risk scorer, personalization adapter,
// activation path assigner, milestone tracker, and nudge generator.
//
// Every operation is a short, synchronous read-modify-write against the
// store. Mutations for one user are serialized through a per-user lock;
// operations across different users share no mutable state and run fully
// in parallel. Either the whole record update commits or nothing does.
// See docs/ARCHITECTURE.md § Engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/waypoint/internal/engine/rules"
	"github.com/mesh-intelligence/waypoint/pkg/types"
)

// DefaultNudgeCooldown is the minimum gap between non-empty nudge
// emissions for one user.
const DefaultNudgeCooldown = 6 * time.Hour

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	// Rules is the ordered nudge rule table. Nil means rules.Default().
	Rules rules.Table

	// NudgeCooldown overrides DefaultNudgeCooldown when positive.
	NudgeCooldown time.Duration

	// Logger receives structured operation logs. Nil means zap.NewNop().
	Logger *zap.Logger

	// Now overrides the clock, for deterministic tests.
	Now func() time.Time
}

// Engine composes the store, the rule table, and a clock into the
// lifecycle orchestration operations.
type Engine struct {
	store    types.Store
	rules    rules.Table
	cooldown time.Duration
	log      *zap.Logger
	now      func() time.Time

	// locks holds one *sync.Mutex per user ID seen by this process,
	// serializing read-modify-write cycles per user.
	locks sync.Map
}

// New creates an Engine on top of an attached store.
func New(store types.Store, opts Options) *Engine {
	e := &Engine{
		store:    store,
		rules:    opts.Rules,
		cooldown: opts.NudgeCooldown,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if e.rules == nil {
		e.rules = rules.Default()
	}
	if e.cooldown <= 0 {
		e.cooldown = DefaultNudgeCooldown
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// userLock returns the mutex serializing mutations for one user.
func (e *Engine) userLock(userID string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// GetOrCreateLifecycle returns the user's lifecycle record, creating it in
// the initial state on first touch. The created flag distinguishes a first
// touch from a plain read.
func (e *Engine) GetOrCreateLifecycle(ctx context.Context, userID string) (*types.LifecycleRecord, bool, error) {
	if userID == "" {
		return nil, false, types.ErrInvalidID
	}
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := e.store.Lifecycles().Get(ctx, userID)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, false, fmt.Errorf("reading lifecycle: %w", err)
	}

	rec = types.NewLifecycleRecord(userID, e.now())
	if err := e.store.Lifecycles().Create(ctx, rec); err != nil {
		return nil, false, fmt.Errorf("creating lifecycle: %w", err)
	}
	e.log.Info("lifecycle record created", zap.String("user_id", userID))
	return rec, true, nil
}

// mutateLifecycle runs a read-modify-write cycle on the user's lifecycle
// record under the per-user lock. fn mutates the record in place; the
// update commits as a whole or not at all.
func (e *Engine) mutateLifecycle(ctx context.Context, userID string, fn func(*types.LifecycleRecord) error) (*types.LifecycleRecord, error) {
	if userID == "" {
		return nil, types.ErrInvalidID
	}
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := e.store.Lifecycles().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	rec.UpdatedAt = e.now()
	if err := e.store.Lifecycles().Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("writing lifecycle: %w", err)
	}
	return rec, nil
}

// mutateActivation is mutateLifecycle for the activation record.
func (e *Engine) mutateActivation(ctx context.Context, userID string, fn func(*types.ActivationRecord) error) (*types.ActivationRecord, error) {
	if userID == "" {
		return nil, types.ErrInvalidID
	}
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := e.store.Activations().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	rec.UpdatedAt = e.now()
	if err := e.store.Activations().Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("writing activation: %w", err)
	}
	return rec, nil
}

// PutSignals upserts the upstream engagement signal row for a user.
// Signals are owned by upstream systems; this is their write path into
// the store.
func (e *Engine) PutSignals(ctx context.Context, sig *types.EngagementSignal) error {
	if sig == nil || sig.UserID == "" {
		return types.ErrInvalidID
	}
	if sig.UpdatedAt.IsZero() {
		sig.UpdatedAt = e.now()
	}
	if err := e.store.Signals().Put(ctx, sig); err != nil {
		return err
	}
	e.log.Debug("signals updated", zap.String("user_id", sig.UserID))
	return nil
}

// signalFor reads the signal row for a user, defaulting to the zero value
// when upstream has not reported anything yet.
func (e *Engine) signalFor(ctx context.Context, userID string) (*types.EngagementSignal, error) {
	sig, _, err := e.store.Signals().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reading signals: %w", err)
	}
	return sig, nil
}
