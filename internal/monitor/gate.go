package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"
)

type GateState string

const (
	StateUninitialized GateState = "uninitialized"
	StateInitializing  GateState = "initializing"
	StateReady         GateState = "ready"
	StateDegraded      GateState = "degraded"
)

// Gate tracks whether the durable store is reachable and initialized.
// Every store-dependent operation checks it synchronously before
// proceeding; nothing blocks on readiness without a deadline.
type Gate struct {
	database *gorm.DB

	mu      sync.Mutex
	state   GateState
	lastErr error
	ready   chan struct{}
}

func NewGate(database *gorm.DB) *Gate {
	return &Gate{
		database: database,
		state:    StateUninitialized,
		ready:    make(chan struct{}),
	}
}

// Initialize drives uninitialized (or degraded) → initializing →
// ready. The local cache step is best-effort; the round-trip query is
// not. Any failure lands in degraded, from which Initialize may be
// called again.
func (gate *Gate) Initialize(ctx context.Context) error {
	gate.mu.Lock()
	if gate.state == StateReady {
		gate.mu.Unlock()
		return nil
	}
	gate.state = StateInitializing
	gate.mu.Unlock()

	if gate.database == nil {
		return gate.degrade(errors.New("store client not constructed"))
	}

	// Local durability is nice to have, not required.
	if err := gate.database.WithContext(ctx).Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		log.Printf("gate: enabling local durability failed, continuing: %v", err)
	}

	if err := gate.roundTrip(ctx); err != nil {
		return gate.degrade(fmt.Errorf("verify store connection: %w", err))
	}

	gate.mu.Lock()
	gate.state = StateReady
	gate.lastErr = nil
	select {
	case <-gate.ready:
	default:
		close(gate.ready)
	}
	gate.mu.Unlock()

	return nil
}

// Verify re-runs the trivial round-trip. A failure degrades the gate
// from whatever state it was in.
func (gate *Gate) Verify(ctx context.Context) error {
	if gate.database == nil {
		return gate.degrade(errors.New("store client not constructed"))
	}
	if err := gate.roundTrip(ctx); err != nil {
		return gate.degrade(fmt.Errorf("verify store connection: %w", err))
	}
	return nil
}

func (gate *Gate) Ready() bool {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.state == StateReady
}

func (gate *Gate) State() GateState {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.state
}

func (gate *Gate) LastError() error {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.lastErr
}

// WaitReady blocks until the gate reaches ready, the timeout elapses,
// or the context is cancelled. The timeout path surfaces
// ErrStoreNotReady rather than proceeding optimistically.
func (gate *Gate) WaitReady(ctx context.Context, timeout time.Duration) error {
	if gate.Ready() {
		return nil
	}

	gate.mu.Lock()
	ready := gate.ready
	gate.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ready:
		if !gate.Ready() {
			return fmt.Errorf("%w: degraded after initialization", ErrStoreNotReady)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: readiness wait timed out after %s", ErrStoreNotReady, timeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrStoreNotReady, ctx.Err())
	}
}

func (gate *Gate) roundTrip(ctx context.Context) error {
	var one int
	return gate.database.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

func (gate *Gate) degrade(err error) error {
	gate.mu.Lock()
	wasReady := gate.state == StateReady
	gate.state = StateDegraded
	gate.lastErr = err
	if wasReady {
		// A later Initialize needs a fresh readiness signal.
		gate.ready = make(chan struct{})
	}
	gate.mu.Unlock()

	log.Printf("gate: degraded: %v", err)
	return err
}
