package monitor

import (
	"context"
	"log"
	"sync"
	"time"
)

// watcherRegistry tracks the cancel function for each condition's
// watch loop so a loop can be torn down when its condition goes away.
type watcherRegistry struct {
	mu      sync.Mutex
	cancels map[uint]context.CancelFunc
}

func newWatcherRegistry() watcherRegistry {
	return watcherRegistry{cancels: make(map[uint]context.CancelFunc)}
}

func (registry *watcherRegistry) register(conditionID uint, cancel context.CancelFunc) {
	registry.mu.Lock()
	previous, exists := registry.cancels[conditionID]
	registry.cancels[conditionID] = cancel
	registry.mu.Unlock()
	if exists {
		previous()
	}
}

func (registry *watcherRegistry) remove(conditionID uint) {
	registry.mu.Lock()
	cancel, exists := registry.cancels[conditionID]
	delete(registry.cancels, conditionID)
	registry.mu.Unlock()
	if exists {
		cancel()
	}
}

func (registry *watcherRegistry) cancelAll() {
	registry.mu.Lock()
	cancels := registry.cancels
	registry.cancels = make(map[uint]context.CancelFunc)
	registry.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// watchCondition starts a per-condition loop that polls for the
// record's continued existence. Each condition gets its own loop, so
// deleting one never disturbs another's schedule.
func (coordinator *Coordinator) watchCondition(conditionID uint) {
	ctx, cancel := context.WithCancel(coordinator.lifecycle)
	coordinator.watchers.register(conditionID, cancel)

	go coordinator.runWatch(ctx, conditionID)
}

func (coordinator *Coordinator) unwatchCondition(conditionID uint) {
	coordinator.watchers.remove(conditionID)
}

func (coordinator *Coordinator) runWatch(ctx context.Context, conditionID uint) {
	ticker := time.NewTicker(coordinator.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !coordinator.gate.Ready() {
				continue
			}
			exists, err := coordinator.conditions.ExistsByID(ctx, conditionID)
			if err != nil {
				log.Printf("monitor: existence check for condition %d failed: %v", conditionID, err)
				continue
			}
			if !exists {
				coordinator.unwatchCondition(conditionID)
				coordinator.bus.dropCondition(conditionID)
				return
			}
		}
	}
}
