package monitor

import (
	"sync"
	"time"
)

type EventKind string

const (
	EventConditionCreated EventKind = "condition.created"
	EventCheckInRecorded  EventKind = "condition.check_in"
	EventStatusChanged    EventKind = "condition.status_changed"
	EventImageUpdated     EventKind = "condition.image_updated"
	EventConditionDeleted EventKind = "condition.deleted"
)

// ConditionEvent is a live update on a monitored condition, published
// by the coordinator's write paths for UI reactivity.
type ConditionEvent struct {
	Kind        EventKind `json:"kind"`
	ConditionID uint      `json:"condition_id"`
	At          time.Time `json:"at"`
}

type conditionEventBus struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan ConditionEvent]struct{}
}

func newConditionEventBus() *conditionEventBus {
	return &conditionEventBus{subscribers: make(map[uint]map[chan ConditionEvent]struct{})}
}

func (bus *conditionEventBus) subscribe(conditionID uint) (<-chan ConditionEvent, func()) {
	events := make(chan ConditionEvent, 8)

	bus.mu.Lock()
	if bus.subscribers[conditionID] == nil {
		bus.subscribers[conditionID] = make(map[chan ConditionEvent]struct{})
	}
	bus.subscribers[conditionID][events] = struct{}{}
	bus.mu.Unlock()

	cancel := func() {
		bus.mu.Lock()
		if set, ok := bus.subscribers[conditionID]; ok {
			if _, subscribed := set[events]; subscribed {
				delete(set, events)
				close(events)
				if len(set) == 0 {
					delete(bus.subscribers, conditionID)
				}
			}
		}
		bus.mu.Unlock()
	}
	return events, cancel
}

// publish delivers without blocking; a subscriber that stopped
// draining loses events rather than stalling a write path.
func (bus *conditionEventBus) publish(event ConditionEvent) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for subscriber := range bus.subscribers[event.ConditionID] {
		select {
		case subscriber <- event:
		default:
		}
	}
}

// dropCondition closes every subscription for a condition that no
// longer exists.
func (bus *conditionEventBus) dropCondition(conditionID uint) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for subscriber := range bus.subscribers[conditionID] {
		close(subscriber)
	}
	delete(bus.subscribers, conditionID)
}
