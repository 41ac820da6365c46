package orchestrator

import (
	"log"
	"sync/atomic"
	"time"
)

// EventEmitter fans orchestrator events out to a single subscriber channel.
// Delivery must never stall the scheduling path: a full buffer gets a short
// grace period, after which the event is dropped and counted.
type EventEmitter struct {
	events       chan Event
	droppedCount atomic.Uint64
}

// NewEventEmitter creates an emitter with the given channel buffer size.
func NewEventEmitter(bufferSize int) *EventEmitter {
	return &EventEmitter{
		events: make(chan Event, bufferSize),
	}
}

// Emit delivers the event to the subscriber channel, waiting up to 100ms
// when the buffer is full before dropping it.
func (e *EventEmitter) Emit(event Event) {
	select {
	case e.events <- event:
		return
	default:
	}

	select {
	case e.events <- event:
		return
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 { // throttle the drop warnings
			log.Printf("[orchestrator] WARNING: event channel full, dropped %s event (total dropped: %d)", event.Type, count)
		}
	}
}

// DroppedCount returns how many events have been dropped so far.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns the read-only subscriber channel.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the subscriber channel. Called once when the orchestrator
// shuts down; Emit must not be called afterwards.
func (e *EventEmitter) Close() {
	close(e.events)
}
