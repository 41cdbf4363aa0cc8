// Package events fans ledger event strings out to registered subscribers.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// messageBuffer is the number of events a slow subscriber can fall
// behind before Send starts dropping events for it.
const messageBuffer = 100

// Events maintains the set of subscribers keyed by a unique id.
type Events struct {
	mu      sync.RWMutex
	subs    map[string]chan string
	closed  bool
	dropped atomic.Uint64
}

// New constructs an Events value ready for subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
	}
}

// Shutdown closes every subscriber channel. Acquire calls made after
// Shutdown receive an already closed channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		close(ch)
	}
	evt.closed = true
}

// Acquire registers the id and returns the channel its events arrive on.
// Acquiring an id twice returns the same channel.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if evt.closed {
		ch := make(chan string)
		close(ch)
		return ch
	}

	if ch, exists := evt.subs[id]; exists {
		return ch
	}

	ch := make(chan string, messageBuffer)
	evt.subs[id] = ch
	return ch
}

// Release unregisters the id and closes its channel.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subs, id)
	close(ch)
	return nil
}

// Send delivers the event to every subscriber without blocking. Events
// for a subscriber whose buffer is full are dropped and counted.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subs {
		select {
		case ch <- s:
		default:
			evt.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of registered subscribers.
func (evt *Events) Subscribers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Dropped returns the number of events dropped for slow subscribers.
func (evt *Events) Dropped() uint64 {
	return evt.dropped.Load()
}
