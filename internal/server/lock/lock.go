// Package lock provides per-journey write serialization. The journey core
// assumes a single writer per journey ID: a journey must never be loaded,
// mutated by two concurrent commands, and both saved, or a cascade could be
// silently dropped. The HTTP layer acquires the journey's lock around each
// load-mutate-save round trip.
package lock

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// entry pairs a mutex with its last acquisition time so idle entries can be
// evicted.
type entry struct {
	mu         sync.Mutex
	lastAccess time.Time
}

// Registry hands out one mutex per journey ID and evicts entries that have
// been idle past the configured TTL. Eviction is safe because an idle entry
// is by definition unlocked; a later request simply mints a fresh mutex.
type Registry struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*entry
	idleTTL     time.Duration
	cleanupStop chan struct{}
}

// NewRegistry creates a registry whose idle entries are evicted after
// idleTTL, scanning at the given interval. Pass zero values for defaults
// (15 minute TTL, 5 minute sweep).
func NewRegistry(idleTTL, cleanupInterval time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	r := &Registry{
		entries:     make(map[uuid.UUID]*entry),
		idleTTL:     idleTTL,
		cleanupStop: make(chan struct{}),
	}

	ticker := time.NewTicker(cleanupInterval)
	go func() {
		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-r.cleanupStop:
				ticker.Stop()
				return
			}
		}
	}()

	return r
}

// Lock acquires the mutex for a journey, blocking until it is available.
// The returned func releases it.
func (r *Registry) Lock(journeyID uuid.UUID) (unlock func()) {
	r.mu.Lock()
	e, ok := r.entries[journeyID]
	if !ok {
		e = &entry{}
		r.entries[journeyID] = e
	}
	e.lastAccess = time.Now()
	r.mu.Unlock()

	e.mu.Lock()
	return e.mu.Unlock
}

// Stop terminates the cleanup goroutine.
func (r *Registry) Stop() {
	close(r.cleanupStop)
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.idleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		if e.lastAccess.Before(cutoff) && e.mu.TryLock() {
			e.mu.Unlock()
			delete(r.entries, id)
		}
	}
}
