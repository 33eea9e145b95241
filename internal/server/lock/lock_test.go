package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_MutualExclusion(t *testing.T) {
	r := NewRegistry(time.Minute, time.Minute)
	defer r.Stop()
	id := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := r.Lock(id)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, counter)
}

func TestRegistry_IndependentJourneys(t *testing.T) {
	r := NewRegistry(time.Minute, time.Minute)
	defer r.Stop()

	unlockA := r.Lock(uuid.New())
	defer unlockA()

	// A second journey's lock must not be blocked by the first.
	done := make(chan struct{})
	go func() {
		unlockB := r.Lock(uuid.New())
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different journey blocked")
	}
}

func TestRegistry_SweepEvictsIdleEntries(t *testing.T) {
	r := NewRegistry(10*time.Millisecond, time.Hour)
	defer r.Stop()

	id := uuid.New()
	unlock := r.Lock(id)
	unlock()

	time.Sleep(20 * time.Millisecond)
	r.sweep()

	r.mu.Lock()
	_, ok := r.entries[id]
	r.mu.Unlock()
	assert.False(t, ok)
}

func TestRegistry_SweepSkipsHeldLocks(t *testing.T) {
	r := NewRegistry(10*time.Millisecond, time.Hour)
	defer r.Stop()

	id := uuid.New()
	unlock := r.Lock(id)
	defer unlock()

	time.Sleep(20 * time.Millisecond)
	r.sweep()

	r.mu.Lock()
	_, ok := r.entries[id]
	r.mu.Unlock()
	require.True(t, ok, "a held lock must survive the sweep")
}
