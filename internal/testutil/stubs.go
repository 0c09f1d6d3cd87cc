package testutil

import (
	"fmt"
	"sync"
	"time"
)

// StubIDGenerator returns sequential IDs: "id-1", "id-2", etc.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// FakeScheduler captures scheduled calls so tests control when the quiet
// period elapses. Scheduling replaces any pending call, matching the
// debounce contract.
type FakeScheduler struct {
	mu      sync.Mutex
	pending func()
	delay   time.Duration
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

func (s *FakeScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = fn
	s.delay = d
}

func (s *FakeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	s.delay = 0
}

// Fire runs the pending call, simulating the quiet period elapsing.
// Reports whether a call was pending.
func (s *FakeScheduler) Fire() bool {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a call is waiting for its quiet period.
func (s *FakeScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// LastDelay returns the most recently scheduled quiet period.
func (s *FakeScheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}
