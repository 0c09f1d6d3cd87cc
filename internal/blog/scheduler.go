package blog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Scheduler defers a single call by a quiet period. Scheduling again before
// the pending call fires replaces it, which is exactly the debounce contract:
// only the last scheduled call within a quiet window runs.
type Scheduler interface {
	// Schedule arranges for fn to run after d, cancelling any pending call.
	Schedule(d time.Duration, fn func())

	// Stop cancels any pending call.
	Stop()
}

// TimerScheduler implements Scheduler on time.AfterFunc.
type TimerScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
}

func NewTimerScheduler() *TimerScheduler { return &TimerScheduler{} }

func (s *TimerScheduler) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, fn)
}

func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
