package credstore

import (
	"bytes"
	"sync"
	"time"
)

// PollBus bridges credential changes between processes by polling the
// underlying store. Another process writing the store shows up here as an
// Event with an empty Origin, the same way a browser tab observes storage
// writes made by its siblings. In-process publishes are fanned out
// immediately without waiting for a poll cycle.
type PollBus struct {
	store    Store
	interval time.Duration

	mu     sync.Mutex
	subs   map[int]func(Event)
	nextID int
	last   Credentials
	primed bool

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

var _ Bus = (*PollBus)(nil)

// NewPollBus creates a PollBus over store and starts its poll loop.
func NewPollBus(store Store, interval time.Duration) *PollBus {
	if interval <= 0 {
		interval = time.Second
	}
	b := &PollBus{
		store:    store,
		interval: interval,
		subs:     make(map[int]func(Event)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *PollBus) loop() {
	defer close(b.done)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			b.poll()
		}
	}
}

// poll loads the store and publishes an external Event if the stored
// credentials changed since the last observation.
func (b *PollBus) poll() {
	creds, err := b.store.Load()
	if err != nil {
		// A transient read failure must not tear the session down;
		// the next poll retries.
		return
	}

	b.mu.Lock()
	if !b.primed {
		b.primed = true
		b.last = creds
		b.mu.Unlock()
		return
	}
	if credsEqual(b.last, creds) {
		b.mu.Unlock()
		return
	}
	b.last = creds
	fns := b.snapshotSubs()
	b.mu.Unlock()

	for _, fn := range fns {
		fn(Event{Creds: creds})
	}
}

func (b *PollBus) Publish(e Event) {
	b.mu.Lock()
	// Remember what we published so the poll loop does not re-announce
	// our own write as an external change.
	b.last = e.Creds
	b.primed = true
	fns := b.snapshotSubs()
	b.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

func (b *PollBus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *PollBus) Close() error {
	b.once.Do(func() { close(b.stop) })
	<-b.done
	return nil
}

// snapshotSubs copies the subscriber list; callers must hold b.mu.
func (b *PollBus) snapshotSubs() []func(Event) {
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	return fns
}

func credsEqual(a, b Credentials) bool {
	return a.Token == b.Token && bytes.Equal(a.User, b.User)
}
