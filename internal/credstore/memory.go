package credstore

import "sync"

// MemoryStore keeps credentials in process memory. Used in tests and as the
// backend for throwaway sessions.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, nil
}

func (s *MemoryStore) Save(c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = c
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// MemoryBus fans events out to all subscribers in the same process.
// Co-resident session stores sharing one MemoryBus behave like same-origin
// browser tabs sharing a storage event channel.
type MemoryBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
	closed bool
}

var _ Bus = (*MemoryBus)(nil)

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]func(Event))}
}

func (b *MemoryBus) Publish(e Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	// Deliver outside the lock so a subscriber may publish or subscribe.
	for _, fn := range fns {
		fn(e)
	}
}

func (b *MemoryBus) Subscribe(fn func(Event)) func() {
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

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(Event){}
	return nil
}

// NopBus discards all events. For single-instance deployments where no
// cross-instance synchronization is wanted.
type NopBus struct{}

var _ Bus = (*NopBus)(nil)

func NewNopBus() *NopBus { return &NopBus{} }

func (*NopBus) Publish(Event) {}

func (*NopBus) Subscribe(func(Event)) (cancel func()) { return func() {} }

func (*NopBus) Close() error { return nil }
