package blog

import (
	"encoding/json"
	"fmt"
	"sync"

	"blogctl/internal/credstore"
	"blogctl/internal/model"
)

// Session is the current authenticated identity. Authenticated is true
// exactly when a token is held; User may be nil even while authenticated if
// the stored user entry was missing or unreadable.
type Session struct {
	User          *model.User
	Token         string
	Authenticated bool
}

// SessionStore is the single source of truth for "who is logged in". It is
// shared by every view of the application and converges with sibling
// instances (other processes on the same state directory) through a Bus.
//
// The store never reads durable storage at construction: Hydrate must be
// called once when the application is ready, so construction order cannot
// observe half-initialized storage.
type SessionStore struct {
	store  credstore.Store
	bus    credstore.Bus
	logger Logger

	// id distinguishes this instance's bus publications from its siblings'.
	id string

	mu        sync.Mutex
	cur       Session
	hydrated  bool
	subs      map[int]func(Session)
	nextSub   int
	cancelBus func()
}

// NewSessionStore creates a SessionStore over the given durable storage and
// sync bus. The store subscribes to the bus immediately so that sibling
// changes arriving before Hydrate are not lost.
func NewSessionStore(store credstore.Store, bus credstore.Bus, logger Logger, idgen IDGenerator) *SessionStore {
	s := &SessionStore{
		store:  store,
		bus:    bus,
		logger: logger,
		id:     idgen.New(),
		subs:   make(map[int]func(Session)),
	}
	s.cancelBus = bus.Subscribe(s.onBusEvent)
	return s
}

// Hydrate loads the persisted session into memory. It runs at most once;
// later calls are no-ops. Unreadable credentials fail closed: the store
// stays logged out rather than surfacing an error to every view.
func (s *SessionStore) Hydrate() {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return
	}
	s.hydrated = true

	creds, err := s.store.Load()
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("session restore failed, treating as logged out", "error", err)
		return
	}

	s.cur = sessionFromCreds(creds)
	cur := s.cur
	fns := s.snapshotSubs()
	s.mu.Unlock()

	if cur.Authenticated {
		s.logger.Debug("session restored", "authenticated", true)
	}
	notify(fns, cur)
}

// Login records a confirmed authentication. The caller is responsible for
// invoking this only after the API has accepted the credentials; no token
// shape validation happens here.
func (s *SessionStore) Login(user model.User, token string) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("serializing user: %w", err)
	}
	creds := credstore.Credentials{Token: token, User: userJSON}

	if err := s.store.Save(creds); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	s.mu.Lock()
	u := user
	s.cur = Session{User: &u, Token: token, Authenticated: true}
	cur := s.cur
	fns := s.snapshotSubs()
	s.mu.Unlock()

	s.bus.Publish(credstore.Event{Origin: s.id, Creds: creds})
	s.logger.Info("logged in", "user", user.Email)
	notify(fns, cur)
	return nil
}

// Logout clears the session. Safe to call when no session exists.
func (s *SessionStore) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clearing persisted session: %w", err)
	}

	s.mu.Lock()
	wasAuthenticated := s.cur.Authenticated
	s.cur = Session{}
	cur := s.cur
	fns := s.snapshotSubs()
	s.mu.Unlock()

	s.bus.Publish(credstore.Event{Origin: s.id, Creds: credstore.Credentials{}})
	if wasAuthenticated {
		s.logger.Info("logged out")
	}
	notify(fns, cur)
	return nil
}

// Current returns a snapshot of the session.
func (s *SessionStore) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Token returns the current bearer token, or "" when logged out.
// Satisfies the API client's token source.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.Token
}

// IsAdmin reports whether the current user holds the ADMIN role.
// Always false with no user. This is a UX affordance only; the server
// independently authorizes every request.
func (s *SessionStore) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.User != nil && s.cur.User.Role == model.RoleAdmin
}

// Subscribe registers fn to run on every session change, returning a cancel
// func. fn is called without internal locks held and may use the store.
func (s *SessionStore) Subscribe(fn func(Session)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close detaches the store from its bus.
func (s *SessionStore) Close() {
	if s.cancelBus != nil {
		s.cancelBus()
	}
}

// onBusEvent applies a credential change made by a sibling instance. The
// in-memory session converges without a server round trip. Events this
// instance published itself are ignored.
func (s *SessionStore) onBusEvent(e credstore.Event) {
	if e.Origin == s.id {
		return
	}

	s.mu.Lock()
	s.cur = sessionFromCreds(e.Creds)
	cur := s.cur
	fns := s.snapshotSubs()
	s.mu.Unlock()

	s.logger.Debug("session synchronized from sibling", "authenticated", cur.Authenticated)
	notify(fns, cur)
}

// sessionFromCreds derives the in-memory session from stored credentials.
// No token means logged out no matter what the user entry holds. A token
// with a malformed user entry keeps the token and drops the user.
func sessionFromCreds(c credstore.Credentials) Session {
	if c.Token == "" {
		return Session{}
	}
	sess := Session{Token: c.Token, Authenticated: true}
	if len(c.User) > 0 {
		var u model.User
		if err := json.Unmarshal(c.User, &u); err == nil {
			sess.User = &u
		}
	}
	return sess
}

// snapshotSubs copies the subscriber list; callers must hold s.mu.
func (s *SessionStore) snapshotSubs() []func(Session) {
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(Session), sess Session) {
	for _, fn := range fns {
		fn(sess)
	}
}
