package blog

import (
	"encoding/json"
	"errors"
	"testing"

	"blogctl/internal/credstore"
	"blogctl/internal/model"
	"blogctl/internal/testutil"
)

func testUser(role string) model.User {
	return model.User{ID: "u1", Email: "alice@example.com", Name: "Alice", Role: role}
}

func newTestSessionStore(t *testing.T) (*SessionStore, credstore.Store, *credstore.MemoryBus) {
	t.Helper()
	store := testutil.NewTestStore(t)
	bus := testutil.NewTestBus(t)
	s := NewSessionStore(store, bus, NewNopLogger(), testutil.NewStubIDGenerator())
	t.Cleanup(s.Close)
	return s, store, bus
}

func TestSessionStoreLoginLogout(t *testing.T) {
	t.Run("login persists and exposes the session", func(t *testing.T) {
		s, store, _ := newTestSessionStore(t)
		s.Hydrate()

		if err := s.Login(testUser(model.RoleUser), "tok-123"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		sess := s.Current()
		if !sess.Authenticated {
			t.Error("Authenticated = false, want true")
		}
		if sess.User == nil || sess.User.Email != "alice@example.com" {
			t.Errorf("User = %+v, want alice@example.com", sess.User)
		}
		if got := s.Token(); got != "tok-123" {
			t.Errorf("Token() = %q, want %q", got, "tok-123")
		}

		creds, err := store.Load()
		if err != nil {
			t.Fatalf("store.Load() error = %v", err)
		}
		if creds.Token != "tok-123" {
			t.Errorf("persisted token = %q, want %q", creds.Token, "tok-123")
		}
		if len(creds.User) == 0 {
			t.Error("persisted user is empty")
		}
	})

	t.Run("logout clears memory and storage", func(t *testing.T) {
		s, store, _ := newTestSessionStore(t)
		s.Hydrate()
		if err := s.Login(testUser(model.RoleUser), "tok-123"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		if err := s.Logout(); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}

		if sess := s.Current(); sess.Authenticated || sess.User != nil || sess.Token != "" {
			t.Errorf("Current() after logout = %+v, want zero session", sess)
		}
		creds, err := store.Load()
		if err != nil {
			t.Fatalf("store.Load() error = %v", err)
		}
		if !creds.IsZero() {
			t.Errorf("persisted credentials = %+v, want empty", creds)
		}
	})

	t.Run("logout without a session is a no-op", func(t *testing.T) {
		s, _, _ := newTestSessionStore(t)
		s.Hydrate()

		if err := s.Logout(); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
	})

	t.Run("subscribers see every change", func(t *testing.T) {
		s, _, _ := newTestSessionStore(t)
		s.Hydrate()

		var seen []bool
		cancel := s.Subscribe(func(sess Session) {
			seen = append(seen, sess.Authenticated)
		})
		defer cancel()

		s.Login(testUser(model.RoleUser), "tok-123")
		s.Logout()

		want := []bool{true, false}
		if len(seen) != len(want) {
			t.Fatalf("notifications = %v, want %v", seen, want)
		}
		for i := range want {
			if seen[i] != want[i] {
				t.Errorf("notification %d = %v, want %v", i, seen[i], want[i])
			}
		}
	})
}

func TestSessionStoreIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
		want bool
	}{
		{"admin user", &model.User{ID: "u1", Role: model.RoleAdmin}, true},
		{"regular user", &model.User{ID: "u1", Role: model.RoleUser}, false},
		{"no user", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestSessionStore(t)
			s.Hydrate()
			if tt.user != nil {
				if err := s.Login(*tt.user, "tok"); err != nil {
					t.Fatalf("Login() error = %v", err)
				}
			}
			if got := s.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionStoreHydrate(t *testing.T) {
	t.Run("restores a persisted session", func(t *testing.T) {
		store := testutil.NewTestStore(t)
		userJSON, _ := json.Marshal(testUser(model.RoleAdmin))
		if err := store.Save(credstore.Credentials{Token: "tok-9", User: userJSON}); err != nil {
			t.Fatalf("seeding store: %v", err)
		}

		s := NewSessionStore(store, credstore.NewNopBus(), NewNopLogger(), testutil.NewStubIDGenerator())
		defer s.Close()
		s.Hydrate()

		sess := s.Current()
		if !sess.Authenticated || sess.Token != "tok-9" {
			t.Errorf("Current() = %+v, want authenticated with tok-9", sess)
		}
		if sess.User == nil || sess.User.Role != model.RoleAdmin {
			t.Errorf("User = %+v, want admin", sess.User)
		}
	})

	t.Run("malformed user keeps the token and drops the user", func(t *testing.T) {
		store := testutil.NewTestStore(t)
		if err := store.Save(credstore.Credentials{Token: "tok-9", User: []byte("{broken")}); err != nil {
			t.Fatalf("seeding store: %v", err)
		}

		s := NewSessionStore(store, credstore.NewNopBus(), NewNopLogger(), testutil.NewStubIDGenerator())
		defer s.Close()
		s.Hydrate()

		sess := s.Current()
		if !sess.Authenticated || sess.Token != "tok-9" {
			t.Errorf("Current() = %+v, want authenticated with tok-9", sess)
		}
		if sess.User != nil {
			t.Errorf("User = %+v, want nil", sess.User)
		}
	})

	t.Run("user without a token means logged out", func(t *testing.T) {
		store := testutil.NewTestStore(t)
		userJSON, _ := json.Marshal(testUser(model.RoleUser))
		if err := store.Save(credstore.Credentials{User: userJSON}); err != nil {
			t.Fatalf("seeding store: %v", err)
		}

		s := NewSessionStore(store, credstore.NewNopBus(), NewNopLogger(), testutil.NewStubIDGenerator())
		defer s.Close()
		s.Hydrate()

		if sess := s.Current(); sess.Authenticated {
			t.Errorf("Current() = %+v, want logged out", sess)
		}
	})

	t.Run("storage failure fails closed", func(t *testing.T) {
		s := NewSessionStore(&failingStore{}, credstore.NewNopBus(), NewNopLogger(), testutil.NewStubIDGenerator())
		defer s.Close()
		s.Hydrate()

		if sess := s.Current(); sess.Authenticated {
			t.Errorf("Current() = %+v, want logged out", sess)
		}
	})

	t.Run("runs at most once", func(t *testing.T) {
		s, store, _ := newTestSessionStore(t)
		s.Hydrate()

		// A change written behind the store's back is not picked up by a
		// second Hydrate; only the bus delivers later changes.
		userJSON, _ := json.Marshal(testUser(model.RoleUser))
		store.Save(credstore.Credentials{Token: "late", User: userJSON})
		s.Hydrate()

		if sess := s.Current(); sess.Authenticated {
			t.Errorf("Current() = %+v, want logged out", sess)
		}
	})
}

func TestSessionStoreSync(t *testing.T) {
	newPair := func(t *testing.T) (*SessionStore, *SessionStore) {
		t.Helper()
		store := testutil.NewTestStore(t)
		bus := testutil.NewTestBus(t)
		idgen := testutil.NewStubIDGenerator()
		a := NewSessionStore(store, bus, NewNopLogger(), idgen)
		b := NewSessionStore(store, bus, NewNopLogger(), idgen)
		t.Cleanup(a.Close)
		t.Cleanup(b.Close)
		a.Hydrate()
		b.Hydrate()
		return a, b
	}

	t.Run("login in one instance reaches the other", func(t *testing.T) {
		a, b := newPair(t)

		if err := a.Login(testUser(model.RoleUser), "tok-sync"); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		sess := b.Current()
		if !sess.Authenticated || sess.Token != "tok-sync" {
			t.Errorf("sibling Current() = %+v, want authenticated with tok-sync", sess)
		}
		if sess.User == nil || sess.User.Email != "alice@example.com" {
			t.Errorf("sibling User = %+v, want alice@example.com", sess.User)
		}
	})

	t.Run("logout in one instance logs out the other", func(t *testing.T) {
		a, b := newPair(t)
		a.Login(testUser(model.RoleUser), "tok-sync")

		if err := b.Logout(); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}

		if sess := a.Current(); sess.Authenticated {
			t.Errorf("sibling Current() = %+v, want logged out", sess)
		}
	})

	t.Run("own events are not applied twice", func(t *testing.T) {
		a, _ := newPair(t)

		var notifications int
		cancel := a.Subscribe(func(Session) { notifications++ })
		defer cancel()

		a.Login(testUser(model.RoleUser), "tok-sync")

		if notifications != 1 {
			t.Errorf("notifications = %d, want 1", notifications)
		}
	})
}

// failingStore errors on every read.
type failingStore struct{}

func (failingStore) Load() (credstore.Credentials, error) {
	return credstore.Credentials{}, errors.New("disk on fire")
}
func (failingStore) Save(credstore.Credentials) error { return nil }
func (failingStore) Clear() error                     { return nil }
func (failingStore) Close() error                     { return nil }

var _ credstore.Store = failingStore{}
