// Package credstore persists the client's session credentials (bearer token
// and serialized user) in durable local storage, and carries change
// notifications between co-resident session stores so that every instance
// converges on the same session without re-authenticating.
package credstore

// Keys under which the two durable entries are stored, matching the wire
// contract of the API client storage: a raw bearer token string and a
// JSON-serialized user object.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Credentials is the durable session state. A zero value means logged out.
type Credentials struct {
	Token string
	User  []byte // JSON-serialized user object; may be empty even with a token
}

// IsZero reports whether no credentials are stored.
func (c Credentials) IsZero() bool {
	return c.Token == "" && len(c.User) == 0
}

// Store is a durable credential backend. Implementations must treat a
// missing entry as an empty value, not an error, so Load on a fresh store
// returns zero Credentials.
type Store interface {
	// Load reads the stored credentials. A store that has never been
	// written (or has been cleared) returns zero Credentials and nil error.
	Load() (Credentials, error)

	// Save persists the credentials, replacing any previous value.
	Save(c Credentials) error

	// Clear removes both entries. Clearing an empty store is a no-op.
	Clear() error

	// Close releases backend resources.
	Close() error
}

// Event announces a credential change. Origin identifies the session store
// instance that produced the change so it can ignore its own publications;
// events originating outside the process carry an empty Origin.
type Event struct {
	Origin string
	Creds  Credentials
}

// Bus is the change-notification channel between session store instances.
// The mechanism is swappable: in-process fan-out, file polling, or none for
// single-instance deployments.
type Bus interface {
	// Publish announces a credential change to all subscribers.
	Publish(e Event)

	// Subscribe registers fn for future events and returns a cancel func.
	Subscribe(fn func(Event)) (cancel func())

	// Close stops delivery and releases resources.
	Close() error
}
