package testutil

import (
	"testing"

	"blogctl/internal/credstore"
	"blogctl/internal/encryption"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() encryption.Encryptor {
	return encryption.NewTestEncryptor()
}

// NewTestStore creates an in-memory credential store, closed with the test.
func NewTestStore(t *testing.T) credstore.Store {
	t.Helper()
	s := credstore.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return s
}

// NewTestBus creates an in-process bus, closed with the test.
func NewTestBus(t *testing.T) *credstore.MemoryBus {
	t.Helper()
	b := credstore.NewMemoryBus()
	t.Cleanup(func() { b.Close() })
	return b
}
