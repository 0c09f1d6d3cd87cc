package credstore

import (
	"fmt"
	"path/filepath"
	"time"

	"blogctl/internal/config"
	"blogctl/internal/encryption"
)

// NewStoreFromConfig creates a Store implementation based on the credential config type.
func NewStoreFromConfig(cfg config.CredentialConfig, enc encryption.Encryptor) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file credential storage requires dir to be set")
		}
		return NewFileStore(cfg.Dir, enc)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite credential storage")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "session.db"))
	default:
		return nil, fmt.Errorf("unknown credential storage type: %s", cfg.Type)
	}
}

// NewBusFromConfig creates a Bus implementation based on the sync config type.
// The file bus observes the given store, so cross-process changes to a file
// or sqlite store surface as events.
func NewBusFromConfig(cfg config.SyncConfig, store Store) (Bus, error) {
	switch cfg.Type {
	case "none":
		return NewNopBus(), nil
	case "memory":
		return NewMemoryBus(), nil
	case "file", "":
		interval := time.Duration(cfg.PollMillis) * time.Millisecond
		if cfg.PollMillis <= 0 {
			interval = time.Duration(config.DefaultSyncPollMillis) * time.Millisecond
		}
		return NewPollBus(store, interval), nil
	default:
		return nil, fmt.Errorf("unknown sync type: %s", cfg.Type)
	}
}
