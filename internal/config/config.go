package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the main configuration for blogctl.
type Config struct {
	API         APIConfig        `toml:"api"`
	UI          UIConfig         `toml:"ui"`
	LogDir      string           `toml:"log_dir"`
	Credentials CredentialConfig `toml:"credentials"`
	Sync        SyncConfig       `toml:"sync"`
	Encryption  EncryptionConfig `toml:"encryption"`
}

// APIConfig locates the blog REST API. The base URL is deployment
// configuration, never hard-coded; BLOGCTL_API_URL overrides the file value.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// UIConfig holds list-view tuning knobs.
type UIConfig struct {
	// SearchQuietMillis is the debounce quiet period for free-text search.
	SearchQuietMillis int `toml:"search_quiet_millis"`
	// PostsPageSize applies to the public feed and own-posts views.
	PostsPageSize int `toml:"posts_page_size"`
	// AdminPageSize applies to the admin posts and users views.
	AdminPageSize int `toml:"admin_page_size"`
	// VisibleComments caps the root comments shown before "show all".
	VisibleComments int `toml:"visible_comments"`
}

// CredentialConfig selects the durable session-storage backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type CredentialConfig struct {
	Type string `toml:"type"` // "memory", "file", or "sqlite"

	// File-specific fields (only used when Type == "file")
	Dir string `toml:"dir,omitempty"`

	// SQLite-specific fields (only used when Type == "sqlite")
	DataDir string `toml:"data_dir,omitempty"`
}

// SyncConfig selects the cross-instance session sync channel.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type SyncConfig struct {
	Type string `toml:"type"` // "none", "memory", or "file"

	// PollMillis is the change-poll interval for type=file.
	PollMillis int `toml:"poll_millis,omitempty"`
}

// EncryptionConfig selects at-rest sealing of the stored token.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age", or "test"
	PassphraseFile string `toml:"passphrase_file,omitempty"`
}

// Defaults applied when optional values are unset.
const (
	DefaultSearchQuietMillis = 450
	DefaultPostsPageSize     = 6
	DefaultAdminPageSize     = 10
	DefaultVisibleComments   = 5
	DefaultSyncPollMillis    = 1000
)

// NewConfig creates a Config with the provided values and default layout.
func NewConfig(baseURL, baseDir string) *Config {
	return &Config{
		API: APIConfig{BaseURL: baseURL},
		UI: UIConfig{
			SearchQuietMillis: DefaultSearchQuietMillis,
			PostsPageSize:     DefaultPostsPageSize,
			AdminPageSize:     DefaultAdminPageSize,
			VisibleComments:   DefaultVisibleComments,
		},
		LogDir: filepath.Join(baseDir, "log"),
		Credentials: CredentialConfig{
			Type: "file",
			Dir:  filepath.Join(baseDir, "session"),
		},
		Sync: SyncConfig{
			Type:       "file",
			PollMillis: DefaultSyncPollMillis,
		},
		Encryption: EncryptionConfig{Type: "none"},
	}
}

// SearchQuiet returns the debounce quiet period as a duration.
func (c *Config) SearchQuiet() time.Duration {
	ms := c.UI.SearchQuietMillis
	if ms <= 0 {
		ms = DefaultSearchQuietMillis
	}
	return time.Duration(ms) * time.Millisecond
}

// Validate checks the configuration, collecting all problems into one error.
func (c *Config) Validate() error {
	var errs []string

	if c.API.BaseURL == "" {
		errs = append(errs, "api.base_url is required (or set BLOGCTL_API_URL)")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api.base_url is not an absolute URL: %q", c.API.BaseURL))
	}

	switch c.Credentials.Type {
	case "memory":
	case "file", "":
		if c.Credentials.Dir == "" {
			errs = append(errs, "credentials.dir required for file credential storage")
		}
	case "sqlite":
		if c.Credentials.DataDir == "" {
			errs = append(errs, "credentials.data_dir required for sqlite credential storage")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown credentials.type: %q", c.Credentials.Type))
	}

	switch c.Sync.Type {
	case "", "none", "memory", "file":
	default:
		errs = append(errs, fmt.Sprintf("unknown sync.type: %q", c.Sync.Type))
	}

	switch c.Encryption.Type {
	case "", "none", "age", "test":
	default:
		errs = append(errs, fmt.Sprintf("unknown encryption.type: %q", c.Encryption.Type))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ApplyEnv overlays environment configuration onto the config. A .env file
// in the working directory is loaded first when present; a missing file is
// not an error.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("BLOGCTL_API_URL"); v != "" {
		c.API.BaseURL = v
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path and applies
// environment overrides.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
