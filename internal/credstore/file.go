package credstore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"blogctl/internal/encryption"
)

// File names within the store directory. The token is sealed by the
// configured encryptor; the user entry is the serialized user object as
// received from the API.
const (
	tokenFileName = "token"
	userFileName  = "user.json"
)

// FileStore persists credentials as two files in a directory, one per
// durable entry. Writes go through a temp file + rename so a concurrent
// reader never observes a partial entry.
type FileStore struct {
	dir       string
	encryptor encryption.Encryptor
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir. The directory is created
// with owner-only permissions since it holds a credential.
func NewFileStore(dir string, enc encryption.Encryptor) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating credential directory: %w", err)
	}
	if enc == nil {
		enc = encryption.NewPlaintextEncryptor()
	}
	return &FileStore{dir: dir, encryptor: enc}, nil
}

func (s *FileStore) tokenPath() string { return filepath.Join(s.dir, tokenFileName) }
func (s *FileStore) userPath() string  { return filepath.Join(s.dir, userFileName) }

func (s *FileStore) Load() (Credentials, error) {
	var creds Credentials

	sealed, err := os.ReadFile(s.tokenPath())
	switch {
	case err == nil:
		var buf bytes.Buffer
		if err := s.encryptor.Decrypt(bytes.NewReader(sealed), &buf); err != nil {
			return Credentials{}, fmt.Errorf("unsealing token: %w", err)
		}
		creds.Token = buf.String()
	case os.IsNotExist(err):
		// No token stored.
	default:
		return Credentials{}, fmt.Errorf("reading token: %w", err)
	}

	user, err := os.ReadFile(s.userPath())
	switch {
	case err == nil:
		creds.User = user
	case os.IsNotExist(err):
		// No user stored.
	default:
		return Credentials{}, fmt.Errorf("reading user: %w", err)
	}

	return creds, nil
}

func (s *FileStore) Save(c Credentials) error {
	var sealed bytes.Buffer
	if err := s.encryptor.Encrypt(bytes.NewReader([]byte(c.Token)), &sealed); err != nil {
		return fmt.Errorf("sealing token: %w", err)
	}
	if err := s.writeFile(s.tokenPath(), sealed.Bytes()); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}

	if len(c.User) == 0 {
		if err := removeIfExists(s.userPath()); err != nil {
			return fmt.Errorf("removing user entry: %w", err)
		}
		return nil
	}
	if err := s.writeFile(s.userPath(), c.User); err != nil {
		return fmt.Errorf("writing user: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := removeIfExists(s.tokenPath()); err != nil {
		return fmt.Errorf("removing token entry: %w", err)
	}
	if err := removeIfExists(s.userPath()); err != nil {
		return fmt.Errorf("removing user entry: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// writeFile writes data atomically via a temp file in the same directory.
func (s *FileStore) writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
