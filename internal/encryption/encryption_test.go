package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blogctl/internal/config"
)

func roundTrip(t *testing.T, e Encryptor, plaintext []byte) []byte {
	t.Helper()
	var sealed bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(plaintext), &sealed); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	var opened bytes.Buffer
	if err := e.Decrypt(bytes.NewReader(sealed.Bytes()), &opened); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	return opened.Bytes()
}

func TestAgeEncryptor(t *testing.T) {
	t.Run("round-trips", func(t *testing.T) {
		e, err := NewAgeEncryptor("correct horse battery staple")
		if err != nil {
			t.Fatalf("NewAgeEncryptor() error = %v", err)
		}

		plaintext := []byte("bearer-token-value")
		if got := roundTrip(t, e, plaintext); !bytes.Equal(got, plaintext) {
			t.Errorf("round trip = %q, want %q", got, plaintext)
		}
	})

	t.Run("output differs from plaintext", func(t *testing.T) {
		e, _ := NewAgeEncryptor("passphrase")
		var sealed bytes.Buffer
		if err := e.Encrypt(strings.NewReader("secret"), &sealed); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if bytes.Contains(sealed.Bytes(), []byte("secret")) {
			t.Error("sealed output contains the plaintext")
		}
	})

	t.Run("wrong passphrase fails", func(t *testing.T) {
		e1, _ := NewAgeEncryptor("right")
		var sealed bytes.Buffer
		if err := e1.Encrypt(strings.NewReader("secret"), &sealed); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}

		e2, _ := NewAgeEncryptor("wrong")
		var opened bytes.Buffer
		if err := e2.Decrypt(bytes.NewReader(sealed.Bytes()), &opened); err == nil {
			t.Error("Decrypt() error = nil with wrong passphrase, want error")
		}
	})

	t.Run("empty passphrase is rejected", func(t *testing.T) {
		if _, err := NewAgeEncryptor(""); err == nil {
			t.Error("NewAgeEncryptor(\"\") error = nil, want error")
		}
	})
}

func TestTestEncryptor(t *testing.T) {
	e := NewTestEncryptor()

	plaintext := []byte("bearer-token-value")
	if got := roundTrip(t, e, plaintext); !bytes.Equal(got, plaintext) {
		t.Errorf("round trip = %q, want %q", got, plaintext)
	}

	var opened bytes.Buffer
	if err := e.Decrypt(strings.NewReader("no header here"), &opened); err == nil {
		t.Error("Decrypt() of unsealed data error = nil, want error")
	}
}

func TestPlaintextEncryptor(t *testing.T) {
	e := NewPlaintextEncryptor()
	var sealed bytes.Buffer
	if err := e.Encrypt(strings.NewReader("data"), &sealed); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if sealed.String() != "data" {
		t.Errorf("Encrypt() output = %q, want passthrough", sealed.String())
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Run("defaults to plaintext", func(t *testing.T) {
		e, err := NewEncryptorFromConfig(config.EncryptionConfig{}, "")
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig() error = %v", err)
		}
		if _, ok := e.(*PlaintextEncryptor); !ok {
			t.Errorf("encryptor = %T, want *PlaintextEncryptor", e)
		}
	})

	t.Run("age reads the passphrase file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "passphrase")
		if err := os.WriteFile(path, []byte("hunter2\n"), 0600); err != nil {
			t.Fatalf("writing passphrase file: %v", err)
		}

		e, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "age", PassphraseFile: path}, "")
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig() error = %v", err)
		}

		plaintext := []byte("token")
		if got := roundTrip(t, e, plaintext); !bytes.Equal(got, plaintext) {
			t.Errorf("round trip = %q, want %q", got, plaintext)
		}
	})

	t.Run("age prefers the supplied passphrase", func(t *testing.T) {
		e, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "age"}, "prompted")
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig() error = %v", err)
		}
		if _, ok := e.(*AgeEncryptor); !ok {
			t.Errorf("encryptor = %T, want *AgeEncryptor", e)
		}
	})

	t.Run("age without any passphrase fails", func(t *testing.T) {
		if _, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "age"}, ""); err == nil {
			t.Error("NewEncryptorFromConfig() error = nil, want error")
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		if _, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "rot13"}, ""); err == nil {
			t.Error("NewEncryptorFromConfig() error = nil, want error")
		}
	})
}
