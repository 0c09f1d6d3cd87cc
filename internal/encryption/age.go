package encryption

import (
	"fmt"
	"io"

	"filippo.io/age"
)

// AgeEncryptor seals data with age's scrypt-based passphrase encryption.
// No key files are involved: the passphrase is supplied at construction
// (from the configured passphrase file or an interactive prompt).
type AgeEncryptor struct {
	passphrase string
}

var _ Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates an AgeEncryptor using the given passphrase.
func NewAgeEncryptor(passphrase string) (*AgeEncryptor, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("age encryption requires a non-empty passphrase")
	}
	return &AgeEncryptor{passphrase: passphrase}, nil
}

func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	recipient, err := age.NewScryptRecipient(e.passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	ew, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(ew, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := ew.Close(); err != nil {
		return fmt.Errorf("finalizing encrypted data: %w", err)
	}
	return nil
}

func (e *AgeEncryptor) Decrypt(r io.Reader, w io.Writer) error {
	identity, err := age.NewScryptIdentity(e.passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}

	dr, err := age.Decrypt(r, identity)
	if err != nil {
		return fmt.Errorf("opening encrypted data: %w", err)
	}

	if _, err := io.Copy(w, dr); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}
