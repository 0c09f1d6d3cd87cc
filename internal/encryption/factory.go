package encryption

import (
	"fmt"
	"os"
	"strings"

	"blogctl/internal/config"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// For type "age" the passphrase is read from the configured passphrase file
// unless the caller already resolved one (e.g. via an interactive prompt).
func NewEncryptorFromConfig(cfg config.EncryptionConfig, passphrase string) (Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return NewPlaintextEncryptor(), nil
	case "age":
		if passphrase == "" {
			if cfg.PassphraseFile == "" {
				return nil, fmt.Errorf("age encryption requires passphrase_file or a prompted passphrase")
			}
			data, err := os.ReadFile(cfg.PassphraseFile)
			if err != nil {
				return nil, fmt.Errorf("reading passphrase file: %w", err)
			}
			passphrase = strings.TrimSpace(string(data))
		}
		return NewAgeEncryptor(passphrase)
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
