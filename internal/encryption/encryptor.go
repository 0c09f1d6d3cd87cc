// Package encryption seals the persisted bearer token at rest. The session
// file lives in a user-writable directory; sealing it means a copied state
// directory does not leak a usable credential.
package encryption

import "io"

// Encryptor transforms credential data for storage. Implementations must be
// symmetric: Decrypt(Encrypt(x)) == x.
type Encryptor interface {
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Decrypt reads ciphertext from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
