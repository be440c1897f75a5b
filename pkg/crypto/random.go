// Package crypto provides the SPECTER cryptographic core: the ML-KEM-768
// wrapper, domain-separated hashing, view tags, and stealth key
// derivation. Everything here is pure compute and safe to call from any
// goroutine.
package crypto

import (
	"crypto/rand"
	"io"

	serrors "github.com/pranshurastogi/specter/internal/errors"
)

// Reader is the randomness source for key generation and encapsulation.
// It wraps crypto/rand.Reader.
var Reader = rand.Reader

// SecureRandom fills b from the OS CSPRNG. Failure means the system
// randomness source is broken and should be treated as fatal.
func SecureRandom(b []byte) error {
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return serrors.NewCryptoError("SecureRandom", err)
	}
	return nil
}

// SecureRandomBytes returns n bytes from the OS CSPRNG.
func SecureRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := SecureRandom(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ConstantTimeCompare compares two slices without data-dependent timing.
// Slices of different length compare unequal immediately; length is not
// secret for any comparison in this protocol.
func ConstantTimeCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}

// ConstantTimeByteEq compares two bytes without branching on their values.
func ConstantTimeByteEq(a, b byte) bool {
	return a^b == 0
}

// Zeroize overwrites b with zeros. Call it on every buffer that held
// secret material before the buffer becomes unreachable.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ZeroizeAll overwrites several buffers.
func ZeroizeAll(slices ...[]byte) {
	for _, s := range slices {
		Zeroize(s)
	}
}
