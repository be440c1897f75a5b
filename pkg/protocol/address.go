// Package protocol defines the SPECTER wire-level data model: meta-addresses,
// announcements, Ethereum address/key bindings, and their canonical binary
// encodings. Hex string forms exist for transport; the binary layouts are
// canonical.
package protocol

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/pranshurastogi/specter/internal/constants"
	serrors "github.com/pranshurastogi/specter/internal/errors"
	"github.com/pranshurastogi/specter/pkg/crypto"
)

// HexBytes is a byte slice that marshals to/from a 0x-prefixed hex string
// in JSON. Used for the byte fields of persisted announcements.
type HexBytes []byte

// MarshalJSON encodes as "0x...".
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(h))
}

// UnmarshalJSON accepts hex with or without the 0x prefix.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return serrors.ErrJSON
	}
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return serrors.ErrHex
	}
	*h = b
	return nil
}

// EthAddress is a 20-byte Ethereum address.
type EthAddress [constants.EthAddressSize]byte

// ParseEthAddress parses a 0x-prefixed or bare 40-character hex address.
func ParseEthAddress(s string) (EthAddress, error) {
	var a EthAddress
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, serrors.ErrHex
	}
	if len(b) != constants.EthAddressSize {
		return a, serrors.ErrInvalidStealthAddress
	}
	copy(a[:], b)
	return a, nil
}

// Hex returns the 0x-prefixed lowercase hex form.
func (a EthAddress) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String implements fmt.Stringer. Addresses are public.
func (a EthAddress) String() string { return a.Hex() }

// IsZero reports whether the address is all zeros.
func (a EthAddress) IsZero() bool {
	for _, b := range a {
		if b != 0 {
			return false
		}
	}
	return true
}

// EqualConstantTime compares two addresses without data-dependent timing.
// Use when confirming a derived address against a published one.
func (a EthAddress) EqualConstantTime(other EthAddress) bool {
	return crypto.ConstantTimeCompare(a[:], other[:])
}

// MarshalJSON encodes as a hex string.
func (a EthAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

// UnmarshalJSON decodes from a hex string.
func (a *EthAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return serrors.ErrJSON
	}
	parsed, err := ParseEthAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// EthPrivateKey is a 32-byte secp256k1 private key for a stealth address.
// It is secret material: wipe it when done, and all formatting paths emit
// a fixed redaction token.
type EthPrivateKey struct {
	bytes []byte
}

// NewEthPrivateKey wraps a 32-byte key. The wrapper takes ownership of a
// private copy.
func NewEthPrivateKey(b []byte) (*EthPrivateKey, error) {
	if len(b) != constants.EthPrivateKeySize {
		return nil, &serrors.InvalidKeySizeError{Expected: constants.EthPrivateKeySize, Actual: len(b)}
	}
	cp := make([]byte, constants.EthPrivateKeySize)
	copy(cp, b)
	return &EthPrivateKey{bytes: cp}, nil
}

// Bytes returns the raw key. The slice aliases the wrapper's storage and
// becomes zero after Wipe.
func (k *EthPrivateKey) Bytes() []byte {
	if k == nil {
		return nil
	}
	return k.bytes
}

// Wipe overwrites the key material.
func (k *EthPrivateKey) Wipe() {
	if k == nil {
		return
	}
	crypto.Zeroize(k.bytes)
}

// String implements fmt.Stringer with a fixed redaction token.
func (k *EthPrivateKey) String() string { return "EthPrivateKey([REDACTED])" }

// GoString keeps %#v output redacted.
func (k *EthPrivateKey) GoString() string { return k.String() }

// MarshalJSON refuses to serialize private keys.
func (k *EthPrivateKey) MarshalJSON() ([]byte, error) {
	return json.Marshal("[REDACTED]")
}

// StealthAddressResult is what a sender gets back from payment creation:
// the destination, the ciphertext to announce, and the filter tag.
type StealthAddressResult struct {
	Address             EthAddress `json:"address"`
	EphemeralCiphertext HexBytes   `json:"ephemeral_ciphertext"`
	ViewTag             uint8      `json:"view_tag"`
}

// DiscoveredAddress is what a recipient gets from a successful scan match:
// the stealth destination and the private key that controls it.
type DiscoveredAddress struct {
	Address        EthAddress
	PrivateKey     *EthPrivateKey
	AnnouncementID uint64
	Timestamp      uint64
}

// Wipe overwrites the discovery's secret material.
func (d *DiscoveredAddress) Wipe() {
	if d == nil {
		return
	}
	d.PrivateKey.Wipe()
}

// String implements fmt.Stringer with the private key redacted.
func (d *DiscoveredAddress) String() string {
	return "DiscoveredAddress{" + d.Address.Hex() + ", [REDACTED]}"
}
