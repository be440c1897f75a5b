package protocol

import (
	"encoding/hex"
	"strings"

	"github.com/pranshurastogi/specter/internal/constants"
	serrors "github.com/pranshurastogi/specter/internal/errors"
)

// MetaAddress is a recipient's long-lived published identity: a version
// byte and two ML-KEM-768 public keys. Senders encapsulate to ViewingPK
// and derive destinations from SpendingPK. Immutable after creation.
//
// Canonical binary layout (2369 bytes):
//
//	version (1) || spending_pk (1184) || viewing_pk (1184)
//
// Metadata is off-wire and appears only in JSON views.
type MetaAddress struct {
	Version    uint8                `json:"version"`
	SpendingPK HexBytes             `json:"spending_pk"`
	ViewingPK  HexBytes             `json:"viewing_pk"`
	Metadata   *MetaAddressMetadata `json:"metadata,omitempty"`
}

// MetaAddressMetadata carries optional descriptive fields. None of them
// participate in any derivation or the binary layout.
type MetaAddressMetadata struct {
	Description string `json:"description,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	CreatedAt   uint64 `json:"created_at,omitempty"`
}

// NewMetaAddress builds a current-version meta-address from two packed
// public keys.
func NewMetaAddress(spendingPK, viewingPK []byte) (*MetaAddress, error) {
	m := &MetaAddress{
		Version:    constants.ProtocolVersion,
		SpendingPK: append(HexBytes(nil), spendingPK...),
		ViewingPK:  append(HexBytes(nil), viewingPK...),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate enforces the structural invariants: supported version, both
// keys exactly 1184 bytes and not all zero.
func (m *MetaAddress) Validate() error {
	if m.Version < constants.MinProtocolVersion {
		return &serrors.VersionMismatchError{Expected: constants.ProtocolVersion, Actual: m.Version}
	}
	if len(m.SpendingPK) != constants.KyberPublicKeySize || len(m.ViewingPK) != constants.KyberPublicKeySize {
		return serrors.ErrInvalidMetaAddress
	}
	if allZero(m.SpendingPK) || allZero(m.ViewingPK) {
		return serrors.ErrInvalidMetaAddress
	}
	return nil
}

// ToBytes serializes to the canonical 2369-byte layout.
func (m *MetaAddress) ToBytes() []byte {
	out := make([]byte, 0, constants.MetaAddressSerializedSize)
	out = append(out, m.Version)
	out = append(out, m.SpendingPK...)
	out = append(out, m.ViewingPK...)
	return out
}

// MetaAddressFromBytes parses the canonical layout. The input must be
// exactly 2369 bytes; trailing data is rejected. The result is validated
// before being returned.
func MetaAddressFromBytes(b []byte) (*MetaAddress, error) {
	if len(b) != constants.MetaAddressSerializedSize {
		return nil, serrors.ErrInvalidMetaAddress
	}
	m := &MetaAddress{
		Version:    b[0],
		SpendingPK: append(HexBytes(nil), b[1:1+constants.KyberPublicKeySize]...),
		ViewingPK:  append(HexBytes(nil), b[1+constants.KyberPublicKeySize:]...),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ToHex returns the hex transport form of the canonical layout.
func (m *MetaAddress) ToHex() string {
	return "0x" + hex.EncodeToString(m.ToBytes())
}

// MetaAddressFromHex parses the hex transport form, with or without the
// 0x prefix.
func MetaAddressFromHex(s string) (*MetaAddress, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, serrors.ErrHex
	}
	return MetaAddressFromBytes(b)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
