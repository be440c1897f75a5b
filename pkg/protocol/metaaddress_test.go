package protocol_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pranshurastogi/specter/internal/constants"
	serrors "github.com/pranshurastogi/specter/internal/errors"
	"github.com/pranshurastogi/specter/pkg/crypto"
	"github.com/pranshurastogi/specter/pkg/protocol"
)

func testMetaAddress(t *testing.T) *protocol.MetaAddress {
	t.Helper()
	spending, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	viewing, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	meta, err := protocol.NewMetaAddress(spending.Public.Bytes(), viewing.Public.Bytes())
	if err != nil {
		t.Fatalf("NewMetaAddress failed: %v", err)
	}
	return meta
}

func TestMetaAddressRoundTrip(t *testing.T) {
	meta := testMetaAddress(t)

	encoded := meta.ToBytes()
	if len(encoded) != constants.MetaAddressSerializedSize {
		t.Fatalf("encoded length: got %d, want %d", len(encoded), constants.MetaAddressSerializedSize)
	}

	decoded, err := protocol.MetaAddressFromBytes(encoded)
	if err != nil {
		t.Fatalf("MetaAddressFromBytes failed: %v", err)
	}
	if decoded.Version != meta.Version {
		t.Errorf("version: got %d, want %d", decoded.Version, meta.Version)
	}
	if !bytes.Equal(decoded.SpendingPK, meta.SpendingPK) || !bytes.Equal(decoded.ViewingPK, meta.ViewingPK) {
		t.Error("keys changed across round trip")
	}
}

func TestMetaAddressHexRoundTrip(t *testing.T) {
	meta := testMetaAddress(t)

	decoded, err := protocol.MetaAddressFromHex(meta.ToHex())
	if err != nil {
		t.Fatalf("MetaAddressFromHex failed: %v", err)
	}
	if !bytes.Equal(decoded.ToBytes(), meta.ToBytes()) {
		t.Error("hex round trip changed the encoding")
	}
}

func TestMetaAddressTrailingBytesRejected(t *testing.T) {
	meta := testMetaAddress(t)
	encoded := append(meta.ToBytes(), 0x00)

	if _, err := protocol.MetaAddressFromBytes(encoded); err == nil {
		t.Error("trailing byte should be rejected")
	}
	if _, err := protocol.MetaAddressFromBytes(meta.ToBytes()[:100]); err == nil {
		t.Error("truncated encoding should be rejected")
	}
}

func TestMetaAddressZeroKeysRejected(t *testing.T) {
	zero := make([]byte, constants.KyberPublicKeySize)
	real := testMetaAddress(t)

	if _, err := protocol.NewMetaAddress(zero, real.ViewingPK); err == nil {
		t.Error("zero spending key should be rejected")
	}
	if _, err := protocol.NewMetaAddress(real.SpendingPK, zero); err == nil {
		t.Error("zero viewing key should be rejected")
	}
}

func TestMetaAddressVersionValidation(t *testing.T) {
	meta := testMetaAddress(t)
	meta.Version = 0

	err := meta.Validate()
	var vm *serrors.VersionMismatchError
	if !serrors.As(err, &vm) {
		t.Errorf("expected VersionMismatchError, got %v", err)
	}

	encoded := meta.ToBytes()
	if _, err := protocol.MetaAddressFromBytes(encoded); err == nil {
		t.Error("version 0 encoding should be rejected")
	}
}

func TestMetaAddressJSONKeepsMetadataOffWire(t *testing.T) {
	meta := testMetaAddress(t)
	meta.Metadata = &protocol.MetaAddressMetadata{Description: "trading wallet", CreatedAt: 1700000000}

	// Metadata survives JSON...
	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded protocol.MetaAddress
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Metadata == nil || decoded.Metadata.Description != "trading wallet" {
		t.Error("metadata lost across JSON round trip")
	}

	// ...but never the canonical binary layout.
	if len(meta.ToBytes()) != constants.MetaAddressSerializedSize {
		t.Error("metadata leaked into the binary encoding")
	}
}
