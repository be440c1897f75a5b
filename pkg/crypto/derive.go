// derive.go binds a stealth destination to the recipient's spending key
// and the per-payment shared secret.
//
// The derivation produces a real secp256k1 private key, so any standard
// Ethereum wallet can sign for the stealth address:
//
//	seed = SHAKE256(DomainEthKey, shared_secret || spending_pk, 32)
//	while seed is zero or >= n: seed = keccak256(seed)
//	eth_private_key = seed
//	address = keccak256(uncompressed_pubkey[1:])[12:32]
//
// Both sides run the same computation; the sender discards the private key
// and keeps only the address.
package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/pranshurastogi/specter/internal/constants"
	serrors "github.com/pranshurastogi/specter/internal/errors"
)

// StealthDerivation is the output of a full recipient-side derivation.
type StealthDerivation struct {
	// Address is the one-time Ethereum address.
	Address [constants.EthAddressSize]byte
	// PrivateKey is the secp256k1 key controlling Address. Secret material:
	// the caller must wipe it when done.
	PrivateKey []byte
}

// Wipe overwrites the derived private key.
func (d *StealthDerivation) Wipe() {
	if d == nil {
		return
	}
	Zeroize(d.PrivateKey)
}

// String implements fmt.Stringer with the private key redacted.
func (d *StealthDerivation) String() string {
	return "StealthDerivation(" + redacted + ")"
}

// GoString keeps %#v output redacted.
func (d *StealthDerivation) GoString() string { return d.String() }

// DeriveEthPrivateKey derives the stealth secp256k1 private key from the
// spending public key and a shared secret. The initial SHAKE256 candidate
// is rejection-resampled with Keccak-256 until it is a valid non-zero
// scalar; the loop is capped so pathological inputs fail with
// ErrVerificationFailed instead of spinning.
func DeriveEthPrivateKey(spendingPK []byte, ss *SharedSecret) ([]byte, error) {
	if len(spendingPK) != constants.KyberPublicKeySize {
		return nil, &serrors.InvalidKeySizeError{Expected: constants.KyberPublicKeySize, Actual: len(spendingPK)}
	}

	material := make([]byte, 0, constants.KyberSharedSecretSize+constants.KyberPublicKeySize)
	material = append(material, ss.Bytes()...)
	material = append(material, spendingPK...)

	candidate := Shake256(constants.DomainEthKey, material, constants.EthPrivateKeySize)
	Zeroize(material)

	for i := 0; !isValidScalar(candidate); i++ {
		if i >= constants.MaxSeedRehashIterations {
			Zeroize(candidate)
			return nil, serrors.NewCryptoError("DeriveEthPrivateKey", serrors.ErrVerificationFailed)
		}
		rehashed := Keccak256(candidate)
		Zeroize(candidate)
		candidate = rehashed[:]
	}

	return candidate, nil
}

// isValidScalar reports whether b is a non-zero scalar below the secp256k1
// group order.
func isValidScalar(b []byte) bool {
	var s secp256k1.ModNScalar
	overflow := s.SetByteSlice(b)
	valid := !overflow && !s.IsZero()
	s.Zero()
	return valid
}

// DeriveStealthAddress derives only the one-time address. This is the
// sender-side entry point: the intermediate private key is wiped before
// returning.
func DeriveStealthAddress(spendingPK []byte, ss *SharedSecret) ([constants.EthAddressSize]byte, error) {
	key, err := DeriveEthPrivateKey(spendingPK, ss)
	if err != nil {
		return [constants.EthAddressSize]byte{}, err
	}
	addr, err := AddressFromPrivateKey(key)
	Zeroize(key)
	return addr, err
}

// DeriveStealthKeys derives both the address and its controlling private
// key. This is the recipient-side entry point after a view-tag match.
func DeriveStealthKeys(spendingPK []byte, ss *SharedSecret) (*StealthDerivation, error) {
	key, err := DeriveEthPrivateKey(spendingPK, ss)
	if err != nil {
		return nil, err
	}
	addr, err := AddressFromPrivateKey(key)
	if err != nil {
		Zeroize(key)
		return nil, err
	}
	return &StealthDerivation{Address: addr, PrivateKey: key}, nil
}

// AddressFromPrivateKey computes the Ethereum address controlled by a
// 32-byte secp256k1 private key: the last 20 bytes of the Keccak-256 of
// the uncompressed public key without its 0x04 prefix.
func AddressFromPrivateKey(key []byte) ([constants.EthAddressSize]byte, error) {
	var addr [constants.EthAddressSize]byte
	if len(key) != constants.EthPrivateKeySize {
		return addr, &serrors.InvalidKeySizeError{Expected: constants.EthPrivateKeySize, Actual: len(key)}
	}
	if !isValidScalar(key) {
		return addr, serrors.NewCryptoError("AddressFromPrivateKey", serrors.ErrVerificationFailed)
	}

	priv := secp256k1.PrivKeyFromBytes(key)
	defer priv.Zero()

	uncompressed := priv.PubKey().SerializeUncompressed() // 65 bytes, leading 0x04
	hash := Keccak256(uncompressed[1:])
	copy(addr[:], hash[constants.Keccak256Size-constants.EthAddressSize:])
	return addr, nil
}

// VerifyStealthAddress re-derives the address for (spendingPK, ss) and
// compares it against an expected address in constant time. Used to
// confirm a discovery against a published destination.
func VerifyStealthAddress(spendingPK []byte, ss *SharedSecret, expected [constants.EthAddressSize]byte) (bool, error) {
	derived, err := DeriveStealthAddress(spendingPK, ss)
	if err != nil {
		return false, err
	}
	return ConstantTimeCompare(derived[:], expected[:]), nil
}
