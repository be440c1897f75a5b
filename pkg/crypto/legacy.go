// legacy.go keeps the first-generation XOR derivation. Its "address" is
// the keccak tail of a masked Kyber public key and corresponds to no
// secp256k1 signing key, so no standard wallet can spend from it. It is
// deliberately unexported; wallet-compatible destinations come from
// derive.go only.
package crypto

import (
	"github.com/pranshurastogi/specter/internal/constants"
	serrors "github.com/pranshurastogi/specter/internal/errors"
)

// legacyStealthPublicKey masks the spending public key with a SHAKE256
// factor: stealth_pk = spending_pk XOR SHAKE256(DomainStealthPK, ss, 1184).
func legacyStealthPublicKey(spendingPK []byte, ss *SharedSecret) ([]byte, error) {
	if len(spendingPK) != constants.KyberPublicKeySize {
		return nil, &serrors.InvalidKeySizeError{Expected: constants.KyberPublicKeySize, Actual: len(spendingPK)}
	}
	factor := Shake256(constants.DomainStealthPK, ss.Bytes(), constants.KyberPublicKeySize)
	out := make([]byte, constants.KyberPublicKeySize)
	for i := range out {
		out[i] = spendingPK[i] ^ factor[i]
	}
	return out, nil
}

// legacyStealthSecretKey masks the spending secret key with the
// DomainStealthSK factor. XOR is self-inverse, so applying the factor to a
// masked key recovers the original.
func legacyStealthSecretKey(spendingSK []byte, ss *SharedSecret) ([]byte, error) {
	if len(spendingSK) != constants.KyberSecretKeySize {
		return nil, &serrors.InvalidKeySizeError{Expected: constants.KyberSecretKeySize, Actual: len(spendingSK)}
	}
	factor := Shake256(constants.DomainStealthSK, ss.Bytes(), constants.KyberSecretKeySize)
	out := make([]byte, constants.KyberSecretKeySize)
	for i := range out {
		out[i] = spendingSK[i] ^ factor[i]
	}
	Zeroize(factor)
	return out, nil
}

// legacyAddress is the keccak tail of a masked Kyber public key. Not
// spendable by any wallet.
func legacyAddress(stealthPK []byte) ([constants.EthAddressSize]byte, error) {
	var addr [constants.EthAddressSize]byte
	if len(stealthPK) != constants.KyberPublicKeySize {
		return addr, &serrors.InvalidKeySizeError{Expected: constants.KyberPublicKeySize, Actual: len(stealthPK)}
	}
	hash := Keccak256(stealthPK)
	copy(addr[:], hash[constants.Keccak256Size-constants.EthAddressSize:])
	return addr, nil
}
