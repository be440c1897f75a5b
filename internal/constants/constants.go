// Package constants defines the protocol parameters for SPECTER
// post-quantum stealth addresses.
//
// All KEM sizes are fixed by ML-KEM-768 (NIST FIPS 203).
package constants

import "bytes"

// ML-KEM-768 parameters (NIST FIPS 203)
const (
	// KyberPublicKeySize is the size of an ML-KEM-768 encapsulation key in bytes.
	// This is what recipients publish inside a meta-address.
	KyberPublicKeySize = 1184

	// KyberSecretKeySize is the size of an ML-KEM-768 decapsulation key in bytes.
	KyberSecretKeySize = 2400

	// KyberCiphertextSize is the size of an ML-KEM-768 ciphertext in bytes.
	// This is the ephemeral key carried in announcements.
	KyberCiphertextSize = 1088

	// KyberSharedSecretSize is the size of the encapsulated shared secret in bytes.
	KyberSharedSecretSize = 32
)

// Ethereum parameters
const (
	// EthAddressSize is the size of an Ethereum address in bytes.
	EthAddressSize = 20

	// EthPrivateKeySize is the size of a secp256k1 private key in bytes.
	EthPrivateKeySize = 32

	// Keccak256Size is the output size of Keccak-256.
	Keccak256Size = 32
)

// View tag parameters
const (
	// ViewTagSize is the size of a view tag in bytes. One byte gives a
	// 1/256 false-positive rate during scanning.
	ViewTagSize = 1

	// ViewTagSpace is the number of possible view tag values.
	ViewTagSpace = 256

	// ViewTagHashSize is the SHAKE256 output length used for view tag
	// derivation. Only the first byte is used today; the rest is reserved
	// for extended tags.
	ViewTagHashSize = 32
)

// Domain separators. Every SHAKE256 invocation in the protocol absorbs one
// of these first, length-prefixed, so outputs from different operations
// never collide even on identical inputs. The pre-V1 set is not
// interoperable with these.
var (
	// DomainViewTag separates view-tag derivation.
	DomainViewTag = []byte("SPECTER_VIEW_TAG_V1")

	// DomainStealthPK separates the legacy stealth public-key factor.
	DomainStealthPK = []byte("SPECTER_STEALTH_PK_V1")

	// DomainStealthSK separates the legacy stealth secret-key factor.
	DomainStealthSK = []byte("SPECTER_STEALTH_SK_V1")

	// DomainEthKey separates the secp256k1 seed derivation.
	DomainEthKey = []byte("SPECTER_ETH_KEY_V1")

	// DomainEthAddress is reserved for future address derivation schemes.
	DomainEthAddress = []byte("SPECTER_ETH_ADDRESS_V1")
)

// Protocol versioning
const (
	// ProtocolVersion is the current meta-address version byte.
	ProtocolVersion uint8 = 1

	// MinProtocolVersion is the lowest version accepted during validation.
	MinProtocolVersion uint8 = 1
)

// Serialization sizes
const (
	// MetaAddressSerializedSize is version || spending_pk || viewing_pk.
	MetaAddressSerializedSize = 1 + KyberPublicKeySize + KyberPublicKeySize

	// AnnouncementMinSize is ephemeral_key || view_tag || timestamp || has_channel.
	AnnouncementMinSize = KyberCiphertextSize + ViewTagSize + 8 + 1

	// ChannelIDSize is the size of an optional channel identifier.
	ChannelIDSize = 32
)

// Announcement validation
const (
	// MaxTimestampSkewSeconds is how far into the future an announcement
	// timestamp may lie before publication is rejected.
	MaxTimestampSkewSeconds = 3600
)

// Scanning defaults
const (
	// DefaultScanBatchSize is the progress-reporting granularity of the scanner.
	DefaultScanBatchSize = 1000

	// MaxScanBatchSize caps the scanner's progress-reporting batch size.
	MaxScanBatchSize = 10_000
)

// Derivation limits
const (
	// MaxSeedRehashIterations caps the keccak rejection-resampling loop in
	// secp256k1 seed derivation. The loop terminates on the first iteration
	// except for a vanishing fraction of inputs; the cap bounds worst-case
	// work on pathological data.
	MaxSeedRehashIterations = 8
)

func init() {
	domains := [][]byte{
		DomainViewTag,
		DomainStealthPK,
		DomainStealthSK,
		DomainEthKey,
		DomainEthAddress,
	}
	for i := range domains {
		for j := i + 1; j < len(domains); j++ {
			if bytes.Equal(domains[i], domains[j]) {
				panic("constants: duplicate domain separator " + string(domains[i]))
			}
		}
	}
}
