// kyber.go wraps the ML-KEM-768 key encapsulation mechanism.
//
// ML-KEM (NIST FIPS 203) is the standardized module-lattice KEM. SPECTER
// uses the 768 parameter set: encapsulation keys are 1184 bytes,
// decapsulation keys 2400 bytes, ciphertexts 1088 bytes, and shared
// secrets 32 bytes.
//
// Decapsulation is implicit-rejection: a well-formed ciphertext that was
// not produced for the matching public key still yields a 32-byte
// pseudorandom secret, with no error and no timing signal distinguishing
// it from a genuine one. Stealth-address scanning depends on this.
package crypto

import (
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"

	"github.com/pranshurastogi/specter/internal/constants"
	serrors "github.com/pranshurastogi/specter/internal/errors"
)

// redacted is the fixed token emitted by every formatting path of a secret
// type. Neither the bytes nor their length ever appear.
const redacted = "[REDACTED]"

// KyberPublicKey wraps an ML-KEM-768 encapsulation key. Public keys are
// freely copyable and serializable.
type KyberPublicKey struct {
	key *mlkem768.PublicKey
}

// KyberSecretKey wraps an ML-KEM-768 decapsulation key. The packed key
// material is owned exclusively by the wrapper and overwritten by Wipe.
type KyberSecretKey struct {
	key    *mlkem768.PrivateKey
	packed []byte
}

// KyberCiphertext wraps an ML-KEM-768 ciphertext (the announcement's
// ephemeral key).
type KyberCiphertext struct {
	bytes []byte
}

// SharedSecret holds a 32-byte KEM shared secret. It is secret material:
// wipe it as soon as derivation is done.
type SharedSecret struct {
	bytes []byte
}

// KeyPair is an ML-KEM-768 key pair.
type KeyPair struct {
	Public *KyberPublicKey
	Secret *KyberSecretKey
}

// GenerateKeyPair generates a fresh ML-KEM-768 key pair from the system CSPRNG.
func GenerateKeyPair() (*KeyPair, error) {
	pk, sk, err := mlkem768.GenerateKeyPair(Reader)
	if err != nil {
		return nil, serrors.NewCryptoError("GenerateKeyPair", err)
	}
	return newKeyPair(pk, sk), nil
}

// NewKeyPairFromSeed derives a key pair deterministically from a 64-byte
// seed. The same seed always yields the same pair; use it for wallet
// backup and restore. The caller keeps ownership of the seed and should
// wipe it afterwards.
func NewKeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != mlkem768.KeySeedSize {
		return nil, &serrors.InvalidKeySizeError{Expected: mlkem768.KeySeedSize, Actual: len(seed)}
	}
	pk, sk, err := mlkem768.GenerateKeyPair(&seedReader{data: seed})
	if err != nil {
		return nil, serrors.NewCryptoError("NewKeyPairFromSeed", err)
	}
	return newKeyPair(pk, sk), nil
}

func newKeyPair(pk *mlkem768.PublicKey, sk *mlkem768.PrivateKey) *KeyPair {
	packed := make([]byte, mlkem768.PrivateKeySize)
	sk.Pack(packed)
	return &KeyPair{
		Public: &KyberPublicKey{key: pk},
		Secret: &KyberSecretKey{key: sk, packed: packed},
	}
}

// seedReader feeds a fixed seed to deterministic key generation.
type seedReader struct {
	data   []byte
	offset int
}

func (r *seedReader) Read(p []byte) (n int, err error) {
	n = copy(p, r.data[r.offset:])
	r.offset += n
	return n, nil
}

// Wipe overwrites the key pair's secret material.
func (kp *KeyPair) Wipe() {
	if kp.Secret != nil {
		kp.Secret.Wipe()
	}
}

// Encapsulate encapsulates a fresh shared secret to the given public key.
// Every call draws new randomness, so repeated calls against the same key
// produce distinct ciphertexts and secrets.
func Encapsulate(pk *KyberPublicKey) (*KyberCiphertext, *SharedSecret, error) {
	if pk == nil || pk.key == nil {
		return nil, nil, serrors.NewCryptoError("Encapsulate", serrors.ErrEncapsulation)
	}

	ct := make([]byte, mlkem768.CiphertextSize)
	ss := make([]byte, mlkem768.SharedKeySize)

	seed := make([]byte, mlkem768.EncapsulationSeedSize)
	if err := SecureRandom(seed); err != nil {
		return nil, nil, serrors.NewCryptoError("Encapsulate", err)
	}

	pk.key.EncapsulateTo(ct, ss, seed)
	Zeroize(seed)

	return &KyberCiphertext{bytes: ct}, &SharedSecret{bytes: ss}, nil
}

// Decapsulate recovers the shared secret from a ciphertext. Per FIPS 203
// implicit rejection, a ciphertext for a different key still returns a
// 32-byte value; the caller cannot (and must not try to) tell the cases
// apart here. Only malformed input sizes produce an error.
func Decapsulate(ct *KyberCiphertext, sk *KyberSecretKey) (*SharedSecret, error) {
	if sk == nil || sk.key == nil {
		return nil, serrors.NewCryptoError("Decapsulate", serrors.ErrDecapsulation)
	}
	if ct == nil || len(ct.bytes) != constants.KyberCiphertextSize {
		actual := 0
		if ct != nil {
			actual = len(ct.bytes)
		}
		return nil, &serrors.InvalidCiphertextSizeError{Expected: constants.KyberCiphertextSize, Actual: actual}
	}

	ss := make([]byte, mlkem768.SharedKeySize)
	sk.key.DecapsulateTo(ss, ct.bytes)

	return &SharedSecret{bytes: ss}, nil
}

// --- KyberPublicKey ---

// Bytes returns the packed 1184-byte encoding.
func (pk *KyberPublicKey) Bytes() []byte {
	if pk == nil || pk.key == nil {
		return nil
	}
	buf := make([]byte, mlkem768.PublicKeySize)
	pk.key.Pack(buf)
	return buf
}

// Equal reports whether two public keys are identical. Public-key equality
// carries no secrecy requirement.
func (pk *KyberPublicKey) Equal(other *KyberPublicKey) bool {
	if pk == nil || other == nil {
		return pk == other
	}
	return pk.key.Equal(other.key)
}

// ParseKyberPublicKey parses a packed 1184-byte public key.
func ParseKyberPublicKey(data []byte) (*KyberPublicKey, error) {
	if len(data) != constants.KyberPublicKeySize {
		return nil, &serrors.InvalidKeySizeError{Expected: constants.KyberPublicKeySize, Actual: len(data)}
	}
	pk := new(mlkem768.PublicKey)
	if err := pk.Unpack(data); err != nil {
		return nil, serrors.NewCryptoError("ParseKyberPublicKey", err)
	}
	return &KyberPublicKey{key: pk}, nil
}

// --- KyberSecretKey ---

// ParseKyberSecretKey parses a packed 2400-byte secret key. The wrapper
// takes ownership of a private copy; the caller should wipe its own buffer.
func ParseKyberSecretKey(data []byte) (*KyberSecretKey, error) {
	if len(data) != constants.KyberSecretKeySize {
		return nil, &serrors.InvalidKeySizeError{Expected: constants.KyberSecretKeySize, Actual: len(data)}
	}
	sk := new(mlkem768.PrivateKey)
	if err := sk.Unpack(data); err != nil {
		return nil, serrors.NewCryptoError("ParseKyberSecretKey", err)
	}
	packed := make([]byte, constants.KyberSecretKeySize)
	copy(packed, data)
	return &KyberSecretKey{key: sk, packed: packed}, nil
}

// Bytes returns the packed 2400-byte encoding. The returned slice aliases
// the wrapper's storage and becomes zero after Wipe.
func (sk *KyberSecretKey) Bytes() []byte {
	if sk == nil {
		return nil
	}
	return sk.packed
}

// Equal compares two secret keys in constant time.
func (sk *KyberSecretKey) Equal(other *KyberSecretKey) bool {
	if sk == nil || other == nil {
		return sk == other
	}
	return ConstantTimeCompare(sk.packed, other.packed)
}

// Wipe overwrites the packed key material and drops the unpacked key.
func (sk *KyberSecretKey) Wipe() {
	if sk == nil {
		return
	}
	Zeroize(sk.packed)
	sk.key = nil
}

// String implements fmt.Stringer with a fixed redaction token.
func (sk *KyberSecretKey) String() string { return "KyberSecretKey(" + redacted + ")" }

// GoString keeps %#v output redacted.
func (sk *KyberSecretKey) GoString() string { return sk.String() }

// --- KyberCiphertext ---

// NewKyberCiphertext wraps a 1088-byte ciphertext.
func NewKyberCiphertext(data []byte) (*KyberCiphertext, error) {
	if len(data) != constants.KyberCiphertextSize {
		return nil, &serrors.InvalidCiphertextSizeError{Expected: constants.KyberCiphertextSize, Actual: len(data)}
	}
	b := make([]byte, constants.KyberCiphertextSize)
	copy(b, data)
	return &KyberCiphertext{bytes: b}, nil
}

// Bytes returns the raw ciphertext.
func (ct *KyberCiphertext) Bytes() []byte {
	if ct == nil {
		return nil
	}
	return ct.bytes
}

// --- SharedSecret ---

// Bytes returns the raw 32-byte secret. The slice aliases the wrapper's
// storage and becomes zero after Wipe.
func (ss *SharedSecret) Bytes() []byte {
	if ss == nil {
		return nil
	}
	return ss.bytes
}

// Equal compares two shared secrets in constant time.
func (ss *SharedSecret) Equal(other *SharedSecret) bool {
	if ss == nil || other == nil {
		return ss == other
	}
	return ConstantTimeCompare(ss.bytes, other.bytes)
}

// Wipe overwrites the secret.
func (ss *SharedSecret) Wipe() {
	if ss == nil {
		return
	}
	Zeroize(ss.bytes)
}

// String implements fmt.Stringer with a fixed redaction token.
func (ss *SharedSecret) String() string { return "SharedSecret(" + redacted + ")" }

// GoString keeps %#v output redacted.
func (ss *SharedSecret) GoString() string { return ss.String() }
