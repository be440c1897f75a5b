// Package errors defines the error taxonomy for the SPECTER protocol.
// Error messages never contain secret material: no private keys, shared
// secrets, ciphertexts, or any prefix of them.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for cryptographic operations
var (
	// ErrKeyGeneration indicates KEM key generation failed.
	ErrKeyGeneration = errors.New("crypto: key generation failed")

	// ErrEncapsulation indicates KEM encapsulation failed.
	ErrEncapsulation = errors.New("crypto: encapsulation failed")

	// ErrDecapsulation indicates KEM decapsulation could not run.
	// Note: a well-formed ciphertext under the wrong key is NOT an error
	// (implicit rejection); this fires only for malformed inputs.
	ErrDecapsulation = errors.New("crypto: decapsulation failed")

	// ErrVerificationFailed indicates a derivation or verification step
	// could not produce a valid result.
	ErrVerificationFailed = errors.New("crypto: verification failed")
)

// Sentinel errors for data validation
var (
	// ErrInvalidMetaAddress indicates a malformed meta-address.
	ErrInvalidMetaAddress = errors.New("data: invalid meta-address")

	// ErrInvalidStealthAddress indicates a malformed stealth address.
	ErrInvalidStealthAddress = errors.New("data: invalid stealth address")
)

// Sentinel errors for registry operations
var (
	// ErrDuplicateAnnouncement indicates a tx hash collision on publish.
	ErrDuplicateAnnouncement = errors.New("registry: duplicate announcement")

	// ErrAnnouncementNotFound indicates a lookup for an unknown id.
	ErrAnnouncementNotFound = errors.New("registry: announcement not found")

	// ErrRegistry indicates an I/O failure or invariant violation.
	ErrRegistry = errors.New("registry: operation failed")
)

// Sentinel errors for serialization
var (
	// ErrHex indicates malformed hexadecimal input.
	ErrHex = errors.New("serialization: invalid hex")

	// ErrBinary indicates a malformed binary encoding.
	ErrBinary = errors.New("serialization: invalid binary encoding")

	// ErrJSON indicates malformed JSON.
	ErrJSON = errors.New("serialization: invalid json")
)

// Sentinel errors for external collaborators
var (
	// ErrNameNotFound indicates a name-service lookup returned no record.
	ErrNameNotFound = errors.New("resolver: name not found")

	// ErrInvalidRecord indicates a name-service record could not be parsed
	// as a meta-address.
	ErrInvalidRecord = errors.New("resolver: invalid record")

	// ErrTimeout indicates a collaborator request exceeded its deadline.
	ErrTimeout = errors.New("resolver: request timed out")
)

// CryptoError wraps a cryptographic failure with the operation that produced it.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a CryptoError.
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// InvalidKeySizeError reports a key with the wrong length.
type InvalidKeySizeError struct {
	Expected int
	Actual   int
}

func (e *InvalidKeySizeError) Error() string {
	return fmt.Sprintf("crypto: invalid key size: expected %d bytes, got %d", e.Expected, e.Actual)
}

// InvalidCiphertextSizeError reports a ciphertext with the wrong length.
type InvalidCiphertextSizeError struct {
	Expected int
	Actual   int
}

func (e *InvalidCiphertextSizeError) Error() string {
	return fmt.Sprintf("crypto: invalid ciphertext size: expected %d bytes, got %d", e.Expected, e.Actual)
}

// InvalidAnnouncementError reports why an announcement failed validation.
type InvalidAnnouncementError struct {
	Reason string
}

func (e *InvalidAnnouncementError) Error() string {
	return "data: invalid announcement: " + e.Reason
}

// NewInvalidAnnouncement creates an InvalidAnnouncementError.
func NewInvalidAnnouncement(reason string) *InvalidAnnouncementError {
	return &InvalidAnnouncementError{Reason: reason}
}

// ViewTagMismatchError reports a tag comparison failure. Only produced when
// a caller explicitly asks for tag verification; a mismatch during scanning
// is the ordinary not-for-us outcome, not an error.
type ViewTagMismatchError struct {
	Expected uint8
	Actual   uint8
}

func (e *ViewTagMismatchError) Error() string {
	return fmt.Sprintf("data: view tag mismatch: expected 0x%02x, got 0x%02x", e.Expected, e.Actual)
}

// VersionMismatchError reports an unsupported serialization version.
type VersionMismatchError struct {
	Expected uint8
	Actual   uint8
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("data: version mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// IsRecoverable reports whether the error is worth retrying. Only the
// network/timeout class qualifies; validation and crypto failures are
// deterministic.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCryptoError reports whether the error originated in a cryptographic
// operation.
func IsCryptoError(err error) bool {
	var ce *CryptoError
	var ks *InvalidKeySizeError
	var cs *InvalidCiphertextSizeError
	return errors.As(err, &ce) || errors.As(err, &ks) || errors.As(err, &cs) ||
		errors.Is(err, ErrKeyGeneration) || errors.Is(err, ErrEncapsulation) ||
		errors.Is(err, ErrDecapsulation) || errors.Is(err, ErrVerificationFailed)
}

// IsValidationError reports whether the error came from input validation.
func IsValidationError(err error) bool {
	var ia *InvalidAnnouncementError
	var vt *ViewTagMismatchError
	var vm *VersionMismatchError
	return errors.As(err, &ia) || errors.As(err, &vt) || errors.As(err, &vm) ||
		errors.Is(err, ErrInvalidMetaAddress) || errors.Is(err, ErrInvalidStealthAddress)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
