package errors

import (
	"fmt"
	"testing"
)

func TestCryptoErrorWrapping(t *testing.T) {
	err := NewCryptoError("Encapsulate", ErrEncapsulation)

	if !Is(err, ErrEncapsulation) {
		t.Error("CryptoError should unwrap to its sentinel")
	}

	var ce *CryptoError
	if !As(err, &ce) {
		t.Fatal("errors.As should find CryptoError")
	}
	if ce.Op != "Encapsulate" {
		t.Errorf("Op: got %q, want %q", ce.Op, "Encapsulate")
	}
}

func TestInvalidKeySizeError(t *testing.T) {
	err := &InvalidKeySizeError{Expected: 1184, Actual: 100}
	msg := err.Error()
	if msg != "crypto: invalid key size: expected 1184 bytes, got 100" {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestClassificationHelpers(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		recoverable bool
		crypto      bool
		validation  bool
	}{
		{"timeout", ErrTimeout, true, false, false},
		{"wrapped timeout", fmt.Errorf("ipfs: %w", ErrTimeout), true, false, false},
		{"decapsulation", ErrDecapsulation, false, true, false},
		{"key size", &InvalidKeySizeError{Expected: 32, Actual: 16}, false, true, false},
		{"ciphertext size", &InvalidCiphertextSizeError{Expected: 1088, Actual: 1087}, false, true, false},
		{"meta address", ErrInvalidMetaAddress, false, false, true},
		{"announcement", NewInvalidAnnouncement("bad"), false, false, true},
		{"view tag", &ViewTagMismatchError{Expected: 1, Actual: 2}, false, false, true},
		{"version", &VersionMismatchError{Expected: 1, Actual: 9}, false, false, true},
		{"registry", ErrRegistry, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverable(tt.err); got != tt.recoverable {
				t.Errorf("IsRecoverable = %v, want %v", got, tt.recoverable)
			}
			if got := IsCryptoError(tt.err); got != tt.crypto {
				t.Errorf("IsCryptoError = %v, want %v", got, tt.crypto)
			}
			if got := IsValidationError(tt.err); got != tt.validation {
				t.Errorf("IsValidationError = %v, want %v", got, tt.validation)
			}
		})
	}
}

func TestViewTagMismatchMessageNonEmpty(t *testing.T) {
	// A view tag mismatch error renders a human-readable message.
	err := &ViewTagMismatchError{Expected: 0xAB, Actual: 0xCD}
	if err.Error() == "" {
		t.Error("expected human-readable message")
	}
}
