// hash.go implements the domain-separated hashing used across SPECTER.
//
// All protocol hashing goes through SHAKE256 (FIPS 202 XOF) with a
// length-prefixed domain separator:
//
//	output = SHAKE256(len(domain)_le_u32 || domain || input, n)
//
// The length prefix pins the domain/input boundary: without it, moving
// bytes between domain and input could reproduce an absorb state from a
// different context.
//
// Keccak-256 is kept separately for Ethereum address math. Keccak-256 is
// not SHA3-256; the two differ in padding.
package crypto

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/pranshurastogi/specter/internal/constants"
)

// Shake256 computes n bytes of SHAKE256 over a domain-separated input.
func Shake256(domain, input []byte, n int) []byte {
	h := sha3.NewShake256()

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(domain)))
	h.Write(lenBuf[:])
	h.Write(domain)

	h.Write(input)

	out := make([]byte, n)
	h.Read(out) // never fails
	return out
}

// Shake256Multi hashes several inputs under one domain. Each input is
// prefixed with its length as a little-endian u64, so splitting the same
// bytes differently ("ab"+"cd" vs "abc"+"d") changes the output.
func Shake256Multi(domain []byte, inputs [][]byte, n int) []byte {
	h := sha3.NewShake256()

	var lenBuf [8]byte
	binary.LittleEndian.PutUint32(lenBuf[:4], uint32(len(domain)))
	h.Write(lenBuf[:4])
	h.Write(domain)

	for _, input := range inputs {
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(input)))
		h.Write(lenBuf[:])
		h.Write(input)
	}

	out := make([]byte, n)
	h.Read(out)
	return out
}

// Shake256XOF returns a streaming reader over the domain-separated XOF,
// for callers that squeeze output incrementally.
func Shake256XOF(domain, input []byte) *XOFReader {
	h := sha3.NewShake256()

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(domain)))
	h.Write(lenBuf[:])
	h.Write(domain)
	h.Write(input)

	return &XOFReader{state: h}
}

// XOFReader streams SHAKE256 output.
type XOFReader struct {
	state sha3.ShakeHash
}

// Read fills p with the next output bytes. It never returns an error.
func (r *XOFReader) Read(p []byte) (int, error) {
	return r.state.Read(p)
}

// Keccak256 computes the Keccak-256 digest used by Ethereum.
func Keccak256(input []byte) [constants.Keccak256Size]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(input)
	var out [constants.Keccak256Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
