// Package specter implements a post-quantum stealth-address protocol.
//
// A recipient publishes a long-lived meta-address: a version byte and two
// ML-KEM-768 (NIST FIPS 203) public keys, one for viewing and one for
// spending. A sender who knows only the meta-address encapsulates to the
// viewing key and derives a one-time Ethereum destination plus a compact
// announcement:
//
//	meta := wallet.MetaAddress()
//	payment, _ := stealth.CreatePayment(meta)
//	registry.Publish(payment.Announcement)
//
// The recipient scans the public announcement stream. A 1-byte view tag
// derived from the shared secret filters out ~99.6% of announcements
// after decapsulation and before any key derivation; matches yield the destination's secp256k1
// private key, spendable by any standard wallet:
//
//	sc := scanner.New(wallet)
//	discoveries, _ := sc.ScanAll(ctx, reg)
//
// An on-chain observer sees only the ciphertext, the tag, and a timestamp,
// and cannot link the destination to the recipient; ML-KEM hardness keeps
// that true against a future quantum adversary.
//
// # Package Structure
//
//   - pkg/crypto: ML-KEM-768 wrapper, domain-separated SHAKE256/Keccak-256,
//     view tags, secp256k1 stealth derivation
//   - pkg/protocol: meta-addresses, announcements, address/key types, and
//     their canonical binary encodings
//   - pkg/stealth: sender-side payment creation and the recipient wallet
//   - pkg/registry: concurrent view-tag-indexed announcement stores,
//     in-memory and file-backed
//   - pkg/scanner: batched, resumable discovery over a registry
//   - pkg/resolver: interfaces to name services and content-addressed storage
//   - pkg/metrics: structured logging and pluggable tracing
//   - internal/constants, internal/errors: parameters and error taxonomy
package specter
