package stealth

import (
	"fmt"

	serrors "github.com/pranshurastogi/specter/internal/errors"
	"github.com/pranshurastogi/specter/pkg/crypto"
	"github.com/pranshurastogi/specter/pkg/protocol"
)

// Wallet holds a recipient's spending and viewing key pairs and performs
// announcement discovery. The viewing pair decapsulates announcements;
// the spending pair controls derived destinations.
type Wallet struct {
	spending *crypto.KeyPair
	viewing  *crypto.KeyPair
	meta     *protocol.MetaAddress
}

// GenerateWallet creates a wallet with two fresh key pairs.
func GenerateWallet() (*Wallet, error) {
	spending, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	viewing, err := crypto.GenerateKeyPair()
	if err != nil {
		spending.Wipe()
		return nil, err
	}
	return newWallet(spending, viewing)
}

// WalletFromSeeds derives a wallet deterministically from two 64-byte
// seeds, for backup and restore. The caller keeps ownership of the seeds.
func WalletFromSeeds(spendingSeed, viewingSeed []byte) (*Wallet, error) {
	spending, err := crypto.NewKeyPairFromSeed(spendingSeed)
	if err != nil {
		return nil, err
	}
	viewing, err := crypto.NewKeyPairFromSeed(viewingSeed)
	if err != nil {
		spending.Wipe()
		return nil, err
	}
	return newWallet(spending, viewing)
}

// WalletFromKeyPairs wraps existing key pairs. The wallet takes ownership
// and wipes them on Wipe.
func WalletFromKeyPairs(spending, viewing *crypto.KeyPair) (*Wallet, error) {
	if spending == nil || viewing == nil {
		return nil, serrors.ErrInvalidMetaAddress
	}
	return newWallet(spending, viewing)
}

func newWallet(spending, viewing *crypto.KeyPair) (*Wallet, error) {
	meta, err := protocol.NewMetaAddress(spending.Public.Bytes(), viewing.Public.Bytes())
	if err != nil {
		spending.Wipe()
		viewing.Wipe()
		return nil, err
	}
	return &Wallet{spending: spending, viewing: viewing, meta: meta}, nil
}

// MetaAddress returns the wallet's publishable meta-address.
func (w *Wallet) MetaAddress() *protocol.MetaAddress {
	return w.meta
}

// SpendingPublicKey returns the packed spending public key.
func (w *Wallet) SpendingPublicKey() []byte {
	return w.spending.Public.Bytes()
}

// ViewingPublicKey returns the packed viewing public key.
func (w *Wallet) ViewingPublicKey() []byte {
	return w.viewing.Public.Bytes()
}

// TryDiscover scans one announcement. Decapsulation ALWAYS runs before the
// tag comparison: short-circuiting on the tag would let an observer time
// out which announcements are ours. On a tag mismatch no derivation work
// happens and the result is (nil, nil) — not-for-us is not an error.
func (w *Wallet) TryDiscover(ephemeralKey []byte, expectedViewTag uint8) (*protocol.DiscoveredAddress, error) {
	ct, err := crypto.NewKyberCiphertext(ephemeralKey)
	if err != nil {
		return nil, serrors.NewCryptoError("TryDiscover", err)
	}

	ss, err := crypto.Decapsulate(ct, w.viewing.Secret)
	if err != nil {
		return nil, err
	}
	defer ss.Wipe()

	if !crypto.VerifyViewTag(ss, expectedViewTag) {
		return nil, nil
	}

	derived, err := crypto.DeriveStealthKeys(w.meta.SpendingPK, ss)
	if err != nil {
		return nil, err
	}

	key, err := protocol.NewEthPrivateKey(derived.PrivateKey)
	derived.Wipe()
	if err != nil {
		return nil, err
	}

	var addr protocol.EthAddress
	copy(addr[:], derived.Address[:])

	return &protocol.DiscoveredAddress{
		Address:    addr,
		PrivateKey: key,
	}, nil
}

// ScanAnnouncement runs TryDiscover against a full announcement and stamps
// the discovery with the announcement's registry context.
func (w *Wallet) ScanAnnouncement(ann *protocol.Announcement) (*protocol.DiscoveredAddress, error) {
	found, err := w.TryDiscover(ann.EphemeralKey, ann.ViewTag)
	if err != nil || found == nil {
		return nil, err
	}
	found.AnnouncementID = ann.ID
	found.Timestamp = ann.Timestamp
	return found, nil
}

// ScanAnnouncements scans a batch, collecting discoveries. Per-announcement
// failures are skipped; use the scanner package when error accounting
// matters.
func (w *Wallet) ScanAnnouncements(anns []*protocol.Announcement) []*protocol.DiscoveredAddress {
	var found []*protocol.DiscoveredAddress
	for _, ann := range anns {
		d, err := w.ScanAnnouncement(ann)
		if err != nil || d == nil {
			continue
		}
		found = append(found, d)
	}
	return found
}

// ViewingKeyExport is the shareable audit view of a wallet: public keys
// only. A holder can verify the meta-address but cannot scan or spend.
type ViewingKeyExport struct {
	ViewingPublicKey  string `json:"viewing_public_key"`
	SpendingPublicKey string `json:"spending_public_key"`
}

// ExportViewingKey returns the audit export.
func (w *Wallet) ExportViewingKey() ViewingKeyExport {
	return ViewingKeyExport{
		ViewingPublicKey:  "0x" + fmt.Sprintf("%x", w.viewing.Public.Bytes()),
		SpendingPublicKey: "0x" + fmt.Sprintf("%x", w.spending.Public.Bytes()),
	}
}

// Wipe overwrites all secret key material held by the wallet.
func (w *Wallet) Wipe() {
	w.spending.Wipe()
	w.viewing.Wipe()
}

// String implements fmt.Stringer; keys never appear.
func (w *Wallet) String() string {
	return "Wallet{keys: [REDACTED]}"
}

// GoString keeps %#v output redacted.
func (w *Wallet) GoString() string { return w.String() }
