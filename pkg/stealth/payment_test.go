package stealth_test

import (
	"bytes"
	"testing"

	"github.com/pranshurastogi/specter/internal/constants"
	"github.com/pranshurastogi/specter/pkg/crypto"
	"github.com/pranshurastogi/specter/pkg/protocol"
	"github.com/pranshurastogi/specter/pkg/stealth"
)

func testWallet(t *testing.T) *stealth.Wallet {
	t.Helper()
	w, err := stealth.GenerateWallet()
	if err != nil {
		t.Fatalf("GenerateWallet failed: %v", err)
	}
	return w
}

func TestCreatePayment(t *testing.T) {
	w := testWallet(t)
	defer w.Wipe()

	payment, err := stealth.CreatePayment(w.MetaAddress())
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	if payment.Result.Address.IsZero() {
		t.Error("stealth address is zero")
	}
	if len(payment.Result.EphemeralCiphertext) != constants.KyberCiphertextSize {
		t.Errorf("ciphertext length: got %d, want %d",
			len(payment.Result.EphemeralCiphertext), constants.KyberCiphertextSize)
	}
	if err := payment.Announcement.Validate(); err != nil {
		t.Errorf("announcement should validate: %v", err)
	}
	if payment.Announcement.ViewTag != payment.Result.ViewTag {
		t.Error("announcement and result carry different view tags")
	}
}

// Universal invariant 6: repeated payments to the same meta-address land
// at different destinations.
func TestCreatePaymentUnlinkable(t *testing.T) {
	w := testWallet(t)
	defer w.Wipe()

	p1, err := stealth.CreatePayment(w.MetaAddress())
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	p2, err := stealth.CreatePayment(w.MetaAddress())
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	if p1.Result.Address == p2.Result.Address {
		t.Error("two payments derived the same address")
	}
	if bytes.Equal(p1.Result.EphemeralCiphertext, p2.Result.EphemeralCiphertext) {
		t.Error("two payments produced the same ciphertext")
	}
}

func TestCreatePaymentRejectsInvalidMeta(t *testing.T) {
	if _, err := stealth.CreatePayment(nil); err == nil {
		t.Error("nil meta-address should be rejected")
	}

	w := testWallet(t)
	defer w.Wipe()
	bad := *w.MetaAddress()
	bad.ViewingPK = make(protocol.HexBytes, constants.KyberPublicKeySize)
	if _, err := stealth.CreatePayment(&bad); err == nil {
		t.Error("zero viewing key should be rejected")
	}

	bad2 := *w.MetaAddress()
	bad2.Version = 0
	if _, err := stealth.CreatePayment(&bad2); err == nil {
		t.Error("version 0 should be rejected")
	}
}

// E3: the announcement decapsulates to the same secret the sender used,
// and the derived signing key controls the published address.
func TestPaymentWalletCompatibility(t *testing.T) {
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

	payment, err := stealth.CreatePayment(meta)
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}

	ct, err := crypto.NewKyberCiphertext(payment.Result.EphemeralCiphertext)
	if err != nil {
		t.Fatalf("NewKyberCiphertext failed: %v", err)
	}
	ss, err := crypto.Decapsulate(ct, viewing.Secret)
	if err != nil {
		t.Fatalf("Decapsulate failed: %v", err)
	}
	defer ss.Wipe()

	keys, err := crypto.DeriveStealthKeys(spending.Public.Bytes(), ss)
	if err != nil {
		t.Fatalf("DeriveStealthKeys failed: %v", err)
	}
	defer keys.Wipe()

	if !bytes.Equal(keys.Address[:], payment.Result.Address[:]) {
		t.Error("recipient-derived address differs from sender's")
	}

	fromKey, err := crypto.AddressFromPrivateKey(keys.PrivateKey)
	if err != nil {
		t.Fatalf("AddressFromPrivateKey failed: %v", err)
	}
	if !bytes.Equal(fromKey[:], payment.Result.Address[:]) {
		t.Error("derived signing key does not control the published address")
	}
}

func TestPaymentBuilder(t *testing.T) {
	w := testWallet(t)
	defer w.Wipe()

	var channel [32]byte
	channel[0] = 0xCC

	payment, err := stealth.NewPaymentBuilder().
		Recipient(w.MetaAddress()).
		RecipientName("alice.eth").
		Amount("1.5").
		Token("ETH").
		Memo("thanks").
		ChannelID(channel).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if payment.Metadata.RecipientName != "alice.eth" || payment.Metadata.Token != "ETH" {
		t.Error("builder dropped metadata")
	}
	if payment.Announcement.ChannelID == nil || !bytes.Equal(*payment.Announcement.ChannelID, channel[:]) {
		t.Error("builder dropped channel id")
	}
	if err := payment.Announcement.Validate(); err != nil {
		t.Errorf("announcement should validate: %v", err)
	}
}

func TestPaymentBuilderRequiresRecipient(t *testing.T) {
	if _, err := stealth.NewPaymentBuilder().Amount("1").Build(); err == nil {
		t.Error("missing recipient should fail")
	}
}
