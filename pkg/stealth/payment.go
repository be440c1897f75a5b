// Package stealth implements the sender and recipient sides of the
// SPECTER protocol: payment creation against a meta-address, and wallet
// scanning of announcements.
package stealth

import (
	serrors "github.com/pranshurastogi/specter/internal/errors"
	"github.com/pranshurastogi/specter/pkg/crypto"
	"github.com/pranshurastogi/specter/pkg/protocol"
)

// Payment is a fully assembled stealth payment: the one-time destination
// plus the announcement to publish.
type Payment struct {
	// Result carries the destination address, ciphertext, and view tag.
	Result protocol.StealthAddressResult
	// Announcement is ready for registry publication.
	Announcement *protocol.Announcement
	// Metadata describes the payment off-protocol.
	Metadata PaymentMetadata
}

// PaymentMetadata is informational only; no field participates in any
// derivation.
type PaymentMetadata struct {
	RecipientName string `json:"recipient_name,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Token         string `json:"token,omitempty"`
	Memo          string `json:"memo,omitempty"`
}

// CreatePayment builds a stealth payment to a recipient's meta-address:
//
//  1. Validate the meta-address.
//  2. Encapsulate to the viewing key → (ciphertext, shared secret).
//  3. Derive the view tag from the shared secret.
//  4. Derive the one-time secp256k1 address from the spending key and
//     the shared secret.
//
// The shared secret is wiped before returning; only the address survives
// on the sender side.
func CreatePayment(meta *protocol.MetaAddress) (*Payment, error) {
	if meta == nil {
		return nil, serrors.ErrInvalidMetaAddress
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	viewingPK, err := crypto.ParseKyberPublicKey(meta.ViewingPK)
	if err != nil {
		return nil, err
	}

	ct, ss, err := crypto.Encapsulate(viewingPK)
	if err != nil {
		return nil, err
	}
	defer ss.Wipe()

	tag := crypto.ComputeViewTag(ss)

	addrBytes, err := crypto.DeriveStealthAddress(meta.SpendingPK, ss)
	if err != nil {
		return nil, err
	}

	var addr protocol.EthAddress
	copy(addr[:], addrBytes[:])

	ann := protocol.NewAnnouncement(ct.Bytes(), tag)

	return &Payment{
		Result: protocol.StealthAddressResult{
			Address:             addr,
			EphemeralCiphertext: append(protocol.HexBytes(nil), ct.Bytes()...),
			ViewTag:             tag,
		},
		Announcement: ann,
	}, nil
}

// PaymentBuilder assembles a payment with optional metadata and channel
// binding.
type PaymentBuilder struct {
	meta          *protocol.MetaAddress
	recipientName string
	amount        string
	token         string
	memo          string
	channelID     *[32]byte
}

// NewPaymentBuilder creates an empty builder.
func NewPaymentBuilder() *PaymentBuilder {
	return &PaymentBuilder{}
}

// Recipient sets the destination meta-address (required).
func (b *PaymentBuilder) Recipient(meta *protocol.MetaAddress) *PaymentBuilder {
	b.meta = meta
	return b
}

// RecipientName records the resolved name for the metadata.
func (b *PaymentBuilder) RecipientName(name string) *PaymentBuilder {
	b.recipientName = name
	return b
}

// Amount records the informational amount.
func (b *PaymentBuilder) Amount(amount string) *PaymentBuilder {
	b.amount = amount
	return b
}

// Token records the informational token symbol.
func (b *PaymentBuilder) Token(token string) *PaymentBuilder {
	b.token = token
	return b
}

// Memo records a free-form note. Never published on-wire.
func (b *PaymentBuilder) Memo(memo string) *PaymentBuilder {
	b.memo = memo
	return b
}

// ChannelID binds the announcement to a state channel.
func (b *PaymentBuilder) ChannelID(id [32]byte) *PaymentBuilder {
	b.channelID = &id
	return b
}

// Build creates the payment.
func (b *PaymentBuilder) Build() (*Payment, error) {
	if b.meta == nil {
		return nil, serrors.ErrInvalidMetaAddress
	}

	payment, err := CreatePayment(b.meta)
	if err != nil {
		return nil, err
	}

	if b.channelID != nil {
		ch := append(protocol.HexBytes(nil), b.channelID[:]...)
		payment.Announcement.ChannelID = &ch
	}
	payment.Metadata = PaymentMetadata{
		RecipientName: b.recipientName,
		Amount:        b.amount,
		Token:         b.token,
		Memo:          b.memo,
	}
	return payment, nil
}
