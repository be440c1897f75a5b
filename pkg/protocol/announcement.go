package protocol

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pranshurastogi/specter/internal/constants"
	serrors "github.com/pranshurastogi/specter/internal/errors"
)

// Announcement is a published payment notice: the encapsulated ephemeral
// key, the filter tag, and a timestamp, plus optional on-chain context.
// Bodies are immutable once published; the registry owns the ID.
//
// Canonical binary layout:
//
//	ephemeral_key (1088) || view_tag (1) || timestamp (8 LE) ||
//	has_channel (1) || channel_id (32, iff has_channel = 1)
//
// The ID and the on-chain fields are registry-side and not serialized.
type Announcement struct {
	ID           uint64    `json:"id"`
	EphemeralKey HexBytes  `json:"ephemeral_key"`
	ViewTag      uint8     `json:"view_tag"`
	Timestamp    uint64    `json:"timestamp"`
	ChannelID    *HexBytes `json:"channel_id,omitempty"`
	BlockNumber  *uint64   `json:"block_number,omitempty"`
	TxHash       string    `json:"tx_hash,omitempty"`
}

// NewAnnouncement creates an announcement stamped with the current time.
func NewAnnouncement(ephemeralKey []byte, viewTag uint8) *Announcement {
	return &Announcement{
		EphemeralKey: append(HexBytes(nil), ephemeralKey...),
		ViewTag:      viewTag,
		Timestamp:    uint64(time.Now().Unix()),
	}
}

// NewAnnouncementWithChannel creates an announcement carrying a 32-byte
// channel identifier.
func NewAnnouncementWithChannel(ephemeralKey []byte, viewTag uint8, channelID [constants.ChannelIDSize]byte) *Announcement {
	a := NewAnnouncement(ephemeralKey, viewTag)
	ch := append(HexBytes(nil), channelID[:]...)
	a.ChannelID = &ch
	return a
}

// Validate enforces the publication-time invariants: ephemeral key exactly
// 1088 bytes and not all zero, channel ID (when present) exactly 32 bytes,
// timestamp not more than one hour in the future.
func (a *Announcement) Validate() error {
	if len(a.EphemeralKey) != constants.KyberCiphertextSize {
		return serrors.NewInvalidAnnouncement(fmt.Sprintf(
			"ephemeral key size mismatch: expected %d, got %d",
			constants.KyberCiphertextSize, len(a.EphemeralKey)))
	}
	if allZero(a.EphemeralKey) {
		return serrors.NewInvalidAnnouncement("ephemeral key is all zeros")
	}
	if a.ChannelID != nil && len(*a.ChannelID) != constants.ChannelIDSize {
		return serrors.NewInvalidAnnouncement(fmt.Sprintf(
			"channel id size mismatch: expected %d, got %d",
			constants.ChannelIDSize, len(*a.ChannelID)))
	}
	now := uint64(time.Now().Unix())
	if a.Timestamp > now+constants.MaxTimestampSkewSeconds {
		return serrors.NewInvalidAnnouncement("timestamp is too far in the future")
	}
	return nil
}

// ToBytes serializes to the canonical binary layout. The ID is not part
// of the encoding.
func (a *Announcement) ToBytes() []byte {
	size := constants.AnnouncementMinSize
	if a.ChannelID != nil {
		size += constants.ChannelIDSize
	}
	out := make([]byte, 0, size)
	out = append(out, a.EphemeralKey...)
	out = append(out, a.ViewTag)
	out = binary.LittleEndian.AppendUint64(out, a.Timestamp)
	if a.ChannelID != nil {
		out = append(out, 1)
		out = append(out, *a.ChannelID...)
	} else {
		out = append(out, 0)
	}
	return out
}

// AnnouncementFromBytes parses the canonical layout. Lengths must match
// exactly: trailing bytes and a has_channel flag other than 0/1 are
// rejected. The result is validated before being returned.
func AnnouncementFromBytes(b []byte) (*Announcement, error) {
	if len(b) < constants.AnnouncementMinSize {
		return nil, serrors.NewInvalidAnnouncement(fmt.Sprintf(
			"too short: %d bytes, minimum %d", len(b), constants.AnnouncementMinSize))
	}

	a := &Announcement{
		EphemeralKey: append(HexBytes(nil), b[:constants.KyberCiphertextSize]...),
		ViewTag:      b[constants.KyberCiphertextSize],
	}
	tsOff := constants.KyberCiphertextSize + constants.ViewTagSize
	a.Timestamp = binary.LittleEndian.Uint64(b[tsOff : tsOff+8])

	switch b[tsOff+8] {
	case 0:
		if len(b) != constants.AnnouncementMinSize {
			return nil, serrors.NewInvalidAnnouncement("trailing bytes after announcement")
		}
	case 1:
		if len(b) != constants.AnnouncementMinSize+constants.ChannelIDSize {
			return nil, serrors.NewInvalidAnnouncement("channel id length mismatch")
		}
		ch := append(HexBytes(nil), b[constants.AnnouncementMinSize:]...)
		a.ChannelID = &ch
	default:
		return nil, serrors.NewInvalidAnnouncement("invalid has_channel flag")
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Equal compares announcement bodies, ignoring the registry-assigned ID
// and on-chain fields.
func (a *Announcement) Equal(other *Announcement) bool {
	if a == nil || other == nil {
		return a == other
	}
	if a.ViewTag != other.ViewTag || a.Timestamp != other.Timestamp {
		return false
	}
	if string(a.EphemeralKey) != string(other.EphemeralKey) {
		return false
	}
	switch {
	case a.ChannelID == nil && other.ChannelID == nil:
		return true
	case a.ChannelID == nil || other.ChannelID == nil:
		return false
	default:
		return string(*a.ChannelID) == string(*other.ChannelID)
	}
}

// AnnouncementBuilder assembles an announcement with optional fields.
type AnnouncementBuilder struct {
	ephemeralKey []byte
	viewTag      *uint8
	timestamp    *uint64
	channelID    *[constants.ChannelIDSize]byte
	blockNumber  *uint64
	txHash       string
}

// NewAnnouncementBuilder creates an empty builder.
func NewAnnouncementBuilder() *AnnouncementBuilder {
	return &AnnouncementBuilder{}
}

// EphemeralKey sets the Kyber ciphertext (required).
func (b *AnnouncementBuilder) EphemeralKey(key []byte) *AnnouncementBuilder {
	b.ephemeralKey = key
	return b
}

// ViewTag sets the filter tag (required).
func (b *AnnouncementBuilder) ViewTag(tag uint8) *AnnouncementBuilder {
	b.viewTag = &tag
	return b
}

// Timestamp overrides the creation time.
func (b *AnnouncementBuilder) Timestamp(ts uint64) *AnnouncementBuilder {
	b.timestamp = &ts
	return b
}

// ChannelID attaches a 32-byte channel identifier.
func (b *AnnouncementBuilder) ChannelID(id [constants.ChannelIDSize]byte) *AnnouncementBuilder {
	b.channelID = &id
	return b
}

// BlockNumber attaches the on-chain block number.
func (b *AnnouncementBuilder) BlockNumber(n uint64) *AnnouncementBuilder {
	b.blockNumber = &n
	return b
}

// TxHash attaches the on-chain transaction hash.
func (b *AnnouncementBuilder) TxHash(hash string) *AnnouncementBuilder {
	b.txHash = hash
	return b
}

// Build validates and returns the announcement.
func (b *AnnouncementBuilder) Build() (*Announcement, error) {
	if b.ephemeralKey == nil {
		return nil, serrors.NewInvalidAnnouncement("ephemeral_key is required")
	}
	if b.viewTag == nil {
		return nil, serrors.NewInvalidAnnouncement("view_tag is required")
	}

	a := NewAnnouncement(b.ephemeralKey, *b.viewTag)
	if b.timestamp != nil {
		a.Timestamp = *b.timestamp
	}
	if b.channelID != nil {
		ch := append(HexBytes(nil), b.channelID[:]...)
		a.ChannelID = &ch
	}
	a.BlockNumber = b.blockNumber
	a.TxHash = b.txHash

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// AnnouncementStats summarizes a registry's contents.
type AnnouncementStats struct {
	TotalCount          uint64                         `json:"total_count"`
	ViewTagDistribution [constants.ViewTagSpace]uint64 `json:"view_tag_distribution"`
	EarliestTimestamp   *uint64                        `json:"earliest_timestamp,omitempty"`
	LatestTimestamp     *uint64                        `json:"latest_timestamp,omitempty"`
	ChannelCount        uint64                         `json:"channel_count"`
}

// Add folds one announcement into the stats. Counts are monotonic.
func (s *AnnouncementStats) Add(a *Announcement) {
	s.TotalCount++
	s.ViewTagDistribution[a.ViewTag]++

	ts := a.Timestamp
	if s.EarliestTimestamp == nil || ts < *s.EarliestTimestamp {
		earliest := ts
		s.EarliestTimestamp = &earliest
	}
	if s.LatestTimestamp == nil || ts > *s.LatestTimestamp {
		latest := ts
		s.LatestTimestamp = &latest
	}
	if a.ChannelID != nil {
		s.ChannelCount++
	}
}

// Clone returns an independent copy.
func (s *AnnouncementStats) Clone() AnnouncementStats {
	out := *s
	if s.EarliestTimestamp != nil {
		v := *s.EarliestTimestamp
		out.EarliestTimestamp = &v
	}
	if s.LatestTimestamp != nil {
		v := *s.LatestTimestamp
		out.LatestTimestamp = &v
	}
	return out
}
