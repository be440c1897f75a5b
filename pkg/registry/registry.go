// Package registry stores published announcements with view-tag-indexed
// lookup. A concurrent in-memory store is the base; a file-backed variant
// layers persistence on top of it behind the same interface.
package registry

import (
	"github.com/pranshurastogi/specter/pkg/protocol"
)

// Registry is the capability surface a host needs to publish and query
// announcements. All implementations are safe for concurrent use.
type Registry interface {
	// Publish validates the announcement, assigns it a unique id, and
	// indexes it. Ids are monotonically non-decreasing within a process.
	// A duplicate normalized tx hash fails with ErrDuplicateAnnouncement.
	Publish(ann *protocol.Announcement) (uint64, error)

	// GetByViewTag returns the announcements in a tag bucket, in insertion
	// order. Every announcement whose Publish completed before this call
	// started is visible.
	GetByViewTag(tag uint8) ([]*protocol.Announcement, error)

	// GetByTimeRange returns announcements with timestamp in [start, end],
	// sorted ascending by timestamp. Linear scan; meant for offline audit.
	GetByTimeRange(start, end uint64) ([]*protocol.Announcement, error)

	// GetByID returns one announcement, or ErrAnnouncementNotFound.
	GetByID(id uint64) (*protocol.Announcement, error)

	// Count returns the number of stored announcements.
	Count() (uint64, error)

	// NextID returns the id the next successful Publish will assign.
	NextID() (uint64, error)
}

// cloneAnnouncement copies an announcement so stored bodies stay immutable
// regardless of what callers do with the returned values.
func cloneAnnouncement(a *protocol.Announcement) *protocol.Announcement {
	cp := &protocol.Announcement{
		ID:           a.ID,
		EphemeralKey: append(protocol.HexBytes(nil), a.EphemeralKey...),
		ViewTag:      a.ViewTag,
		Timestamp:    a.Timestamp,
		TxHash:       a.TxHash,
	}
	if a.ChannelID != nil {
		ch := append(protocol.HexBytes(nil), *a.ChannelID...)
		cp.ChannelID = &ch
	}
	if a.BlockNumber != nil {
		n := *a.BlockNumber
		cp.BlockNumber = &n
	}
	return cp
}
