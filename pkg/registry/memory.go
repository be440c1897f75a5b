package registry

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	serrors "github.com/pranshurastogi/specter/internal/errors"
	"github.com/pranshurastogi/specter/pkg/metrics"
	"github.com/pranshurastogi/specter/pkg/protocol"
)

// MemoryRegistry is a thread-safe in-memory announcement store.
//
// Three structures are kept in agreement under one lock: the primary
// id → announcement map, 256 view-tag buckets of insertion-ordered ids,
// and a normalized tx-hash → id map for duplicate rejection. For every
// tag t, the bucket holds exactly the ids of announcements with that tag.
type MemoryRegistry struct {
	mu        sync.RWMutex
	byID      map[uint64]*protocol.Announcement
	byViewTag map[uint8][]uint64
	byTxHash  map[string]uint64
	stats     protocol.AnnouncementStats

	// lastID is the most recently assigned id. Mutated under mu; read
	// atomically by NextID so id observation order agrees with assignment
	// order.
	lastID atomic.Uint64

	log *metrics.Logger
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byID:      make(map[uint64]*protocol.Announcement),
		byViewTag: make(map[uint8][]uint64),
		byTxHash:  make(map[string]uint64),
		log:       metrics.NullLogger(),
	}
}

// SetLogger replaces the registry's logger.
func (m *MemoryRegistry) SetLogger(log *metrics.Logger) {
	if log != nil {
		m.log = log
	}
}

// normalizeTxHash trims and lowercases a tx hash for indexing.
func normalizeTxHash(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}

// Publish implements Registry. The duplicate-tx-hash check and all index
// mutations happen under one write lock, so a failed publish leaves no
// partial state and concurrent publishes with the same hash cannot both
// win.
func (m *MemoryRegistry) Publish(ann *protocol.Announcement) (uint64, error) {
	if err := ann.Validate(); err != nil {
		return 0, err
	}

	var normalized string
	if ann.TxHash != "" {
		normalized = normalizeTxHash(ann.TxHash)
		if normalized == "" {
			return 0, serrors.NewInvalidAnnouncement("tx_hash cannot be empty")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if normalized != "" {
		if _, exists := m.byTxHash[normalized]; exists {
			return 0, serrors.ErrDuplicateAnnouncement
		}
	}

	id := m.lastID.Add(1)

	stored := cloneAnnouncement(ann)
	stored.ID = id

	m.byID[id] = stored
	m.byViewTag[stored.ViewTag] = append(m.byViewTag[stored.ViewTag], id)
	if normalized != "" {
		m.byTxHash[normalized] = id
	}
	m.stats.Add(stored)

	m.log.Debug("published announcement", metrics.Fields{"id": id, "view_tag": stored.ViewTag})
	return id, nil
}

// GetByViewTag implements Registry. Missing ids in a bucket are skipped;
// they cannot occur while the agreement invariant holds, but a stale id is
// not worth failing a scan over.
func (m *MemoryRegistry) GetByViewTag(tag uint8) ([]*protocol.Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byViewTag[tag]
	out := make([]*protocol.Announcement, 0, len(ids))
	for _, id := range ids {
		if ann, ok := m.byID[id]; ok {
			out = append(out, cloneAnnouncement(ann))
		}
	}
	return out, nil
}

// GetByTimeRange implements Registry.
func (m *MemoryRegistry) GetByTimeRange(start, end uint64) ([]*protocol.Announcement, error) {
	m.mu.RLock()
	var out []*protocol.Announcement
	for _, ann := range m.byID {
		if ann.Timestamp >= start && ann.Timestamp <= end {
			out = append(out, cloneAnnouncement(ann))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// GetByID implements Registry.
func (m *MemoryRegistry) GetByID(id uint64) (*protocol.Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ann, ok := m.byID[id]
	if !ok {
		return nil, serrors.ErrAnnouncementNotFound
	}
	return cloneAnnouncement(ann), nil
}

// Count implements Registry.
func (m *MemoryRegistry) Count() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.byID)), nil
}

// NextID implements Registry.
func (m *MemoryRegistry) NextID() (uint64, error) {
	return m.lastID.Load() + 1, nil
}

// Stats returns a copy of the registry statistics.
func (m *MemoryRegistry) Stats() protocol.AnnouncementStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.Clone()
}

// Len returns the number of stored announcements.
func (m *MemoryRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Clear removes everything and resets the id counter.
func (m *MemoryRegistry) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[uint64]*protocol.Announcement)
	m.byViewTag = make(map[uint8][]uint64)
	m.byTxHash = make(map[string]uint64)
	m.stats = protocol.AnnouncementStats{}
	m.lastID.Store(0)
}

// Export returns all announcements ordered by id, for backup or
// persistence.
func (m *MemoryRegistry) Export() []*protocol.Announcement {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*protocol.Announcement, 0, len(m.byID))
	for _, ann := range m.byID {
		out = append(out, cloneAnnouncement(ann))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Import loads announcements, re-deriving all indices. Entries keep their
// ids when set (id 0 gets a fresh one), and the id counter advances past
// the highest imported id so future publishes stay unique. Returns the
// number imported.
func (m *MemoryRegistry) Import(anns []*protocol.Announcement) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	imported := 0
	for _, ann := range anns {
		if err := ann.Validate(); err != nil {
			return imported, err
		}

		stored := cloneAnnouncement(ann)
		if stored.ID == 0 {
			stored.ID = m.lastID.Add(1)
		} else if stored.ID > m.lastID.Load() {
			m.lastID.Store(stored.ID)
		}

		m.byID[stored.ID] = stored
		m.byViewTag[stored.ViewTag] = append(m.byViewTag[stored.ViewTag], stored.ID)
		if stored.TxHash != "" {
			m.byTxHash[normalizeTxHash(stored.TxHash)] = stored.ID
		}
		m.stats.Add(stored)
		imported++
	}

	m.log.Debug("imported announcements", metrics.Fields{"count": imported})
	return imported, nil
}
