package registry_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/pranshurastogi/specter/internal/constants"
	serrors "github.com/pranshurastogi/specter/internal/errors"
	"github.com/pranshurastogi/specter/pkg/protocol"
	"github.com/pranshurastogi/specter/pkg/registry"
)

func testAnnouncement(tag uint8) *protocol.Announcement {
	key := bytes.Repeat([]byte{0x42}, constants.KyberCiphertextSize)
	key[0] = tag // vary the body a little per bucket
	return protocol.NewAnnouncement(key, tag)
}

func TestPublishAndGetByID(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	id, err := reg.Publish(testAnnouncement(0x42))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if id != 1 {
		t.Errorf("first id: got %d, want 1", id)
	}

	ann, err := reg.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if ann.ViewTag != 0x42 || ann.ID != 1 {
		t.Errorf("retrieved wrong announcement: id=%d tag=0x%02x", ann.ID, ann.ViewTag)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	_, err := reg.GetByID(999)
	if !serrors.Is(err, serrors.ErrAnnouncementNotFound) {
		t.Errorf("expected ErrAnnouncementNotFound, got %v", err)
	}
}

func TestGetByViewTag(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	if _, err := reg.Publish(testAnnouncement(0x42)); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Publish(testAnnouncement(0x42)); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Publish(testAnnouncement(0x00)); err != nil {
		t.Fatal(err)
	}

	matching, err := reg.GetByViewTag(0x42)
	if err != nil {
		t.Fatalf("GetByViewTag failed: %v", err)
	}
	if len(matching) != 2 {
		t.Errorf("bucket 0x42: got %d, want 2", len(matching))
	}
	// Insertion order within the bucket.
	if matching[0].ID >= matching[1].ID {
		t.Error("bucket not in insertion order")
	}

	empty, err := reg.GetByViewTag(0xFF)
	if err != nil {
		t.Fatalf("GetByViewTag failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty bucket returned %d entries", len(empty))
	}
}

func TestGetByTimeRange(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	for i, ts := range []uint64{300, 100, 200} {
		ann := testAnnouncement(uint8(i))
		ann.Timestamp = ts
		if _, err := reg.Publish(ann); err != nil {
			t.Fatal(err)
		}
	}

	mid, err := reg.GetByTimeRange(150, 250)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(mid) != 1 || mid[0].Timestamp != 200 {
		t.Errorf("range [150,250]: got %d entries", len(mid))
	}

	all, err := reg.GetByTimeRange(0, 500)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("range [0,500]: got %d entries, want 3", len(all))
	}
	// Ascending by timestamp.
	for i := 1; i < len(all); i++ {
		if all[i-1].Timestamp > all[i].Timestamp {
			t.Error("results not sorted by timestamp")
		}
	}
}

func TestCountAndNextID(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	if n, _ := reg.Count(); n != 0 {
		t.Errorf("empty count: got %d", n)
	}
	if next, _ := reg.NextID(); next != 1 {
		t.Errorf("initial next id: got %d, want 1", next)
	}

	for i := 0; i < 10; i++ {
		if _, err := reg.Publish(testAnnouncement(uint8(i))); err != nil {
			t.Fatal(err)
		}
	}

	if n, _ := reg.Count(); n != 10 {
		t.Errorf("count: got %d, want 10", n)
	}
	if next, _ := reg.NextID(); next != 11 {
		t.Errorf("next id: got %d, want 11", next)
	}
}

func TestPublishRejectsInvalid(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	zero := protocol.NewAnnouncement(make([]byte, constants.KyberCiphertextSize), 0x00)
	if _, err := reg.Publish(zero); err == nil {
		t.Error("all-zero ephemeral key should be rejected")
	}

	short := protocol.NewAnnouncement(make([]byte, 1087), 0x00)
	if _, err := reg.Publish(short); err == nil {
		t.Error("short ephemeral key should be rejected")
	}

	if n, _ := reg.Count(); n != 0 {
		t.Error("failed publishes must leave no state behind")
	}
}

// E5: duplicate tx hashes are detected after normalization.
func TestPublishDuplicateTxHash(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	a1 := testAnnouncement(0x01)
	a1.TxHash = "0xabc"
	id, err := reg.Publish(a1)
	if err != nil {
		t.Fatalf("first publish failed: %v", err)
	}
	if id != 1 {
		t.Errorf("id: got %d, want 1", id)
	}

	a2 := testAnnouncement(0x02)
	a2.TxHash = "  0xABC "
	if _, err := reg.Publish(a2); !serrors.Is(err, serrors.ErrDuplicateAnnouncement) {
		t.Errorf("expected ErrDuplicateAnnouncement, got %v", err)
	}

	if n, _ := reg.Count(); n != 1 {
		t.Errorf("count after duplicate: got %d, want 1", n)
	}
	// The losing publish must leave no index entries.
	if tagged, _ := reg.GetByViewTag(0x02); len(tagged) != 0 {
		t.Error("failed publish leaked into the view tag index")
	}
}

func TestPublishWhitespaceTxHashRejected(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	ann := testAnnouncement(0x01)
	ann.TxHash = "   "
	if _, err := reg.Publish(ann); err == nil {
		t.Error("whitespace-only tx hash should be rejected")
	}
}

// Universal invariant 9 under concurrency: exactly one publish with a
// given tx hash wins.
func TestConcurrentDuplicateTxHash(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	var wg sync.WaitGroup
	successes := make(chan uint64, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ann := testAnnouncement(uint8(i))
			ann.TxHash = "0xRACE"
			if id, err := reg.Publish(ann); err == nil {
				successes <- id
			}
		}(i)
	}
	wg.Wait()
	close(successes)

	var won int
	for range successes {
		won++
	}
	if won != 1 {
		t.Errorf("publishes that won the tx hash race: got %d, want 1", won)
	}
}

// Universal invariant 8: every published announcement is observable under
// its view tag, and count matches the successful publishes.
func TestConcurrentPublish(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := reg.Publish(testAnnouncement(uint8(i % 256))); err != nil {
				t.Errorf("publish %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if count, _ := reg.Count(); count != n {
		t.Errorf("count: got %d, want %d", count, n)
	}

	var indexed int
	for tag := 0; tag < 256; tag++ {
		anns, err := reg.GetByViewTag(uint8(tag))
		if err != nil {
			t.Fatal(err)
		}
		for _, ann := range anns {
			if ann.ViewTag != uint8(tag) {
				t.Errorf("bucket %d holds announcement with tag %d", tag, ann.ViewTag)
			}
		}
		indexed += len(anns)
	}
	if indexed != n {
		t.Errorf("index total: got %d, want %d", indexed, n)
	}
}

func TestStoredBodiesImmutable(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	ann := testAnnouncement(0x42)
	id, err := reg.Publish(ann)
	if err != nil {
		t.Fatal(err)
	}

	// Caller mutates its copy after publishing.
	ann.EphemeralKey[5] = 0xFF

	stored, err := reg.GetByID(id)
	if err != nil {
		t.Fatal(err)
	}
	if stored.EphemeralKey[5] == 0xFF {
		t.Error("caller mutation reached the stored announcement")
	}

	// And mutating a query result does not corrupt the store.
	stored.EphemeralKey[6] = 0xEE
	again, _ := reg.GetByID(id)
	if again.EphemeralKey[6] == 0xEE {
		t.Error("query result aliases the stored announcement")
	}
}

func TestStats(t *testing.T) {
	reg := registry.NewMemoryRegistry()

	a1 := testAnnouncement(0x42)
	a1.Timestamp = 100
	a2 := testAnnouncement(0x42)
	a2.Timestamp = 300
	var ch [constants.ChannelIDSize]byte
	a3 := protocol.NewAnnouncementWithChannel(bytes.Repeat([]byte{0x01}, constants.KyberCiphertextSize), 0x00, ch)
	a3.Timestamp = 200

	for _, a := range []*protocol.Announcement{a1, a2, a3} {
		if _, err := reg.Publish(a); err != nil {
			t.Fatal(err)
		}
	}

	stats := reg.Stats()
	if stats.TotalCount != 3 {
		t.Errorf("total: got %d", stats.TotalCount)
	}
	if stats.ViewTagDistribution[0x42] != 2 {
		t.Errorf("tag 0x42 count: got %d", stats.ViewTagDistribution[0x42])
	}
	if stats.EarliestTimestamp == nil || *stats.EarliestTimestamp != 100 {
		t.Error("earliest timestamp wrong")
	}
	if stats.LatestTimestamp == nil || *stats.LatestTimestamp != 300 {
		t.Error("latest timestamp wrong")
	}
	if stats.ChannelCount != 1 {
		t.Errorf("channel count: got %d", stats.ChannelCount)
	}
}

func TestClear(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	if _, err := reg.Publish(testAnnouncement(0x01)); err != nil {
		t.Fatal(err)
	}

	reg.Clear()

	if n, _ := reg.Count(); n != 0 {
		t.Error("clear left announcements behind")
	}
	if next, _ := reg.NextID(); next != 1 {
		t.Error("clear should reset the id counter")
	}
}

func TestExportImport(t *testing.T) {
	src := registry.NewMemoryRegistry()
	for i := 0; i < 5; i++ {
		ann := testAnnouncement(uint8(i))
		if i == 0 {
			ann.TxHash = "0xFIRST"
		}
		if _, err := src.Publish(ann); err != nil {
			t.Fatal(err)
		}
	}

	dst := registry.NewMemoryRegistry()
	imported, err := dst.Import(src.Export())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported != 5 {
		t.Errorf("imported: got %d, want 5", imported)
	}

	// Ids survive and the counter advances past them.
	if next, _ := dst.NextID(); next != 6 {
		t.Errorf("next id after import: got %d, want 6", next)
	}

	// Tx hash index is rebuilt.
	dup := testAnnouncement(0x09)
	dup.TxHash = "0xfirst"
	if _, err := dst.Publish(dup); !serrors.Is(err, serrors.ErrDuplicateAnnouncement) {
		t.Errorf("rebuilt tx hash index should reject duplicates, got %v", err)
	}
}

func TestIDsAreSequential(t *testing.T) {
	reg := registry.NewMemoryRegistry()
	for want := uint64(1); want <= 3; want++ {
		id, err := reg.Publish(testAnnouncement(uint8(want)))
		if err != nil {
			t.Fatal(err)
		}
		if id != want {
			t.Errorf("id: got %d, want %d", id, want)
		}
	}
}
