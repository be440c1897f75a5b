package stealth

import (
	"github.com/pranshurastogi/specter/pkg/protocol"
)

// ScanOutcome classifies the result of scanning one announcement.
type ScanOutcome int

const (
	// OutcomeNotForUs means the view tag did not match after decapsulation.
	OutcomeNotForUs ScanOutcome = iota
	// OutcomeDiscovered means the announcement yielded a stealth destination.
	OutcomeDiscovered
	// OutcomeError means decapsulation or derivation failed on malformed
	// input. Counted, not fatal.
	OutcomeError
)

// String returns the outcome name.
func (o ScanOutcome) String() string {
	switch o {
	case OutcomeNotForUs:
		return "not_for_us"
	case OutcomeDiscovered:
		return "discovered"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// ScanResult pairs an outcome with its discovery (when present) and error
// (when present).
type ScanResult struct {
	Outcome   ScanOutcome
	Discovery *protocol.DiscoveredAddress
	Err       error
}

// Scan evaluates one announcement and classifies the result. Unlike
// Wallet.ScanAnnouncement this never returns an error; malformed
// announcements become OutcomeError so bulk scans keep moving.
func (w *Wallet) Scan(ann *protocol.Announcement) ScanResult {
	if err := ann.Validate(); err != nil {
		return ScanResult{Outcome: OutcomeError, Err: err}
	}
	found, err := w.ScanAnnouncement(ann)
	switch {
	case err != nil:
		return ScanResult{Outcome: OutcomeError, Err: err}
	case found == nil:
		return ScanResult{Outcome: OutcomeNotForUs}
	default:
		return ScanResult{Outcome: OutcomeDiscovered, Discovery: found}
	}
}

// ScanStats accumulates bulk-scan counters.
type ScanStats struct {
	TotalScanned   uint64 `json:"total_scanned"`
	ViewTagMatches uint64 `json:"view_tag_matches"`
	Discoveries    uint64 `json:"discoveries"`
	Errors         uint64 `json:"errors"`
	DurationMillis uint64 `json:"duration_ms"`
}

// Record folds one scan result into the counters. Only discoveries count as
// view-tag matches, so ViewTagMatches equals Discoveries; a chance tag
// collision on someone else's announcement yields a discovery and is
// counted as one.
func (s *ScanStats) Record(r ScanResult) {
	s.TotalScanned++
	switch r.Outcome {
	case OutcomeDiscovered:
		s.ViewTagMatches++
		s.Discoveries++
	case OutcomeError:
		s.Errors++
	}
}

// Rate returns announcements scanned per second.
func (s *ScanStats) Rate() float64 {
	if s.DurationMillis == 0 {
		return 0
	}
	return float64(s.TotalScanned) / float64(s.DurationMillis) * 1000
}

// FilterEfficiency returns the percentage of scanned announcements
// rejected without derivation work.
func (s *ScanStats) FilterEfficiency() float64 {
	if s.TotalScanned == 0 {
		return 0
	}
	return float64(s.TotalScanned-s.ViewTagMatches) / float64(s.TotalScanned) * 100
}
