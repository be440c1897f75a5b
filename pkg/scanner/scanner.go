// Package scanner coordinates bulk discovery over a registry. Scans run
// view-tag bucket by bucket: every bucket named in Config.ViewTagFilter, or
// all 256 when the filter is empty, is pulled from the registry. Every
// announcement is decapsulated, and the 1/256 tag check then rejects most
// of them before any key derivation happens.
package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/pranshurastogi/specter/internal/constants"
	"github.com/pranshurastogi/specter/pkg/metrics"
	"github.com/pranshurastogi/specter/pkg/protocol"
	"github.com/pranshurastogi/specter/pkg/registry"
	"github.com/pranshurastogi/specter/pkg/stealth"
)

// Config controls a scan.
type Config struct {
	// BatchSize is the progress-reporting granularity only.
	BatchSize int
	// StopOnFirst aborts the scan after the first discovery.
	StopOnFirst bool
	// FromTimestamp and ToTimestamp bound the scan inclusively when non-nil.
	FromTimestamp *uint64
	ToTimestamp   *uint64
	// ViewTagFilter restricts the scan to these tags. Empty means all 256
	// buckets are visited unconditionally, which also avoids leaking the
	// matched bucket through scan timing.
	ViewTagFilter []uint8
}

// DefaultConfig returns the default scan configuration.
func DefaultConfig() Config {
	return Config{BatchSize: constants.DefaultScanBatchSize}
}

// Progress is a point-in-time snapshot delivered to the progress callback.
type Progress struct {
	Total       uint64   `json:"total"`
	Scanned     uint64   `json:"scanned"`
	Discoveries uint64   `json:"discoveries"`
	Rate        float64  `json:"rate"`
	ETASeconds  *float64 `json:"eta_seconds,omitempty"`
	Percent     float64  `json:"percent"`
}

// etaMinScanned is how many announcements must be scanned before the rate
// is considered stable enough to report an ETA.
const etaMinScanned = 50

func (p *Progress) update(scanned, discoveries uint64, elapsed time.Duration) {
	p.Scanned = scanned
	p.Discoveries = discoveries
	if elapsed > 0 {
		p.Rate = float64(scanned) / elapsed.Seconds()
	}
	if p.Total > 0 {
		p.Percent = float64(scanned) / float64(p.Total) * 100
	}
	if scanned >= etaMinScanned && p.Rate > 0 && p.Total >= scanned {
		eta := float64(p.Total-scanned) / p.Rate
		p.ETASeconds = &eta
	}
}

// ProgressFunc receives progress snapshots. Called every BatchSize scanned
// announcements and once at completion.
type ProgressFunc func(Progress)

// Position tracks how far a scan has gone, so an interrupted scan can be
// persisted and resumed from LastID + 1 or a later timestamp. It is
// updated after every announcement.
type Position struct {
	LastID           uint64 `json:"last_id"`
	LastTimestamp    uint64 `json:"last_timestamp"`
	TotalScanned     uint64 `json:"total_scanned"`
	TotalDiscoveries uint64 `json:"total_discoveries"`
}

func (p *Position) update(ann *protocol.Announcement, discovered bool) {
	p.LastID = ann.ID
	p.LastTimestamp = ann.Timestamp
	p.TotalScanned++
	if discovered {
		p.TotalDiscoveries++
	}
}

// Summary is the final account of a scan.
type Summary struct {
	TotalScanned     uint64  `json:"total_scanned"`
	ViewTagMatches   uint64  `json:"view_tag_matches"`
	Discoveries      uint64  `json:"discoveries"`
	Errors           uint64  `json:"errors"`
	DurationMillis   uint64  `json:"duration_ms"`
	Rate             float64 `json:"rate"`
	FilterEfficiency float64 `json:"filter_efficiency"`
}

// Scanner runs batched discovery for one wallet over a registry.
type Scanner struct {
	wallet *stealth.Wallet

	mu       sync.Mutex
	position Position
	stats    stealth.ScanStats

	log    *metrics.Logger
	tracer metrics.Tracer
}

// New creates a scanner for the given wallet.
func New(wallet *stealth.Wallet) *Scanner {
	return &Scanner{
		wallet: wallet,
		log:    metrics.NullLogger(),
		tracer: metrics.NoopTracer{},
	}
}

// SetLogger replaces the scanner's logger.
func (s *Scanner) SetLogger(log *metrics.Logger) {
	if log != nil {
		s.log = log
	}
}

// SetTracer replaces the scanner's tracer.
func (s *Scanner) SetTracer(tracer metrics.Tracer) {
	if tracer != nil {
		s.tracer = tracer
	}
}

// Position returns the current scan position.
func (s *Scanner) Position() Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Stats returns the accumulated scan statistics.
func (s *Scanner) Stats() stealth.ScanStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ResetPosition clears position and statistics.
func (s *Scanner) ResetPosition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = Position{}
	s.stats = stealth.ScanStats{}
}

// Summary returns the final account of scanning so far.
func (s *Scanner) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		TotalScanned:     s.stats.TotalScanned,
		ViewTagMatches:   s.stats.ViewTagMatches,
		Discoveries:      s.stats.Discoveries,
		Errors:           s.stats.Errors,
		DurationMillis:   s.stats.DurationMillis,
		Rate:             s.stats.Rate(),
		FilterEfficiency: s.stats.FilterEfficiency(),
	}
}

// ScanAll scans the whole registry with the default configuration.
func (s *Scanner) ScanAll(ctx context.Context, reg registry.Registry) ([]*protocol.DiscoveredAddress, error) {
	return s.Scan(ctx, reg, DefaultConfig(), nil)
}

// Scan walks the registry bucket by bucket, applying the config filters
// and reporting progress. A malformed announcement is counted as an error
// and the scan continues; a registry failure halts it. Cancellation via
// ctx stops between announcements, leaving position and stats consistent
// with the last fully scanned one.
func (s *Scanner) Scan(ctx context.Context, reg registry.Registry, cfg Config, progress ProgressFunc) ([]*protocol.DiscoveredAddress, error) {
	ctx, end := s.tracer.StartSpan(ctx, "scanner.Scan")
	discoveries, err := s.scan(ctx, reg, cfg, progress)
	end(err)
	return discoveries, err
}

func (s *Scanner) scan(ctx context.Context, reg registry.Registry, cfg Config, progress ProgressFunc) ([]*protocol.DiscoveredAddress, error) {
	start := time.Now()
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = constants.DefaultScanBatchSize
	}
	if batch > constants.MaxScanBatchSize {
		batch = constants.MaxScanBatchSize
	}

	tags := cfg.ViewTagFilter
	if len(tags) == 0 {
		tags = allViewTags()
	}

	var prog Progress
	if progress != nil {
		total, err := reg.Count()
		if err != nil {
			return nil, err
		}
		prog = Progress{Total: total}
	}

	s.log.Info("scan started", metrics.Fields{"buckets": len(tags)})

	var discoveries []*protocol.DiscoveredAddress
	var scanned uint64

	for _, tag := range tags {
		anns, err := reg.GetByViewTag(tag)
		if err != nil {
			return discoveries, err
		}

		for _, ann := range anns {
			if err := ctx.Err(); err != nil {
				s.finish(start)
				return discoveries, err
			}

			if cfg.FromTimestamp != nil && ann.Timestamp < *cfg.FromTimestamp {
				continue
			}
			if cfg.ToTimestamp != nil && ann.Timestamp > *cfg.ToTimestamp {
				continue
			}

			result := s.wallet.Scan(ann)
			scanned++

			s.mu.Lock()
			s.stats.Record(result)
			s.position.update(ann, result.Outcome == stealth.OutcomeDiscovered)
			s.mu.Unlock()

			if result.Outcome == stealth.OutcomeError {
				s.log.Warn("announcement failed to scan", metrics.Fields{"id": ann.ID, "err": result.Err})
			}

			if result.Outcome == stealth.OutcomeDiscovered {
				discoveries = append(discoveries, result.Discovery)
				if cfg.StopOnFirst {
					s.finish(start)
					s.report(progress, &prog, scanned, uint64(len(discoveries)), start)
					return discoveries, nil
				}
			}

			if progress != nil && scanned%uint64(batch) == 0 {
				s.report(progress, &prog, scanned, uint64(len(discoveries)), start)
			}
		}
	}

	s.finish(start)
	s.report(progress, &prog, scanned, uint64(len(discoveries)), start)

	s.log.Info("scan complete", metrics.Fields{
		"scanned":     scanned,
		"discoveries": len(discoveries),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return discoveries, nil
}

func (s *Scanner) finish(start time.Time) {
	s.mu.Lock()
	s.stats.DurationMillis = uint64(time.Since(start).Milliseconds())
	s.mu.Unlock()
}

func (s *Scanner) report(progress ProgressFunc, prog *Progress, scanned, discoveries uint64, start time.Time) {
	if progress == nil {
		return
	}
	prog.update(scanned, discoveries, time.Since(start))
	progress(*prog)
}

func allViewTags() []uint8 {
	tags := make([]uint8, constants.ViewTagSpace)
	for i := range tags {
		tags[i] = uint8(i)
	}
	return tags
}
