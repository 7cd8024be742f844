package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/phuslu/log"

	"github.com/turismolocal/poiscan/internal/engine/export"
	"github.com/turismolocal/poiscan/internal/model"
)

// State is the orchestrator lifecycle: idle → scanning → completed|failed.
// Per-zone errors never reach failed; only a missing credential or a file
// write error does.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ZoneResult is what a source produced for one zone. Failed counts keyword
// or detail requests that errored and were skipped.
type ZoneResult struct {
	Records []model.BusinessRecord
	Failed  int
}

// Source is one provider capable of scanning a zone.
type Source interface {
	Name() string
	Validate() error
	FetchZone(ctx context.Context, zone model.Zone) (ZoneResult, error)
}

// Scanner drives the end-to-end pipeline over a fixed zone list. Zones are
// processed strictly sequentially with a delay between them; the delay is
// backpressure against the provider rate limiters, not tunable-away
// overhead.
type Scanner struct {
	google Source
	denue  Source
	zones  []model.Zone
	delay  time.Duration
	outDir string
	logger *log.Logger

	progress func(string)
	stats    *Stats
	state    atomic.Int32
}

// Option configures the Scanner.
type Option func(*Scanner)

// WithProgress sets a callback invoked with a progress line after each zone.
func WithProgress(fn func(string)) Option {
	return func(s *Scanner) { s.progress = fn }
}

// WithStats shares an external Stats so a UI can poll counters live.
func WithStats(stats *Stats) Option {
	return func(s *Scanner) { s.stats = stats }
}

func New(google, denue Source, zones []model.Zone, outDir string, delay time.Duration, logger *log.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		google: google,
		denue:  denue,
		zones:  zones,
		delay:  delay,
		outDir: outDir,
		logger: logger,
		stats:  &Stats{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) Stats() *Stats { return s.stats }

func (s *Scanner) State() State {
	return State(s.state.Load())
}

func (s *Scanner) setState(st State) {
	s.state.Store(int32(st))
}

// RunGoogle scans every zone against Google Places and writes one CSV.
// Returns the written file path.
func (s *Scanner) RunGoogle(ctx context.Context, dataset string) (string, error) {
	return s.runSingle(ctx, s.google, dataset)
}

// RunINEGI scans every zone against DENUE and writes one CSV.
func (s *Scanner) RunINEGI(ctx context.Context, dataset string) (string, error) {
	return s.runSingle(ctx, s.denue, dataset)
}

func (s *Scanner) runSingle(ctx context.Context, src Source, dataset string) (string, error) {
	if err := s.begin(src); err != nil {
		return "", err
	}

	agg := NewAggregator()
	if err := s.scan(ctx, src, agg); err != nil {
		s.setState(StateIdle)
		return "", err
	}
	return s.write(dataset, agg.Records())
}

// RunMerged runs the Google scan, then the DENUE scan, then merges both
// datasets into a single CSV. The intermediate Google CSV is kept on disk
// alongside the merged one.
func (s *Scanner) RunMerged(ctx context.Context, dataset string) (string, error) {
	if err := s.begin(s.google, s.denue); err != nil {
		return "", err
	}

	googleAgg := NewAggregator()
	if err := s.scan(ctx, s.google, googleAgg); err != nil {
		s.setState(StateIdle)
		return "", err
	}
	googlePath, err := export.WriteRecords(s.outDir, dataset+"_google", googleAgg.Records())
	if err != nil {
		s.setState(StateFailed)
		return "", fmt.Errorf("writing google dataset: %w", err)
	}
	s.logger.Info().Str("path", googlePath).Int("records", googleAgg.UniqueCount()).Msg("google dataset written")

	denueAgg := NewAggregator()
	if err := s.scan(ctx, s.denue, denueAgg); err != nil {
		s.setState(StateIdle)
		return "", err
	}

	path, err := export.Merge(googlePath, denueAgg.Records(), s.outDir, dataset)
	if err != nil {
		s.setState(StateFailed)
		return "", fmt.Errorf("merging datasets: %w", err)
	}
	s.setState(StateCompleted)
	return path, nil
}

// begin validates credentials and transitions to scanning. A missing
// credential is fatal before the first request goes out.
func (s *Scanner) begin(sources ...Source) error {
	for _, src := range sources {
		if err := src.Validate(); err != nil {
			s.setState(StateFailed)
			return err
		}
	}
	s.setState(StateScanning)
	return nil
}

// scan walks the zone list sequentially. Per-zone failures are logged and
// counted, never fatal. Cancellation is honored at each zone boundary.
func (s *Scanner) scan(ctx context.Context, src Source, agg *Aggregator) error {
	total := len(s.zones)
	s.stats.ZonesTotal.Add(int64(total))

	for i, zone := range s.zones {
		if err := ctx.Err(); err != nil {
			s.logger.Info().Str("source", src.Name()).Int("zones_done", i).Msg("scan cancelled")
			return err
		}

		res, err := src.FetchZone(ctx, zone)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.stats.RequestErrors.Add(1)
			s.logger.Warn().Str("source", src.Name()).Str("zone", zone.Name).Err(err).Msg("zone failed, continuing")
		} else {
			s.stats.RequestErrors.Add(int64(res.Failed))
			s.stats.RecordsFound.Add(int64(len(res.Records)))
			added := agg.Add(res.Records)
			s.stats.UniqueRecords.Add(int64(added))
		}

		s.stats.ZonesDone.Add(1)
		s.report(i+1, total, zone.Name)

		if i < total-1 && s.delay > 0 {
			timer := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}

func (s *Scanner) write(dataset string, records []model.BusinessRecord) (string, error) {
	path, err := export.WriteRecords(s.outDir, dataset, records)
	if err != nil {
		s.setState(StateFailed)
		return "", fmt.Errorf("writing dataset: %w", err)
	}
	s.setState(StateCompleted)
	return path, nil
}

func (s *Scanner) report(done, total int, zoneName string) {
	if s.progress == nil {
		return
	}
	s.progress(FormatProgress(done, total, zoneName))
}

// FormatProgress renders the "[i/total] [pct%] zoneName" progress line.
func FormatProgress(done, total int, zoneName string) string {
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(done) / float64(total)
	}
	return fmt.Sprintf("[%d/%d] [%.0f%%] %s", done, total, pct, zoneName)
}
