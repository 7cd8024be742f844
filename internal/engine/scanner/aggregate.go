package scanner

import (
	"sync/atomic"

	"github.com/turismolocal/poiscan/internal/model"
)

// Stats tracks scan counters. All fields are atomics so the TUI and the
// stderr reporter can read them while a scan is running.
type Stats struct {
	ZonesTotal    atomic.Int64
	ZonesDone     atomic.Int64
	RecordsFound  atomic.Int64
	UniqueRecords atomic.Int64
	RequestErrors atomic.Int64
}

// Aggregator accumulates records across zones, deduplicating on ExternalID.
// First seen wins and insertion order is preserved. One aggregator serves
// one scan; it is only ever touched from the sequential zone loop.
type Aggregator struct {
	seen    map[string]struct{}
	records []model.BusinessRecord
}

func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[string]struct{})}
}

// Add folds a zone's records in. Records without an external ID cannot be
// deduplicated and records without coordinates cannot be plotted; both are
// dropped. Returns how many records were new.
func (a *Aggregator) Add(records []model.BusinessRecord) int {
	added := 0
	for _, rec := range records {
		if rec.ExternalID == "" {
			continue
		}
		if rec.Lat == 0 && rec.Lng == 0 {
			continue
		}
		if _, dup := a.seen[rec.ExternalID]; dup {
			continue
		}
		a.seen[rec.ExternalID] = struct{}{}
		a.records = append(a.records, rec)
		added++
	}
	return added
}

// Records returns the accumulated unique records in insertion order.
func (a *Aggregator) Records() []model.BusinessRecord {
	return a.records
}

func (a *Aggregator) UniqueCount() int {
	return len(a.records)
}
