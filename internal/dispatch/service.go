package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/khovp/giaokho/internal/appsheet"
	"github.com/khovp/giaokho/internal/shared"
)

// FeedSource pulls the raw dispatch rows from the upstream sheet.
type FeedSource interface {
	FetchAll(ctx context.Context) ([]appsheet.Row, error)
}

// Metrics receives operational counters from the service.
type Metrics interface {
	ObserveFeedLoad(outcome string)
	ObserveDispatched(n int)
}

// Page is one window of the filtered and sorted listing.
type Page struct {
	Items      []Entry           `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

// Service owns the in-memory dispatch dataset and the read and mutate
// operations over it.
type Service struct {
	store   *Store
	feed    FeedSource
	cache   *Cache
	audit   *shared.AuditLogger
	metrics Metrics
	logger  *slog.Logger
	nowFn   func() time.Time

	loading atomic.Bool
}

// NewService constructs a dispatch service. cache, audit and metrics may be
// nil; the service degrades to uncached, unaudited operation.
func NewService(store *Store, feed FeedSource, cache *Cache, audit *shared.AuditLogger, metrics Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		feed:    feed,
		cache:   cache,
		audit:   audit,
		metrics: metrics,
		logger:  logger,
		nowFn:   time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (s *Service) SetNow(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

// Loading reports whether a feed refresh is in flight.
func (s *Service) Loading() bool {
	return s.loading.Load()
}

// Refresh pulls the full dataset from the feed and replaces the store
// contents. On failure the previously loaded records stay in place.
func (s *Service) Refresh(ctx context.Context) error {
	s.loading.Store(true)
	defer s.loading.Store(false)

	rows, err := s.feed.FetchAll(ctx)
	if err != nil {
		outcome := "transport"
		if errors.Is(err, shared.ErrDataFormat) {
			outcome = "format"
		}
		if s.metrics != nil {
			s.metrics.ObserveFeedLoad(outcome)
		}
		s.logger.Error("feed refresh failed", "error", err)
		return err
	}

	records := make([]DispatchRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, RecordFromRow(row))
	}
	s.store.Load(records)

	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump after refresh failed", "error", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveFeedLoad("ok")
	}
	s.logger.Info("feed refreshed", "records", len(records))
	return nil
}

// ListPage runs the filter, sort and page pipeline for one view state.
func (s *Service) ListPage(state ViewState) Page {
	entries := ApplyFilter(s.store.All(), state.Filter)
	entries = SortEntries(entries, state.Sort)
	items, pg := PageEntries(entries, state.Window)
	return Page{Items: items, Pagination: pg}
}

// FilteredRecords returns the records matching the filter, in display
// order and without paging. Exports operate on this set.
func (s *Service) FilteredRecords(f FilterState) []DispatchRecord {
	entries := ApplyFilter(s.store.All(), f)
	records := make([]DispatchRecord, len(entries))
	for i, e := range entries {
		records[i] = e.Record
	}
	return records
}

// Buckets returns the pack-date buckets, cached per dataset version.
func (s *Service) Buckets(ctx context.Context) ([]DayBucket, error) {
	key, err := s.cache.BuildKey(ctx, keyBuckets())
	if err != nil {
		return nil, err
	}
	var buckets []DayBucket
	err = s.cache.FetchJSON(ctx, key, &buckets, func(context.Context) (interface{}, error) {
		return BucketByDay(s.store.Records()), nil
	})
	return buckets, err
}

// StatusSummary returns the dispatched versus pending tally, cached per
// dataset version.
func (s *Service) StatusSummary(ctx context.Context) (StatusTally, error) {
	key, err := s.cache.BuildKey(ctx, keyStatusTally())
	if err != nil {
		return StatusTally{}, err
	}
	var tally StatusTally
	err = s.cache.FetchJSON(ctx, key, &tally, func(context.Context) (interface{}, error) {
		return TallyStatus(s.store.Records()), nil
	})
	return tally, err
}

// Exports returns the trailing seven day ship-out series. The cache key
// carries the day so a series built yesterday is not served today.
func (s *Service) Exports(ctx context.Context) ([]ExportPoint, error) {
	now := s.nowFn()
	key, err := s.cache.BuildKey(ctx, keyExportSeries(now))
	if err != nil {
		return nil, err
	}
	var points []ExportPoint
	err = s.cache.FetchJSON(ctx, key, &points, func(context.Context) (interface{}, error) {
		return ExportSeries(s.store.Records(), now), nil
	})
	return points, err
}

// ConfirmDispatch marks the selected records as shipped, stamping the ship
// date with the current day. Already dispatched records are re-stamped,
// the last confirmation wins. Returns the number of records updated.
func (s *Service) ConfirmDispatch(ctx context.Context, ids []RecordID, actor string) (int, error) {
	if len(ids) == 0 {
		return 0, shared.ErrEmptySelection
	}
	// A selection set can arrive with repeats over the wire; each record
	// still counts once.
	seen := make(map[RecordID]struct{}, len(ids))
	unique := make([]RecordID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	ids = unique

	now := s.nowFn()
	patched := s.store.Patch(ids, func(rec *DispatchRecord) {
		rec.Status = StatusDispatched
		rec.ShipDate = &now
	})
	if patched == 0 {
		return 0, shared.ErrNotFound
	}

	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("cache bump after confirm failed", "error", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveDispatched(patched)
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = string(id)
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   "dispatch.confirm",
		Entity:   "dispatch_record",
		EntityID: idStrings[0],
		Meta:     map[string]any{"ids": idStrings, "count": patched},
		At:       now,
	}); err != nil {
		s.logger.Warn("audit write failed", "error", err)
	}

	s.logger.Info("dispatch confirmed", "requested", len(ids), "patched", patched)
	return patched, nil
}

// Record looks up one record by id.
func (s *Service) Record(id RecordID) (DispatchRecord, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return DispatchRecord{}, shared.ErrNotFound
	}
	return rec, nil
}

// Len reports how many records are loaded.
func (s *Service) Len() int {
	return s.store.Len()
}
