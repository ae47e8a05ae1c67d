package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/khovp/giaokho/internal/appsheet"
	"github.com/khovp/giaokho/internal/shared"
)

type mockFeed struct {
	rows  []appsheet.Row
	err   error
	calls int
}

func (m *mockFeed) FetchAll(ctx context.Context) ([]appsheet.Row, error) {
	m.calls++
	return m.rows, m.err
}

type mockMetrics struct {
	loads      map[string]int
	dispatched int
}

func (m *mockMetrics) ObserveFeedLoad(outcome string) {
	if m.loads == nil {
		m.loads = map[string]int{}
	}
	m.loads[outcome]++
}

func (m *mockMetrics) ObserveDispatched(n int) { m.dispatched += n }

func feedRow(orderKD, packDate, status string, qty any) appsheet.Row {
	return appsheet.Row{
		"order_kd":      orderKD,
		"ngay_dong_goi": packDate,
		"thoi_han":      status,
		"sll":           qty,
	}
}

func newTestService(t *testing.T, feed *mockFeed) (*Service, *mockMetrics, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	metrics := &mockMetrics{}
	svc := NewService(NewStore(), feed, cache, nil, metrics, nil)
	return svc, metrics, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestRefreshLoadsNewestFirst(t *testing.T) {
	feed := &mockFeed{rows: []appsheet.Row{
		feedRow("KD-old", "2026-03-01", "", "5"),
		feedRow("KD-new", "2026-03-02", "", 7.0),
	}}
	svc, metrics, cleanup := newTestService(t, feed)
	defer cleanup()

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	page := svc.ListPage(DefaultViewState())
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].Record.OrderKD != "KD-new" {
		t.Fatalf("expected newest first, got %s", page.Items[0].Record.OrderKD)
	}
	if page.Items[0].Record.Quantity != 7 {
		t.Fatalf("numeric quantity cell must parse, got %d", page.Items[0].Record.Quantity)
	}
	if metrics.loads["ok"] != 1 {
		t.Fatalf("expected one ok load, got %+v", metrics.loads)
	}
}

func TestRefreshKeepsPriorDataOnError(t *testing.T) {
	feed := &mockFeed{rows: []appsheet.Row{feedRow("KD-1", "2026-03-01", "", "5")}}
	svc, metrics, cleanup := newTestService(t, feed)
	defer cleanup()

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	feed.err = errors.New("boom")
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if svc.Len() != 1 {
		t.Fatalf("prior data must survive a failed refresh, len %d", svc.Len())
	}
	if metrics.loads["transport"] != 1 {
		t.Fatalf("expected transport outcome, got %+v", metrics.loads)
	}

	feed.err = fmt.Errorf("%w: <html>", shared.ErrDataFormat)
	_ = svc.Refresh(context.Background())
	if metrics.loads["format"] != 1 {
		t.Fatalf("expected format outcome, got %+v", metrics.loads)
	}
}

func TestConfirmDispatch(t *testing.T) {
	feed := &mockFeed{rows: []appsheet.Row{
		feedRow("KD-1", "2026-03-01", "", "5"),
		feedRow("KD-2", "2026-03-02", "", "6"),
	}}
	svc, metrics, cleanup := newTestService(t, feed)
	defer cleanup()

	now := time.Date(2026, time.March, 20, 9, 30, 0, 0, time.UTC)
	svc.SetNow(func() time.Time { return now })

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	entries := svc.ListPage(DefaultViewState()).Items

	updated, err := svc.ConfirmDispatch(context.Background(), []RecordID{entries[0].ID}, "tester")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 updated, got %d", updated)
	}

	rec, err := svc.Record(entries[0].ID)
	if err != nil {
		t.Fatalf("record lookup failed: %v", err)
	}
	if !rec.IsDispatched() {
		t.Fatal("expected record dispatched")
	}
	if rec.ShipDate == nil || !rec.ShipDate.Equal(now) {
		t.Fatalf("expected ship date %v, got %v", now, rec.ShipDate)
	}
	if metrics.dispatched != 1 {
		t.Fatalf("expected dispatch counter 1, got %d", metrics.dispatched)
	}

	// Re-confirming re-stamps, the last confirmation wins.
	later := now.Add(48 * time.Hour)
	svc.SetNow(func() time.Time { return later })
	if _, err := svc.ConfirmDispatch(context.Background(), []RecordID{entries[0].ID}, "tester"); err != nil {
		t.Fatalf("re-confirm failed: %v", err)
	}
	rec, _ = svc.Record(entries[0].ID)
	if !rec.ShipDate.Equal(later) {
		t.Fatalf("expected re-stamped ship date, got %v", rec.ShipDate)
	}
}

func TestConfirmDispatchDedupesSelection(t *testing.T) {
	feed := &mockFeed{rows: []appsheet.Row{
		feedRow("KD-1", "2026-03-01", "", "5"),
	}}
	svc, metrics, cleanup := newTestService(t, feed)
	defer cleanup()

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	id := svc.ListPage(DefaultViewState()).Items[0].ID

	updated, err := svc.ConfirmDispatch(context.Background(), []RecordID{id, id, id}, "tester")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if updated != 1 {
		t.Fatalf("repeated ids must count once, got %d", updated)
	}
	if metrics.dispatched != 1 {
		t.Fatalf("expected dispatch counter 1, got %d", metrics.dispatched)
	}
}

func TestConfirmDispatchEmptySelection(t *testing.T) {
	svc, _, cleanup := newTestService(t, &mockFeed{})
	defer cleanup()

	if _, err := svc.ConfirmDispatch(context.Background(), nil, "tester"); !errors.Is(err, shared.ErrEmptySelection) {
		t.Fatalf("expected empty selection error, got %v", err)
	}
	if _, err := svc.ConfirmDispatch(context.Background(), []RecordID{"ghost"}, "tester"); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAggregatesCacheAndBumpOnConfirm(t *testing.T) {
	feed := &mockFeed{rows: []appsheet.Row{
		feedRow("KD-1", "2026-03-01", "", "5"),
		feedRow("KD-2", "2026-03-02", "còn hạn", "6"),
	}}
	svc, _, cleanup := newTestService(t, feed)
	defer cleanup()

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	ctx := context.Background()
	tally, err := svc.StatusSummary(ctx)
	if err != nil {
		t.Fatalf("status summary failed: %v", err)
	}
	if tally.Dispatched != 0 || tally.Pending != 2 {
		t.Fatalf("unexpected tally %+v", tally)
	}

	entries := svc.ListPage(DefaultViewState()).Items
	if _, err := svc.ConfirmDispatch(ctx, []RecordID{entries[0].ID}, "tester"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// The confirm bumps the cache version, so the tally reflects the change.
	tally, err = svc.StatusSummary(ctx)
	if err != nil {
		t.Fatalf("status summary failed: %v", err)
	}
	if tally.Dispatched != 1 || tally.Pending != 1 {
		t.Fatalf("expected refreshed tally, got %+v", tally)
	}

	buckets, err := svc.Buckets(ctx)
	if err != nil {
		t.Fatalf("buckets failed: %v", err)
	}
	if len(buckets) != 2 || buckets[0].Date != "02/03/2026" {
		t.Fatalf("unexpected buckets %+v", buckets)
	}
}

func TestExportsUsesInjectedClock(t *testing.T) {
	feed := &mockFeed{rows: []appsheet.Row{
		{"order_kd": "KD-1", "ngay_xuat_hang": "2026-03-19", "thoi_han": StatusDispatched},
	}}
	svc, _, cleanup := newTestService(t, feed)
	defer cleanup()

	svc.SetNow(func() time.Time {
		return time.Date(2026, time.March, 20, 8, 0, 0, 0, time.UTC)
	})
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	points, err := svc.Exports(context.Background())
	if err != nil {
		t.Fatalf("exports failed: %v", err)
	}
	if len(points) != 7 || points[5].Count != 1 {
		t.Fatalf("unexpected series %+v", points)
	}
}

func TestFilteredRecords(t *testing.T) {
	feed := &mockFeed{rows: []appsheet.Row{
		feedRow("KD-1", "2026-03-01", "", "5"),
		feedRow("XX-2", "2026-03-02", "", "6"),
	}}
	svc, _, cleanup := newTestService(t, feed)
	defer cleanup()

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	records := svc.FilteredRecords(FilterState{OrderKD: "kd-"})
	if len(records) != 1 || records[0].OrderKD != "KD-1" {
		t.Fatalf("unexpected filtered set %+v", records)
	}
}
