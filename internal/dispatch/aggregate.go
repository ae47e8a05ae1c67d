package dispatch

import (
	"sort"
	"time"

	"github.com/khovp/giaokho/internal/shared"
)

// DayBucket groups records sharing a pack date.
type DayBucket struct {
	Date        string `json:"date"`
	Count       int    `json:"count"`
	QuantitySum int    `json:"quantity_sum"`
}

// StatusTally counts records on each side of the dispatch status.
type StatusTally struct {
	Dispatched int `json:"dispatched"`
	Pending    int `json:"pending"`
}

// ExportPoint is one day of the trailing export series.
type ExportPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// BucketByDay builds the pack-date buckets, newest date first. Records
// without a pack date do not form a bucket.
func BucketByDay(records []DispatchRecord) []DayBucket {
	type acc struct {
		day time.Time
		b   DayBucket
	}
	byDay := make(map[string]*acc)
	for _, rec := range records {
		if rec.PackDate == nil {
			continue
		}
		key := shared.FormatDMY(rec.PackDate)
		a, ok := byDay[key]
		if !ok {
			a = &acc{day: shared.DayFloor(*rec.PackDate), b: DayBucket{Date: key}}
			byDay[key] = a
		}
		a.b.Count++
		a.b.QuantitySum += rec.Quantity
	}

	out := make([]acc, 0, len(byDay))
	for _, a := range byDay {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].day.After(out[j].day) })

	buckets := make([]DayBucket, len(out))
	for i, a := range out {
		buckets[i] = a.b
	}
	return buckets
}

// TallyStatus splits the records by dispatch status.
func TallyStatus(records []DispatchRecord) StatusTally {
	var t StatusTally
	for _, rec := range records {
		if rec.IsDispatched() {
			t.Dispatched++
		} else {
			t.Pending++
		}
	}
	return t
}

// ExportSeries counts ship-outs per day over the trailing seven days ending
// at now, oldest day first. A record contributes when its ship date falls on
// the point's calendar day.
func ExportSeries(records []DispatchRecord, now time.Time) []ExportPoint {
	points := make([]ExportPoint, 7)
	for i := range points {
		day := now.AddDate(0, 0, i-6)
		points[i].Date = day.Format(shared.DMYLayout)
		for _, rec := range records {
			if rec.ShipDate != nil && shared.SameDay(*rec.ShipDate, day) {
				points[i].Count++
			}
		}
	}
	return points
}
