package search

import (
	"cmp"
	"math"
	"slices"

	"google.golang.org/api/searchconsole/v1"
)

// NormalizeDateSeries maps single-key rows to DateRow, oldest first.
func NormalizeDateSeries(rows []*searchconsole.ApiDataRow) []DateRow {
	out := make([]DateRow, 0, len(rows))
	for _, r := range rows {
		if r == nil || len(r.Keys) == 0 {
			continue
		}
		out = append(out, DateRow{Date: r.Keys[0], Metrics: metricsOf(r)})
	}

	// ISO dates order lexically
	slices.SortStableFunc(out, func(a, b DateRow) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

// NormalizeURLSeries maps single-key rows to URLRow, most clicks first.
// Rows with equal clicks keep the order Google returned them in.
func NormalizeURLSeries(rows []*searchconsole.ApiDataRow) []URLRow {
	out := make([]URLRow, 0, len(rows))
	for _, r := range rows {
		if r == nil || len(r.Keys) == 0 {
			continue
		}
		out = append(out, URLRow{URL: r.Keys[0], Metrics: metricsOf(r)})
	}

	slices.SortStableFunc(out, func(a, b URLRow) int {
		return cmp.Compare(b.Clicks, a.Clicks)
	})
	return out
}

func metricsOf(r *searchconsole.ApiDataRow) Metrics {
	return Metrics{
		Clicks:      count(r.Clicks),
		Impressions: count(r.Impressions),
		CTR:         r.Ctr,
		Position:    r.Position,
	}
}

func count(v float64) int64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int64(math.Round(v))
}
