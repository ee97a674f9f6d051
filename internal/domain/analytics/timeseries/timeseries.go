// Package timeseries provides pure calendar-month bucketing for timestamped
// observations. All functions are deterministic: the same input always yields
// the same output, sorted ascending by month key.
package timeseries

import (
	"time"
)

// MonthBucket represents the observation count for one calendar month
type MonthBucket struct {
	Month         string  `json:"month"` // YYYY-MM
	Count         int     `json:"count"`
	PercentChange float64 `json:"percent_change"` // Relative to the previous bucket
}

// MonthKey returns the YYYY-MM key for a timestamp
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// PercentChange computes the period-over-period change between two counts.
// A zero previous count with a non-zero current count is pinned at +100; two
// zero counts yield 0.
func PercentChange(prev, curr int) float64 {
	if prev == 0 {
		if curr == 0 {
			return 0
		}
		return 100
	}
	return float64(curr-prev) / float64(prev) * 100
}

// monthStart snaps a timestamp to the first instant of its calendar month
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// BucketByMonth groups the given observation times into calendar-month
// buckets. The output covers every month from the earliest observation to the
// month of now, with zero counts filling any gaps. With no observations a
// single zero bucket for the current month is returned.
func BucketByMonth(times []time.Time, now time.Time) []MonthBucket {
	counts := make(map[string]int, len(times))
	earliest := monthStart(now)
	for _, t := range times {
		counts[MonthKey(t)]++
		if m := monthStart(t); m.Before(earliest) {
			earliest = m
		}
	}

	end := monthStart(now)
	buckets := make([]MonthBucket, 0, 12)
	prev := 0
	for m := earliest; !m.After(end); m = m.AddDate(0, 1, 0) {
		count := counts[MonthKey(m)]
		b := MonthBucket{Month: MonthKey(m), Count: count}
		if len(buckets) > 0 {
			b.PercentChange = PercentChange(prev, count)
		}
		buckets = append(buckets, b)
		prev = count
	}
	return buckets
}

// ClipToRecent trims a bucket series to its trailing months buckets. Percent
// changes are preserved from the full series so the first visible bucket still
// reflects its true month-over-month change. A non-positive months value
// returns the series unchanged.
func ClipToRecent(buckets []MonthBucket, months int) []MonthBucket {
	if months <= 0 || len(buckets) <= months {
		return buckets
	}
	return buckets[len(buckets)-months:]
}

// HasNonZero reports whether any bucket in the series has a non-zero count
func HasNonZero(buckets []MonthBucket) bool {
	for _, b := range buckets {
		if b.Count > 0 {
			return true
		}
	}
	return false
}
