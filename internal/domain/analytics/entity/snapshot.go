package entity

import (
	"time"

	"github.com/vadim/contentpulse/internal/domain/analytics/timeseries"
)

// Series represents one named line in a multi-series chart (a content type or
// an author), with one bucket per visible month.
type Series struct {
	Name    string                   `json:"name"`
	Buckets []timeseries.MonthBucket `json:"buckets"`
}

// ChartSeries bundles all chart datasets derived for the dashboard
type ChartSeries struct {
	Monthly        []timeseries.MonthBucket `json:"monthly"`          // First-publishes per month, whole corpus
	PerContentType []Series                 `json:"per_content_type"` // New-content view, one series per content type
	PerAuthor      []Series                 `json:"per_author"`       // Updated-content view, one series per author
}

// Snapshot is the composed analytics result for the whole dashboard, cached
// as a single payload. It always carries the full ("all time") series; time
// range clipping happens at read time.
type Snapshot struct {
	Stats             Stats             `json:"stats"`
	Charts            ChartSeries       `json:"charts"`
	ScheduledEntries  []Entry           `json:"scheduled_entries"`
	RecentlyPublished []Entry           `json:"recently_published_entries"`
	StaleEntries      []Entry           `json:"stale_entries"`
	AuthorNames       map[string]string `json:"author_names"`
	ComputedAt        time.Time         `json:"computed_at"`
}

// Age returns how old the snapshot is at the given instant
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.ComputedAt)
}
