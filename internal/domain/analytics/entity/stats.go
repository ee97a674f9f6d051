package entity

// Stats represents the aggregated dashboard metrics for the whole corpus
type Stats struct {
	TotalPublished         int     `json:"total_published"`          // Entries with a published version
	PercentChange          float64 `json:"percent_change"`           // Month-over-month change in first-publishes
	ScheduledCount         int     `json:"scheduled_count"`          // Size of the effectively scheduled set
	RecentlyPublishedCount int     `json:"recently_published_count"` // Published within the recent window
	NeedsUpdateCount       int     `json:"needs_update_count"`       // Published but not updated within the stale window
	PreviousMonthPublished int     `json:"previous_month_published"` // First-publishes in the preceding calendar month
	AvgTimeToPublishDays   float64 `json:"avg_time_to_publish_days"` // Mean created-to-published gap in the trailing window
}
