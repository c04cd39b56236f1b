package domain

import "time"

// Feedback is a single viewer's review of a series. Date carries day
// granularity only and is re-stamped on every edit.
type Feedback struct {
	ID       string
	SeriesID string
	ViewerID string
	Rating   int
	Text     string
	Date     time.Time
}

// FeedbackEntry joins a feedback row with the author's display name for reads.
type FeedbackEntry struct {
	Feedback
	FirstName string
	LastName  string
}

// RatingAggregate is the derived mean and count for a series' feedback.
// Average is nil when no feedback exists, never 0.0.
type RatingAggregate struct {
	Average *float32
	Count   int64
}
