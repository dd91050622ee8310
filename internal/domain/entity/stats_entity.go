package entity

import "time"

// DailyStats is a per-calendar-day rollup of funnel counts, maintained by
// the recompute endpoint rather than by end-user actions.
type DailyStats struct {
	ID              string
	Date            time.Time // date only, UTC
	EntranceCount   int
	WaitlistJoined  int
	ProfilesCreated int
	BadgesIssued    int

	// Derived ratios, stored as fractions (0..1).
	EntranceToWaitlist float64
	OverallConversion  float64

	UpdatedAt time.Time
}
