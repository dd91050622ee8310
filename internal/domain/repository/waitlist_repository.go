package repository

import (
	"context"
	"time"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
)

// WaitlistFilter narrows List results. Zero values mean "no filter".
type WaitlistFilter struct {
	Status entity.WaitlistStatus
	Search string // matched case-insensitively against email, name, company
	Limit  int
	Offset int
}

// TimestampField selects which entry timestamp a day-bucketed count groups by.
type TimestampField string

const (
	FieldSubmitted TimestampField = "submitted_at"
	FieldInvited   TimestampField = "invited_at"
	FieldConverted TimestampField = "converted_at"
)

// DayCount is one UTC-calendar-day bucket.
type DayCount struct {
	Day   time.Time
	Count int
}

// InterestCount is the popularity of a single interest tag.
type InterestCount struct {
	Interest string
	Count    int
}

// WaitlistTotals are all-time counters used by the analytics summary.
type WaitlistTotals struct {
	Submissions int
	Invited     int
	Converted   int
}

// WaitlistRepository persists waitlist entries and answers the aggregate
// queries behind the funnel and analytics endpoints. Range arguments with a
// zero time are unbounded on that side.
type WaitlistRepository interface {
	Create(ctx context.Context, e *entity.WaitlistEntry) error
	GetByID(ctx context.Context, id string) (*entity.WaitlistEntry, error)
	GetByEmail(ctx context.Context, email string) (*entity.WaitlistEntry, error)
	GetByUserID(ctx context.Context, userID string) (*entity.WaitlistEntry, error)
	GetByToken(ctx context.Context, token string) (*entity.WaitlistEntry, error)

	SetInvitation(ctx context.Context, id, token string, invitedAt, expiresAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status entity.WaitlistStatus, convertedAt *time.Time) error

	List(ctx context.Context, f WaitlistFilter) ([]entity.WaitlistEntry, int, error)
	CountByStatus(ctx context.Context) (map[entity.WaitlistStatus]int, error)

	CountSubmitted(ctx context.Context, start, end time.Time) (int, error)
	DayCounts(ctx context.Context, field TimestampField, start, end time.Time) ([]DayCount, error)
	Totals(ctx context.Context) (WaitlistTotals, error)
	AvgDaysSubmitToInvite(ctx context.Context) (float64, error)
	AvgDaysInviteToConvert(ctx context.Context) (float64, error)
	InterestCounts(ctx context.Context) ([]InterestCount, error)
}
