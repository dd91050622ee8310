package repository

import (
	"context"
	"time"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
)

// StatsRepository persists the per-day funnel rollups. Upsert keys on date.
type StatsRepository interface {
	Upsert(ctx context.Context, s *entity.DailyStats) error
	ListRange(ctx context.Context, start, end time.Time) ([]entity.DailyStats, error)
}
