package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	"github.com/launchbay/onboarding-api/internal/domain/repository"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) Upsert(ctx context.Context, s *entity.DailyStats) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO daily_stats (
			date, entrance_count, waitlist_joined, profiles_created,
			badges_issued, entrance_to_waitlist, overall_conversion
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO UPDATE SET
			entrance_count = EXCLUDED.entrance_count,
			waitlist_joined = EXCLUDED.waitlist_joined,
			profiles_created = EXCLUDED.profiles_created,
			badges_issued = EXCLUDED.badges_issued,
			entrance_to_waitlist = EXCLUDED.entrance_to_waitlist,
			overall_conversion = EXCLUDED.overall_conversion,
			updated_at = now()
		RETURNING id, updated_at
	`, s.Date, s.EntranceCount, s.WaitlistJoined, s.ProfilesCreated,
		s.BadgesIssued, s.EntranceToWaitlist, s.OverallConversion)

	return mapErr(row.Scan(&s.ID, &s.UpdatedAt))
}

func (r *StatsRepository) ListRange(ctx context.Context, start, end time.Time) ([]entity.DailyStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, date, entrance_count, waitlist_joined, profiles_created,
		       badges_issued, entrance_to_waitlist, overall_conversion, updated_at
		FROM daily_stats
		WHERE ($1::date IS NULL OR date >= $1)
		  AND ($2::date IS NULL OR date < $2)
		ORDER BY date
	`, nullableTime(start), nullableTime(end))
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	stats := []entity.DailyStats{}
	for rows.Next() {
		var s entity.DailyStats
		if err := rows.Scan(&s.ID, &s.Date, &s.EntranceCount, &s.WaitlistJoined,
			&s.ProfilesCreated, &s.BadgesIssued, &s.EntranceToWaitlist,
			&s.OverallConversion, &s.UpdatedAt); err != nil {
			return nil, mapErr(err)
		}
		stats = append(stats, s)
	}
	return stats, mapErr(rows.Err())
}

var _ repository.StatsRepository = (*StatsRepository)(nil)
