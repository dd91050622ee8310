package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	"github.com/launchbay/onboarding-api/internal/domain/repository"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Create(ctx context.Context, ev *entity.JourneyEvent) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO journey_events (user_id, session_id, event_type, phase, duration_ms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, occurred_at
	`, ev.UserID, ev.SessionID, ev.EventType, ev.Phase, ev.DurationMS)

	return mapErr(row.Scan(&ev.ID, &ev.OccurredAt))
}

func (r *EventRepository) CountDistinctSessions(ctx context.Context, phase string, t entity.EventType, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT session_id) FROM journey_events
		WHERE phase = $1 AND event_type = $2
		  AND ($3::timestamptz IS NULL OR occurred_at >= $3)
		  AND ($4::timestamptz IS NULL OR occurred_at < $4)
	`, phase, t, nullableTime(start), nullableTime(end)).Scan(&n)
	return n, mapErr(err)
}

func (r *EventRepository) PhaseCompletions(ctx context.Context, start, end time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT phase, COUNT(*) FROM journey_events
		WHERE event_type = $1
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_at < $3)
		GROUP BY phase
	`, entity.PhaseComplete, nullableTime(start), nullableTime(end))
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var phase string
		var n int
		if err := rows.Scan(&phase, &n); err != nil {
			return nil, mapErr(err)
		}
		counts[phase] = n
	}
	return counts, mapErr(rows.Err())
}

var _ repository.EventRepository = (*EventRepository)(nil)
