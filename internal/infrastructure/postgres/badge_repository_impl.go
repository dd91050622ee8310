package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	"github.com/launchbay/onboarding-api/internal/domain/repository"
)

type BadgeRepository struct {
	pool *pgxpool.Pool
}

func NewBadgeRepository(pool *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{pool: pool}
}

func (r *BadgeRepository) Create(ctx context.Context, b *entity.Badge) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO badges (user_id, serial_number, display_name)
		VALUES ($1, $2, $3)
		RETURNING id, issued_at
	`, b.UserID, b.SerialNumber, b.DisplayName)

	return mapErr(row.Scan(&b.ID, &b.IssuedAt))
}

func (r *BadgeRepository) GetByUserID(ctx context.Context, userID string) (*entity.Badge, error) {
	b := &entity.Badge{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, serial_number, display_name, issued_at
		FROM badges
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&b.ID, &b.UserID, &b.SerialNumber, &b.DisplayName, &b.IssuedAt); err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (r *BadgeRepository) CountIssued(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM badges
		WHERE ($1::timestamptz IS NULL OR issued_at >= $1)
		  AND ($2::timestamptz IS NULL OR issued_at < $2)
	`, nullableTime(start), nullableTime(end)).Scan(&n)
	return n, mapErr(err)
}

var _ repository.BadgeRepository = (*BadgeRepository)(nil)
