package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	"github.com/launchbay/onboarding-api/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *entity.UserProfile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (
			user_id, knowledge_pattern, thesis_pattern, prioritize_pattern,
			action_pattern, navigation_pattern, display_name, responses,
			onboarding_completed, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			knowledge_pattern = EXCLUDED.knowledge_pattern,
			thesis_pattern = EXCLUDED.thesis_pattern,
			prioritize_pattern = EXCLUDED.prioritize_pattern,
			action_pattern = EXCLUDED.action_pattern,
			navigation_pattern = EXCLUDED.navigation_pattern,
			display_name = EXCLUDED.display_name,
			responses = EXCLUDED.responses,
			onboarding_completed = EXCLUDED.onboarding_completed,
			completed_at = EXCLUDED.completed_at
		RETURNING id, created_at
	`, p.UserID, p.KnowledgePattern, p.ThesisPattern, p.PrioritizePattern,
		p.ActionPattern, p.NavigationPattern, p.DisplayName, p.Responses,
		p.OnboardingCompleted, p.CompletedAt)

	return mapErr(row.Scan(&p.ID, &p.CreatedAt))
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*entity.UserProfile, error) {
	p := &entity.UserProfile{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, knowledge_pattern, thesis_pattern, prioritize_pattern,
		       action_pattern, navigation_pattern, display_name, responses,
		       onboarding_completed, completed_at, created_at
		FROM user_profiles
		WHERE user_id = $1
	`, userID)
	if err := row.Scan(&p.ID, &p.UserID, &p.KnowledgePattern, &p.ThesisPattern,
		&p.PrioritizePattern, &p.ActionPattern, &p.NavigationPattern,
		&p.DisplayName, &p.Responses, &p.OnboardingCompleted, &p.CompletedAt,
		&p.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *ProfileRepository) CountCompleted(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_profiles
		WHERE onboarding_completed
		  AND ($1::timestamptz IS NULL OR completed_at >= $1)
		  AND ($2::timestamptz IS NULL OR completed_at < $2)
	`, nullableTime(start), nullableTime(end)).Scan(&n)
	return n, mapErr(err)
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
