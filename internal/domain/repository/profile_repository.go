package repository

import (
	"context"
	"time"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
)

// ProfileRepository persists quiz outcomes. Upsert keys on user id.
type ProfileRepository interface {
	Upsert(ctx context.Context, p *entity.UserProfile) error
	GetByUserID(ctx context.Context, userID string) (*entity.UserProfile, error)
	CountCompleted(ctx context.Context, start, end time.Time) (int, error)
}
