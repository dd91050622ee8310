package repository

import (
	"context"
	"time"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
)

// BadgeRepository persists issued badges, one per user.
type BadgeRepository interface {
	Create(ctx context.Context, b *entity.Badge) error
	GetByUserID(ctx context.Context, userID string) (*entity.Badge, error)
	CountIssued(ctx context.Context, start, end time.Time) (int, error)
}
