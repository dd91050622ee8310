package repository

import (
	"context"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
)

// AdminRepository persists dashboard accounts.
type AdminRepository interface {
	Create(ctx context.Context, a *entity.Admin) error
	GetByID(ctx context.Context, id string) (*entity.Admin, error)
	GetByEmail(ctx context.Context, email string) (*entity.Admin, error)
}
