package repository

import (
	"context"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
)

// UserFilter narrows List. Search matches email and name, case-insensitive.
type UserFilter struct {
	Search string
	Limit  int
	Offset int
}

// UserRepository defines user persistence. Create fills ID and timestamps.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetBySubject(ctx context.Context, subjectID string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error

	// List returns a page of users, newest first, with the unpaged total.
	List(ctx context.Context, f UserFilter) ([]entity.User, int, error)
}
