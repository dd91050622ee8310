package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	"github.com/launchbay/onboarding-api/internal/domain/repository"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) Create(ctx context.Context, a *entity.Admin) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO admins (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, a.Email, a.Name, a.PasswordHash, a.Role)

	return mapErr(row.Scan(&a.ID, &a.CreatedAt))
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (*entity.Admin, error) {
	return r.getWhere(ctx, `id = $1`, id)
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	return r.getWhere(ctx, `email = $1`, email)
}

func (r *AdminRepository) getWhere(ctx context.Context, cond string, arg any) (*entity.Admin, error) {
	a := &entity.Admin{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, role, created_at
		FROM admins WHERE `+cond, arg)
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

var _ repository.AdminRepository = (*AdminRepository)(nil)
