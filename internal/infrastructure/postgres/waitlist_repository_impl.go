package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	"github.com/launchbay/onboarding-api/internal/domain/repository"
)

type WaitlistRepository struct {
	pool *pgxpool.Pool
}

func NewWaitlistRepository(pool *pgxpool.Pool) *WaitlistRepository {
	return &WaitlistRepository{pool: pool}
}

const waitlistColumns = `id, user_id, name, email, company, interests, status,
	submitted_at, invitation_token, invited_at, invitation_expires_at, converted_at`

func (r *WaitlistRepository) Create(ctx context.Context, e *entity.WaitlistEntry) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO waitlist_entries (user_id, name, email, company, interests, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, submitted_at
	`, e.UserID, e.Name, e.Email, e.Company, e.Interests, e.Status)

	return mapErr(row.Scan(&e.ID, &e.SubmittedAt))
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id string) (*entity.WaitlistEntry, error) {
	return r.getWhere(ctx, `id = $1`, id)
}

func (r *WaitlistRepository) GetByEmail(ctx context.Context, email string) (*entity.WaitlistEntry, error) {
	return r.getWhere(ctx, `email = $1`, email)
}

func (r *WaitlistRepository) GetByUserID(ctx context.Context, userID string) (*entity.WaitlistEntry, error) {
	return r.getWhere(ctx, `user_id = $1`, userID)
}

func (r *WaitlistRepository) GetByToken(ctx context.Context, token string) (*entity.WaitlistEntry, error) {
	return r.getWhere(ctx, `invitation_token = $1`, token)
}

func (r *WaitlistRepository) getWhere(ctx context.Context, cond string, arg any) (*entity.WaitlistEntry, error) {
	e := &entity.WaitlistEntry{}
	row := r.pool.QueryRow(ctx, `SELECT `+waitlistColumns+` FROM waitlist_entries WHERE `+cond, arg)
	if err := scanWaitlistEntry(row, e); err != nil {
		return nil, mapErr(err)
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWaitlistEntry(row rowScanner, e *entity.WaitlistEntry) error {
	return row.Scan(&e.ID, &e.UserID, &e.Name, &e.Email, &e.Company, &e.Interests,
		&e.Status, &e.SubmittedAt, &e.InvitationToken, &e.InvitedAt,
		&e.InvitationExpiresAt, &e.ConvertedAt)
}

func (r *WaitlistRepository) SetInvitation(ctx context.Context, id, token string, invitedAt, expiresAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE waitlist_entries
		SET invitation_token = $1, invited_at = $2, invitation_expires_at = $3
		WHERE id = $4
	`, token, invitedAt, expiresAt, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WaitlistRepository) UpdateStatus(ctx context.Context, id string, status entity.WaitlistStatus, convertedAt *time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE waitlist_entries
		SET status = $1, converted_at = COALESCE($2, converted_at)
		WHERE id = $3
	`, status, convertedAt, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WaitlistRepository) List(ctx context.Context, f repository.WaitlistFilter) ([]entity.WaitlistEntry, int, error) {
	conds := []string{"TRUE"}
	args := []any{}

	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d OR company ILIKE $%d)", n, n, n))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM waitlist_entries WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	query := `SELECT ` + waitlistColumns + ` FROM waitlist_entries WHERE ` + where +
		` ORDER BY submitted_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	entries := []entity.WaitlistEntry{}
	for rows.Next() {
		var e entity.WaitlistEntry
		if err := scanWaitlistEntry(rows, &e); err != nil {
			return nil, 0, mapErr(err)
		}
		entries = append(entries, e)
	}
	return entries, total, mapErr(rows.Err())
}

func (r *WaitlistRepository) CountByStatus(ctx context.Context) (map[entity.WaitlistStatus]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM waitlist_entries
		GROUP BY status
	`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	counts := map[entity.WaitlistStatus]int{}
	for rows.Next() {
		var status entity.WaitlistStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, mapErr(err)
		}
		counts[status] = n
	}
	return counts, mapErr(rows.Err())
}

func (r *WaitlistRepository) CountSubmitted(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM waitlist_entries
		WHERE ($1::timestamptz IS NULL OR submitted_at >= $1)
		  AND ($2::timestamptz IS NULL OR submitted_at < $2)
	`, nullableTime(start), nullableTime(end)).Scan(&n)
	return n, mapErr(err)
}

// DayCounts buckets entries by UTC calendar day of the given timestamp column.
// field comes from the repository.TimestampField constants, never user input.
func (r *WaitlistRepository) DayCounts(ctx context.Context, field repository.TimestampField, start, end time.Time) ([]repository.DayCount, error) {
	col := string(field)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT (%[1]s AT TIME ZONE 'UTC')::date AS day, COUNT(*)
		FROM waitlist_entries
		WHERE %[1]s IS NOT NULL
		  AND ($1::timestamptz IS NULL OR %[1]s >= $1)
		  AND ($2::timestamptz IS NULL OR %[1]s < $2)
		GROUP BY day
		ORDER BY day
	`, col), nullableTime(start), nullableTime(end))
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.DayCount{}
	for rows.Next() {
		var dc repository.DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, dc)
	}
	return out, mapErr(rows.Err())
}

func (r *WaitlistRepository) Totals(ctx context.Context) (repository.WaitlistTotals, error) {
	var t repository.WaitlistTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(invited_at),
		       COUNT(converted_at)
		FROM waitlist_entries
	`).Scan(&t.Submissions, &t.Invited, &t.Converted)
	return t, mapErr(err)
}

func (r *WaitlistRepository) AvgDaysSubmitToInvite(ctx context.Context) (float64, error) {
	return r.avgDays(ctx, `invited_at - submitted_at`, `invited_at IS NOT NULL`)
}

func (r *WaitlistRepository) AvgDaysInviteToConvert(ctx context.Context) (float64, error) {
	return r.avgDays(ctx, `converted_at - invited_at`, `converted_at IS NOT NULL AND invited_at IS NOT NULL`)
}

func (r *WaitlistRepository) avgDays(ctx context.Context, diff, cond string) (float64, error) {
	var avg *float64
	err := r.pool.QueryRow(ctx, `
		SELECT AVG(EXTRACT(EPOCH FROM (`+diff+`)) / 86400)
		FROM waitlist_entries
		WHERE `+cond,
	).Scan(&avg)
	if err != nil {
		return 0, mapErr(err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *WaitlistRepository) InterestCounts(ctx context.Context) ([]repository.InterestCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT interest, COUNT(*)
		FROM waitlist_entries, unnest(interests) AS interest
		GROUP BY interest
		ORDER BY COUNT(*) DESC, interest
	`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.InterestCount{}
	for rows.Next() {
		var ic repository.InterestCount
		if err := rows.Scan(&ic.Interest, &ic.Count); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, ic)
	}
	return out, mapErr(rows.Err())
}

// nullableTime maps the zero time to NULL so range predicates can treat it as
// an open bound.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var _ repository.WaitlistRepository = (*WaitlistRepository)(nil)
