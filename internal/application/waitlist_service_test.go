package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
	repo "github.com/launchbay/onboarding-api/internal/domain/repository"
)

func newWaitlistService() (*WaitlistService, *fakeUserRepo, *fakeWaitlistRepo, *fakeLimiter) {
	users := newFakeUserRepo()
	waitlist := newFakeWaitlistRepo()
	limiter := newFakeLimiter()
	svc := &WaitlistService{Users: users, Waitlist: waitlist, Limiter: limiter}
	return svc, users, waitlist, limiter
}

func TestRegisterCreatesUserAndEntry(t *testing.T) {
	svc, users, _, limiter := newWaitlistService()

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:      "Ada Lovelace",
		Email:     "Ada@Example.com",
		Company:   "Analytical Engines",
		Interests: []string{"automation"},
	})
	require.NoError(t, err)
	assert.False(t, res.AlreadyRegistered)
	assert.Equal(t, "ada@example.com", res.Entry.Email)
	assert.Equal(t, entity.WaitlistActive, res.Entry.Status)
	require.NotNil(t, res.Entry.Company)
	assert.Equal(t, "Analytical Engines", *res.Entry.Company)

	user, err := users.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.Entry.UserID)

	assert.Equal(t, []string{"ada@example.com"}, limiter.recorded)
}

func TestRegisterResubmitIsIdempotent(t *testing.T) {
	svc, _, _, _ := newWaitlistService()
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	second, err := svc.Register(ctx, RegisterInput{Name: "Ada Again", Email: "ADA@example.com"})
	require.NoError(t, err)
	assert.True(t, second.AlreadyRegistered)
	assert.Equal(t, first.Entry.ID, second.Entry.ID)
	assert.Equal(t, "Ada", second.Entry.Name)
}

func TestRegisterBlockedByLimiter(t *testing.T) {
	svc, _, waitlist, limiter := newWaitlistService()
	limiter.blocked["ada@example.com"] = true

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Empty(t, waitlist.entries)
}

func TestRegisterRecoversFromDuplicateRace(t *testing.T) {
	svc, _, waitlist, _ := newWaitlistService()
	ctx := context.Background()

	// Simulate a concurrent winner: the entry exists but the first existence
	// check misses it, so our insert hits the unique constraint.
	winner := &entity.WaitlistEntry{UserID: "other", Name: "Ada", Email: "ada@example.com", Status: entity.WaitlistActive}
	require.NoError(t, waitlist.Create(ctx, winner))
	waitlist.createErr = repo.ErrDuplicate
	waitlist.emailMisses = 1

	res, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.True(t, res.AlreadyRegistered)
	assert.Equal(t, winner.ID, res.Entry.ID)
}

func TestRegisterPropagatesStorageError(t *testing.T) {
	svc, _, waitlist, limiter := newWaitlistService()
	waitlist.createErr = errBoom

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, limiter.recorded)
}

func TestRegisterReusesExistingUser(t *testing.T) {
	svc, users, _, _ := newWaitlistService()
	ctx := context.Background()

	email := "ada@example.com"
	existing := &entity.User{Email: &email}
	require.NoError(t, users.Create(ctx, existing))

	res, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: email})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, res.Entry.UserID)
	assert.Len(t, users.users, 1)
}
