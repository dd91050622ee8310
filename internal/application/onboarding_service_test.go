package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchbay/onboarding-api/internal/domain/entity"
)

func newOnboardingService() (*OnboardingService, *fakeUserRepo, *fakeWaitlistRepo, *fakeProfileRepo, *fakeBadgeRepo) {
	users := newFakeUserRepo()
	waitlist := newFakeWaitlistRepo()
	profiles := newFakeProfileRepo()
	badges := newFakeBadgeRepo()
	svc := &OnboardingService{
		Users:    users,
		Waitlist: waitlist,
		Profiles: profiles,
		Badges:   badges,
		Events:   newFakeEventRepo(),
	}
	return svc, users, waitlist, profiles, badges
}

func TestAnonymousUserHasNoIdentity(t *testing.T) {
	svc, _, _, _, _ := newOnboardingService()

	u, err := svc.AnonymousUser(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Nil(t, u.Email)
	assert.Nil(t, u.SubjectID)
}

func TestSaveProfileMarksCompleted(t *testing.T) {
	svc, _, _, profiles, _ := newOnboardingService()
	ctx := context.Background()

	u, err := svc.AnonymousUser(ctx)
	require.NoError(t, err)

	p, err := svc.SaveProfile(ctx, ProfileInput{
		UserID:            u.ID,
		KnowledgePattern:  "explorer",
		ThesisPattern:     "builder",
		PrioritizePattern: "impact",
		ActionPattern:     "fast",
		NavigationPattern: "direct",
		Responses:         json.RawMessage(`{"q1":"a"}`),
	})
	require.NoError(t, err)
	assert.True(t, p.OnboardingCompleted)
	assert.NotNil(t, p.CompletedAt)

	stored, err := profiles.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "explorer", stored.KnowledgePattern)
	assert.JSONEq(t, `{"q1":"a"}`, string(stored.Responses))
}

func TestSaveProfileUpsertsInPlace(t *testing.T) {
	svc, _, _, profiles, _ := newOnboardingService()
	ctx := context.Background()

	u, err := svc.AnonymousUser(ctx)
	require.NoError(t, err)

	in := ProfileInput{
		UserID:            u.ID,
		KnowledgePattern:  "explorer",
		ThesisPattern:     "builder",
		PrioritizePattern: "impact",
		ActionPattern:     "fast",
		NavigationPattern: "direct",
	}
	first, err := svc.SaveProfile(ctx, in)
	require.NoError(t, err)

	in.KnowledgePattern = "scholar"
	second, err := svc.SaveProfile(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, profiles.profiles, 1)
	assert.Equal(t, "scholar", second.KnowledgePattern)
}

func TestSaveProfileUnknownUser(t *testing.T) {
	svc, _, _, _, _ := newOnboardingService()
	_, err := svc.SaveProfile(context.Background(), ProfileInput{UserID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIssueBadgeDerivesSerial(t *testing.T) {
	svc, _, _, _, _ := newOnboardingService()
	ctx := context.Background()

	u, err := svc.AnonymousUser(ctx)
	require.NoError(t, err)

	b, err := svc.IssueBadge(ctx, u.ID, "Ada")
	require.NoError(t, err)
	assert.Equal(t, entity.BadgeSerial(u.ID), b.SerialNumber)
	assert.Len(t, b.SerialNumber, 8)
	assert.Equal(t, b.SerialNumber, entity.BadgeSerial(u.ID))
	require.NotNil(t, b.DisplayName)
	assert.Equal(t, "Ada", *b.DisplayName)
}

func TestIssueBadgeIsIdempotent(t *testing.T) {
	svc, _, _, _, badges := newOnboardingService()
	ctx := context.Background()

	u, err := svc.AnonymousUser(ctx)
	require.NoError(t, err)

	first, err := svc.IssueBadge(ctx, u.ID, "Ada")
	require.NoError(t, err)
	second, err := svc.IssueBadge(ctx, u.ID, "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.SerialNumber, second.SerialNumber)
	assert.Len(t, badges.badges, 1)
}

func TestIssueBadgeUnknownUser(t *testing.T) {
	svc, _, _, _, _ := newOnboardingService()
	_, err := svc.IssueBadge(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserInfoComposite(t *testing.T) {
	svc, _, waitlist, _, _ := newOnboardingService()
	ctx := context.Background()

	u, err := svc.AnonymousUser(ctx)
	require.NoError(t, err)

	// Bare user: optional sections stay empty.
	info, err := svc.UserInfo(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, info.Profile)
	assert.Nil(t, info.Badge)
	assert.Nil(t, info.Waitlist)

	_, err = svc.SaveProfile(ctx, ProfileInput{
		UserID:            u.ID,
		KnowledgePattern:  "explorer",
		ThesisPattern:     "builder",
		PrioritizePattern: "impact",
		ActionPattern:     "fast",
		NavigationPattern: "direct",
	})
	require.NoError(t, err)
	_, err = svc.IssueBadge(ctx, u.ID, "")
	require.NoError(t, err)
	require.NoError(t, waitlist.Create(ctx, &entity.WaitlistEntry{
		UserID: u.ID, Name: "Ada", Email: "ada@example.com", Status: entity.WaitlistActive,
	}))

	info, err = svc.UserInfo(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, info.Profile)
	require.NotNil(t, info.Badge)
	require.NotNil(t, info.Waitlist)
	assert.Equal(t, "ada@example.com", info.Waitlist.Email)
}

func TestRecordEventRejectsUnknownType(t *testing.T) {
	svc, _, _, _, _ := newOnboardingService()

	_, err := svc.RecordEvent(context.Background(), EventInput{
		SessionID: "s1",
		EventType: "PHASE_SKIPPED",
		Phase:     entity.PhaseEntrance,
	})
	assert.Error(t, err)
}

func TestRecordEventStoresOptionalUser(t *testing.T) {
	svc, _, _, _, _ := newOnboardingService()
	ctx := context.Background()

	anon, err := svc.RecordEvent(ctx, EventInput{
		SessionID: "s1",
		EventType: entity.PhaseStart,
		Phase:     entity.PhaseEntrance,
	})
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)

	known, err := svc.RecordEvent(ctx, EventInput{
		UserID:    "u1",
		SessionID: "s1",
		EventType: entity.PhaseComplete,
		Phase:     entity.PhaseWaitlist,
	})
	require.NoError(t, err)
	require.NotNil(t, known.UserID)
	assert.Equal(t, "u1", *known.UserID)
}
