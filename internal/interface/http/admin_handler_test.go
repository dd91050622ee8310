package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/launchbay/onboarding-api/internal/application"
	"github.com/launchbay/onboarding-api/internal/domain/entity"
	repo "github.com/launchbay/onboarding-api/internal/domain/repository"
	"github.com/launchbay/onboarding-api/pkg/helpers"
)

// stubWaitlistRepo implements just the calls the invite path makes; the
// embedded interface panics on anything else.
type stubWaitlistRepo struct {
	repo.WaitlistRepository
	entry *entity.WaitlistEntry
}

func (s *stubWaitlistRepo) GetByEmail(_ context.Context, email string) (*entity.WaitlistEntry, error) {
	if s.entry != nil && s.entry.Email == email {
		cp := *s.entry
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (s *stubWaitlistRepo) SetInvitation(_ context.Context, id, token string, invitedAt, expiresAt time.Time) error {
	s.entry.InvitationToken = &token
	s.entry.InvitedAt = &invitedAt
	s.entry.InvitationExpiresAt = &expiresAt
	return nil
}

type stubSender struct{}

func (stubSender) Send(context.Context, string, string, string, string) error { return nil }

func newInviteTestHandler(wl *stubWaitlistRepo) *AdminHandler {
	svc := &app.InvitationService{
		Waitlist: wl,
		Mailer:   stubSender{},
		AppName:  "launchbay",
		BaseURL:  "https://app.example.com",
	}
	logger := logrus.New()
	return &AdminHandler{Invitations: svc, Logger: logger, Cookies: helpers.NewCookie("", false)}
}

func postJSON(t *testing.T, handler gin.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestInviteEchoesTokenAndExpiry(t *testing.T) {
	wl := &stubWaitlistRepo{entry: &entity.WaitlistEntry{
		ID: "e1", UserID: "u1", Name: "Ada", Email: "ada@example.com", Status: entity.WaitlistActive,
	}}
	h := newInviteTestHandler(wl)

	w := postJSON(t, h.Invite, "/api/admin/waitlist/invite", `{"email":"ada@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			EntryID   string    `json:"entryId"`
			Email     string    `json:"email"`
			Token     string    `json:"token"`
			ExpiresAt time.Time `json:"expiresAt"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "e1", resp.Data.EntryID)
	assert.Regexp(t, `^[0-9a-f]{64}$`, resp.Data.Token)
	assert.False(t, resp.Data.ExpiresAt.IsZero())
}

func TestInviteIsKeyedByEmail(t *testing.T) {
	wl := &stubWaitlistRepo{entry: &entity.WaitlistEntry{
		ID: "e1", UserID: "u1", Name: "Ada", Email: "ada@example.com", Status: entity.WaitlistActive,
	}}
	h := newInviteTestHandler(wl)

	w := postJSON(t, h.Invite, "/api/admin/waitlist/invite", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(t, h.Invite, "/api/admin/waitlist/invite", `{"entryId":"e1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
