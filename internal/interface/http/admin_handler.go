package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/launchbay/onboarding-api/internal/application"
	"github.com/launchbay/onboarding-api/internal/domain/entity"
	repo "github.com/launchbay/onboarding-api/internal/domain/repository"
	"github.com/launchbay/onboarding-api/pkg/helpers"
	"github.com/launchbay/onboarding-api/pkg/response"
	"github.com/launchbay/onboarding-api/pkg/validation"
)

type AdminHandler struct {
	Admin       *app.AdminService
	Invitations *app.InvitationService
	Analytics   *app.AnalyticsService
	Logger      *logrus.Logger
	Cookies     *helpers.Manager
}

func NewAdminHandler(admin *app.AdminService, invitations *app.InvitationService, analytics *app.AnalyticsService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AdminHandler {
	return &AdminHandler{
		Admin:       admin,
		Invitations: invitations,
		Analytics:   analytics,
		Logger:      logger,
		Cookies:     helpers.NewCookie(cookieDomain, cookieSecure),
	}
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	admin, pair, err := h.Admin.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"id":    admin.ID,
		"email": admin.Email,
		"name":  admin.Name,
		"role":  admin.Role,
	}, "login successful", gin.H{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

func (h *AdminHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	_, pair, err := h.Admin.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", gin.H{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

func (h *AdminHandler) Logout(c *gin.Context) {
	if adminID := c.GetString("adminID"); adminID != "" {
		if err := h.Admin.Logout(c.Request.Context(), adminID); err != nil {
			h.Logger.WithError(err).Warn("session delete failed")
		}
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AdminHandler) Invite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Invitations.Issue(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error[any](c, http.StatusNotFound, "waitlist entry not found", nil)
		case errors.Is(err, app.ErrAlreadyConverted):
			response.Error[any](c, http.StatusBadRequest, "entry already converted", nil)
		case errors.Is(err, app.ErrEmailUnavailable):
			response.Error[any](c, http.StatusServiceUnavailable, "email delivery not configured", nil)
		default:
			h.Logger.WithError(err).Error("invitation issue failed")
			response.Error[any](c, http.StatusInternalServerError, "could not send invitation", nil)
		}
		return
	}
	// The token is echoed back so the dashboard can surface the invitation
	// link without a second lookup.
	response.Success(c, http.StatusOK, gin.H{
		"entryId":   res.Entry.ID,
		"email":     res.Entry.Email,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	}, "invitation sent", nil)
}

type bulkInviteRequest struct {
	Emails []string `json:"emails" binding:"required,min=1,max=100,dive,email"`
}

func (h *AdminHandler) BulkInvite(c *gin.Context) {
	var req bulkInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Invitations.IssueBulk(c.Request.Context(), req.Emails)
	if err != nil {
		h.Logger.WithError(err).Error("bulk invite aborted")
		response.Error[any](c, http.StatusInternalServerError, "bulk invite aborted", res)
		return
	}
	response.Success(c, http.StatusOK, res, "bulk invite finished", nil)
}

func (h *AdminHandler) ListWaitlist(c *gin.Context) {
	f := repo.WaitlistFilter{
		Status: entity.WaitlistStatus(c.Query("status")),
		Search: c.Query("search"),
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}
	if f.Status != "" && !f.Status.Valid() {
		response.Error[any](c, http.StatusBadRequest, "unknown status filter", nil)
		return
	}

	entries, total, err := h.Admin.ListWaitlist(c.Request.Context(), f)
	if err != nil {
		h.Logger.WithError(err).Error("waitlist list failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list waitlist", nil)
		return
	}

	views := make([]gin.H, 0, len(entries))
	for i := range entries {
		views = append(views, waitlistEntryView(&entries[i]))
	}
	response.Success(c, http.StatusOK, views, "waitlist", gin.H{"total": total, "limit": f.Limit, "offset": f.Offset})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	f := repo.UserFilter{
		Search: c.Query("search"),
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}

	rows, total, err := h.Admin.ListUsers(c.Request.Context(), f)
	if err != nil {
		h.Logger.WithError(err).Error("user list failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list users", nil)
		return
	}
	response.Success(c, http.StatusOK, rows, "users", gin.H{"total": total, "limit": f.Limit, "offset": f.Offset})
}

type patchWaitlistRequest struct {
	EntryID string `json:"entryId" binding:"required,uuid"`
	Status  string `json:"status" binding:"required,oneof=ACTIVE CONVERTED INACTIVE"`
}

func (h *AdminHandler) PatchWaitlist(c *gin.Context) {
	var req patchWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	entry, err := h.Admin.UpdateWaitlistStatus(c.Request.Context(), req.EntryID, entity.WaitlistStatus(req.Status))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "waitlist entry not found", nil)
			return
		}
		h.Logger.WithError(err).Error("waitlist status update failed")
		response.Error[any](c, http.StatusInternalServerError, "could not update entry", nil)
		return
	}
	response.Success(c, http.StatusOK, waitlistEntryView(entry), "entry updated", nil)
}

func (h *AdminHandler) SearchWaitlist(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}

	hits, err := h.Admin.SearchWaitlist(c.Request.Context(), q, intQuery(c, "size", 10))
	if err != nil {
		h.Logger.WithError(err).Error("waitlist search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

func (h *AdminHandler) Funnel(c *gin.Context) {
	from, ok := dateQuery(c, "startDate")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "endDate")
	if !ok {
		return
	}
	if !to.IsZero() {
		// endDate is inclusive; range predicates are half-open.
		to = to.AddDate(0, 0, 1)
	}

	funnel, err := h.Analytics.Funnel(c.Request.Context(), from, to)
	if err != nil {
		h.Logger.WithError(err).Error("funnel aggregation failed")
		response.Error[any](c, http.StatusInternalServerError, "could not compute funnel", nil)
		return
	}
	response.Success(c, http.StatusOK, funnel, "funnel", nil)
}

func (h *AdminHandler) AnalyticsSeries(c *gin.Context) {
	res, err := h.Analytics.TimeSeries(c.Request.Context(), intQuery(c, "days", 0))
	if err != nil {
		h.Logger.WithError(err).Error("analytics aggregation failed")
		response.Error[any](c, http.StatusInternalServerError, "could not compute analytics", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "analytics", nil)
}

func (h *AdminHandler) GetDailyStats(c *gin.Context) {
	start, ok := dateQuery(c, "startDate")
	if !ok {
		return
	}
	end, ok := dateQuery(c, "endDate")
	if !ok {
		return
	}

	stats, err := h.Analytics.DailyStats(c.Request.Context(), start, end)
	if err != nil {
		h.Logger.WithError(err).Error("daily stats lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load daily stats", nil)
		return
	}
	response.Success(c, http.StatusOK, stats, "daily stats", nil)
}

func (h *AdminHandler) RecomputeDailyStats(c *gin.Context) {
	date, ok := dateQuery(c, "date")
	if !ok {
		return
	}

	stats, err := h.Analytics.RecomputeDailyStats(c.Request.Context(), date)
	if err != nil {
		h.Logger.WithError(err).Error("daily stats recompute failed")
		response.Error[any](c, http.StatusInternalServerError, "could not recompute daily stats", nil)
		return
	}
	response.Success(c, http.StatusOK, stats, "daily stats recomputed", nil)
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// dateQuery parses an optional YYYY-MM-DD query parameter. It writes the
// error response itself and reports ok=false on a malformed value.
func dateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return date, true
}
