package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/launchbay/onboarding-api/internal/application"
	"github.com/launchbay/onboarding-api/internal/domain/entity"
	"github.com/launchbay/onboarding-api/pkg/response"
	"github.com/launchbay/onboarding-api/pkg/validation"
)

type WaitlistHandler struct {
	Waitlist    *app.WaitlistService
	Invitations *app.InvitationService
	Logger      *logrus.Logger
}

func NewWaitlistHandler(waitlist *app.WaitlistService, invitations *app.InvitationService, logger *logrus.Logger) *WaitlistHandler {
	return &WaitlistHandler{Waitlist: waitlist, Invitations: invitations, Logger: logger}
}

type registerRequest struct {
	Name      string   `json:"name" binding:"required,max=120"`
	Email     string   `json:"email" binding:"required,email"`
	Company   string   `json:"company" binding:"omitempty,max=200"`
	Interests []string `json:"interests" binding:"omitempty,dive,max=64"`
}

func (h *WaitlistHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Waitlist.Register(c.Request.Context(), app.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Company:   req.Company,
		Interests: req.Interests,
	})
	if err != nil {
		if errors.Is(err, app.ErrRateLimited) {
			response.Error[any](c, http.StatusTooManyRequests, "please wait before submitting again", nil)
			return
		}
		h.Logger.WithError(err).Error("waitlist registration failed")
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}

	status := http.StatusCreated
	message := "registered"
	if res.AlreadyRegistered {
		status = http.StatusOK
		message = "already registered"
	}
	response.Success(c, status, waitlistEntryView(res.Entry), message, nil)
}

type verifyInvitationRequest struct {
	Token string `json:"token" binding:"required,len=64,hexadecimal"`
}

func (h *WaitlistHandler) VerifyInvitation(c *gin.Context) {
	var req verifyInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	entry, err := h.Invitations.Verify(c.Request.Context(), req.Token)
	if err != nil {
		h.invitationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"valid":     true,
		"name":      entry.Name,
		"email":     entry.Email,
		"expiresAt": entry.InvitationExpiresAt,
	}, "invitation valid", nil)
}

type convertRequest struct {
	Token     string `json:"token" binding:"required,len=64,hexadecimal"`
	SubjectID string `json:"subjectId" binding:"omitempty,max=128"`
	Email     string `json:"email" binding:"omitempty,email"`
	Name      string `json:"name" binding:"omitempty,max=120"`
}

func (h *WaitlistHandler) Convert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	entry, err := h.Invitations.Convert(c.Request.Context(), app.ConvertInput{
		Token:     req.Token,
		SubjectID: req.SubjectID,
		Email:     req.Email,
		Name:      req.Name,
	})
	if err != nil {
		h.invitationError(c, err)
		return
	}
	response.Success(c, http.StatusOK, waitlistEntryView(entry), "invitation redeemed", nil)
}

// invitationError keeps the three token failure modes distinguishable for the
// frontend while everything else collapses to a 500.
func (h *WaitlistHandler) invitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidToken):
		response.Error[any](c, http.StatusNotFound, "invitation not found", gin.H{"code": "invalid_token"})
	case errors.Is(err, app.ErrInvitationExpired):
		response.Error[any](c, http.StatusGone, "invitation expired", gin.H{"code": "invitation_expired"})
	case errors.Is(err, app.ErrInvitationUsed):
		response.Error[any](c, http.StatusBadRequest, "invitation already used", gin.H{"code": "invitation_used"})
	default:
		h.Logger.WithError(err).Error("invitation lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "invitation lookup failed", nil)
	}
}

func waitlistEntryView(e *entity.WaitlistEntry) gin.H {
	view := gin.H{
		"id":          e.ID,
		"userId":      e.UserID,
		"name":        e.Name,
		"email":       e.Email,
		"interests":   e.Interests,
		"status":      e.Status,
		"submittedAt": e.SubmittedAt,
	}
	if e.Company != nil {
		view["company"] = *e.Company
	}
	if e.InvitedAt != nil {
		view["invitedAt"] = e.InvitedAt
	}
	if e.InvitationExpiresAt != nil {
		view["invitationExpiresAt"] = e.InvitationExpiresAt
	}
	if e.ConvertedAt != nil {
		view["convertedAt"] = e.ConvertedAt
	}
	return view
}
