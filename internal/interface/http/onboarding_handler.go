package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/launchbay/onboarding-api/internal/application"
	"github.com/launchbay/onboarding-api/internal/domain/entity"
	"github.com/launchbay/onboarding-api/pkg/response"
	"github.com/launchbay/onboarding-api/pkg/validation"
)

type OnboardingHandler struct {
	Svc    *app.OnboardingService
	Logger *logrus.Logger
}

func NewOnboardingHandler(svc *app.OnboardingService, logger *logrus.Logger) *OnboardingHandler {
	return &OnboardingHandler{Svc: svc, Logger: logger}
}

// UserID bootstraps an anonymous user for a fresh visitor.
func (h *OnboardingHandler) UserID(c *gin.Context) {
	user, err := h.Svc.AnonymousUser(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("anonymous user creation failed")
		response.Error[any](c, http.StatusInternalServerError, "could not create user", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"userId": user.ID}, "user created", nil)
}

type profileRequest struct {
	UserID            string          `json:"userId" binding:"required,uuid"`
	KnowledgePattern  string          `json:"knowledgePattern" binding:"required,max=64"`
	ThesisPattern     string          `json:"thesisPattern" binding:"required,max=64"`
	PrioritizePattern string          `json:"prioritizePattern" binding:"required,max=64"`
	ActionPattern     string          `json:"actionPattern" binding:"required,max=64"`
	NavigationPattern string          `json:"navigationPattern" binding:"required,max=64"`
	DisplayName       string          `json:"displayName" binding:"omitempty,max=120"`
	Responses         json.RawMessage `json:"responses"`
}

func (h *OnboardingHandler) SaveProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	profile, err := h.Svc.SaveProfile(c.Request.Context(), app.ProfileInput{
		UserID:            req.UserID,
		KnowledgePattern:  req.KnowledgePattern,
		ThesisPattern:     req.ThesisPattern,
		PrioritizePattern: req.PrioritizePattern,
		ActionPattern:     req.ActionPattern,
		NavigationPattern: req.NavigationPattern,
		DisplayName:       req.DisplayName,
		Responses:         req.Responses,
	})
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("profile save failed")
		response.Error[any](c, http.StatusInternalServerError, "could not save profile", nil)
		return
	}
	response.Success(c, http.StatusOK, profile, "profile saved", nil)
}

type badgeRequest struct {
	UserID      string `json:"userId" binding:"required,uuid"`
	DisplayName string `json:"displayName" binding:"omitempty,max=120"`
}

func (h *OnboardingHandler) IssueBadge(c *gin.Context) {
	var req badgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	badge, err := h.Svc.IssueBadge(c.Request.Context(), req.UserID, req.DisplayName)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("badge issue failed")
		response.Error[any](c, http.StatusInternalServerError, "could not issue badge", nil)
		return
	}
	response.Success(c, http.StatusOK, badge, "badge issued", nil)
}

func (h *OnboardingHandler) GetBadge(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.Error[any](c, http.StatusBadRequest, "userId is required", nil)
		return
	}

	badge, err := h.Svc.GetBadge(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "badge not found", nil)
			return
		}
		h.Logger.WithError(err).Error("badge lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load badge", nil)
		return
	}
	response.Success(c, http.StatusOK, badge, "badge", nil)
}

func (h *OnboardingHandler) UserInfo(c *gin.Context) {
	userID := c.Param("userId")

	info, err := h.Svc.UserInfo(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("userinfo lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load user info", nil)
		return
	}
	response.Success(c, http.StatusOK, info, "user info", nil)
}

type eventRequest struct {
	UserID     string `json:"userId" binding:"omitempty,uuid"`
	SessionID  string `json:"sessionId" binding:"required,max=128"`
	EventType  string `json:"eventType" binding:"required,oneof=PHASE_START PHASE_COMPLETE"`
	Phase      string `json:"phase" binding:"required,max=64"`
	DurationMS *int64 `json:"durationMs" binding:"omitempty,gte=0"`
}

func (h *OnboardingHandler) RecordEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	ev, err := h.Svc.RecordEvent(c.Request.Context(), app.EventInput{
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		EventType:  entity.EventType(req.EventType),
		Phase:      req.Phase,
		DurationMS: req.DurationMS,
	})
	if err != nil {
		h.Logger.WithError(err).Error("event record failed")
		response.Error[any](c, http.StatusInternalServerError, "could not record event", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": ev.ID, "occurredAt": ev.OccurredAt}, "event recorded", nil)
}
