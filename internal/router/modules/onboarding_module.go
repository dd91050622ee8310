package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/launchbay/onboarding-api/internal/container"
	handlers "github.com/launchbay/onboarding-api/internal/interface/http"
	"github.com/launchbay/onboarding-api/internal/interface/middleware"
)

// OnboardingModule exposes the anonymous visitor journey.
// GET /api/user-id, POST /api/profile, POST|GET /api/badge,
// GET /api/userinfo/:userId, POST /api/events
type OnboardingModule struct {
	Handler *handlers.OnboardingHandler
}

func NewOnboardingModule(h *handlers.OnboardingHandler) *OnboardingModule {
	return &OnboardingModule{Handler: h}
}

func (m *OnboardingModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP())
	eventLimiter := middleware.RateLimit(container.GetRedis(), 600, time.Minute, middleware.KeyByIP())

	rg.GET("/user-id", limiter, m.Handler.UserID)
	rg.POST("/profile", limiter, m.Handler.SaveProfile)
	rg.POST("/badge", limiter, m.Handler.IssueBadge)
	rg.GET("/badge", limiter, m.Handler.GetBadge)
	rg.GET("/userinfo/:userId", limiter, m.Handler.UserInfo)
	rg.POST("/events", eventLimiter, m.Handler.RecordEvent)
}
