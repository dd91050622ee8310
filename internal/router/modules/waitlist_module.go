package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/launchbay/onboarding-api/internal/container"
	handlers "github.com/launchbay/onboarding-api/internal/interface/http"
	"github.com/launchbay/onboarding-api/internal/interface/middleware"
)

// WaitlistModule exposes the public waitlist surface.
// POST /api/waitlist, POST /api/waitlist/verify-invitation, POST /api/waitlist/convert
type WaitlistModule struct {
	Handler *handlers.WaitlistHandler
}

func NewWaitlistModule(h *handlers.WaitlistHandler) *WaitlistModule {
	return &WaitlistModule{Handler: h}
}

func (m *WaitlistModule) Register(rg *gin.RouterGroup) {
	submitLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP())
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/waitlist", submitLimiter, m.Handler.Register)
	rg.POST("/waitlist/verify-invitation", verifyLimiter, m.Handler.VerifyInvitation)
	rg.POST("/waitlist/convert", verifyLimiter, m.Handler.Convert)
}
