package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	app "github.com/launchbay/onboarding-api/internal/application"
	"github.com/launchbay/onboarding-api/internal/container"
	"github.com/launchbay/onboarding-api/internal/domain/entity"
	handlers "github.com/launchbay/onboarding-api/internal/interface/http"
	"github.com/launchbay/onboarding-api/internal/interface/middleware"
)

// AdminModule exposes the dashboard surface under /api/admin.
// Login and refresh are public; everything else requires a live session.
// Mutating waitlist routes additionally require the ADMIN role.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Svc     *app.AdminService
}

func NewAdminModule(h *handlers.AdminHandler, svc *app.AdminService) *AdminModule {
	return &AdminModule{Handler: h, Svc: svc}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")

	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP())
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP())

	admin.POST("/login", loginLimiter, m.Handler.Login)
	admin.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := admin.Group("/")
	auth.Use(middleware.AdminAuth(m.Svc, container.GetJWT()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP()))
	{
		auth.POST("/logout", m.Handler.Logout)

		auth.GET("/waitlist", m.Handler.ListWaitlist)
		auth.GET("/waitlist/search", m.Handler.SearchWaitlist)
		auth.GET("/users", m.Handler.ListUsers)
		auth.GET("/funnel", m.Handler.Funnel)
		auth.GET("/analytics", m.Handler.AnalyticsSeries)
		auth.GET("/stats", m.Handler.GetDailyStats)

		mutate := auth.Group("/")
		mutate.Use(middleware.RequireRole(entity.RoleAdmin))
		{
			mutate.PATCH("/waitlist", m.Handler.PatchWaitlist)
			mutate.POST("/waitlist/invite", m.Handler.Invite)
			mutate.POST("/waitlist/bulk-invite", m.Handler.BulkInvite)
			mutate.POST("/stats", m.Handler.RecomputeDailyStats)
		}
	}
}
