package router

import (
	app "github.com/launchbay/onboarding-api/internal/application"
	"github.com/launchbay/onboarding-api/internal/container"
	pginfra "github.com/launchbay/onboarding-api/internal/infrastructure/postgres"
	handlers "github.com/launchbay/onboarding-api/internal/interface/http"
	"github.com/launchbay/onboarding-api/internal/router/modules"
)

// InitModules constructs every feature module from the container singletons
// and registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(pool)
	waitlist := pginfra.NewWaitlistRepository(pool)
	profiles := pginfra.NewProfileRepository(pool)
	badges := pginfra.NewBadgeRepository(pool)
	events := pginfra.NewEventRepository(pool)
	stats := pginfra.NewStatsRepository(pool)
	admins := pginfra.NewAdminRepository(pool)

	waitlistSvc := &app.WaitlistService{
		Users:       users,
		Waitlist:    waitlist,
		Limiter:     container.GetSubmitLimiter(),
		Publisher:   container.GetRabbitPub(),
		ES:          container.GetES(),
		ESIndex:     cfg.ESWaitlistIndex,
		Logger:      logger,
		NotifyEmail: cfg.NotifyEmail,
	}

	invitationSvc := &app.InvitationService{
		Users:       users,
		Waitlist:    waitlist,
		Logger:      logger,
		AppName:     cfg.AppName,
		BaseURL:     cfg.BaseURL,
		PacingDelay: cfg.BulkInviteDelay,
	}
	if mg := container.GetMailgun(); mg != nil {
		invitationSvc.Mailer = mg
	}

	analyticsSvc := &app.AnalyticsService{
		Waitlist: waitlist,
		Profiles: profiles,
		Badges:   badges,
		Events:   events,
		Stats:    stats,
	}

	onboardingSvc := &app.OnboardingService{
		Users:    users,
		Waitlist: waitlist,
		Profiles: profiles,
		Badges:   badges,
		Events:   events,
	}

	adminSvc := &app.AdminService{
		Admins:   admins,
		Users:    users,
		Waitlist: waitlist,
		Profiles: profiles,
		Badges:   badges,
		JWT:      container.GetJWT(),
		Redis:    container.GetRedis(),
		Logger:   logger,
		ES:       container.GetES(),
		ESIndex:  cfg.ESWaitlistIndex,
	}

	waitlistHandler := handlers.NewWaitlistHandler(waitlistSvc, invitationSvc, logger)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingSvc, logger)
	adminHandler := handlers.NewAdminHandler(adminSvc, invitationSvc, analyticsSvc, logger, cfg.CookieDomain, cfg.CookieSecure)

	r.Add(modules.NewWaitlistModule(waitlistHandler))
	r.Add(modules.NewOnboardingModule(onboardingHandler))
	r.Add(modules.NewAdminModule(adminHandler, adminSvc))
}
