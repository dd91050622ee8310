package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	app "github.com/launchbay/onboarding-api/internal/application"
	"github.com/launchbay/onboarding-api/internal/domain/entity"
	"github.com/launchbay/onboarding-api/pkg/helpers"
	"github.com/launchbay/onboarding-api/pkg/response"
)

// AdminAuth validates the access token cookie and checks the session is still
// live. It sets adminID, adminEmail and adminRole in the Gin context.
func AdminAuth(svc *app.AdminService, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		admin, err := svc.ValidateSession(c.Request.Context(), claims)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "session expired", nil)
			c.Abort()
			return
		}

		c.Set("adminID", admin.ID)
		c.Set("adminEmail", admin.Email)
		c.Set("adminRole", string(admin.Role))
		c.Next()
	}
}

// RequireRole gates a route group behind a minimum admin role. It must run
// after AdminAuth.
func RequireRole(min entity.AdminRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := entity.AdminRole(c.GetString("adminRole"))
		if !role.AtLeast(min) {
			response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
