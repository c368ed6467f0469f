package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/domain"
	fiberlogger "github.com/atlas-ops/atlas/internal/logger/adapter/fiber"
	"github.com/atlas-ops/atlas/internal/metrics"
	"github.com/atlas-ops/atlas/internal/web/handler"
	"github.com/atlas-ops/atlas/internal/web/session"
)

const (
	// CookieName is the default name of the session cookie.
	CookieName = "atlas_session"

	// UserLocal is the fiber Locals key of the authenticated domain.User.
	UserLocal = "currentUser"
)

// Users resolves session user ids.
type Users interface {
	User(id string) (domain.User, error)
}

// Middleware returns a Fiber middleware that loads the session user. Requests
// without a valid session of an active user are rejected with 401.
func Middleware(users Users, cookieName string) fiber.Handler {
	if cookieName == "" {
		cookieName = CookieName
	}

	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(cookieName)

		sessData := new(session.Data)
		if err := sessData.Read(sessionID); err != nil {
			return handler.ErrNotAuthenticated
		}

		user, err := users.User(sessData.UserID)
		if err != nil || !user.IsActive {
			log.Warn().Str("user", sessData.UserID).Msg("session of unknown or disabled user")

			if err = session.Delete(sessionID); err != nil {
				log.Error().Err(err).Msg("failed to delete session")
			}

			return handler.ErrNotAuthenticated
		}

		c.Locals(fiberlogger.UserLocal, user.ID)
		c.Locals(UserLocal, user)

		return c.Next()
	}
}

// CurrentUser returns the user loaded by Middleware.
func CurrentUser(c *fiber.Ctx) (domain.User, bool) {
	u, ok := c.Locals(UserLocal).(domain.User)
	return u, ok
}

// RequireGlobalPermission rejects users holding none of the given global
// permissions. Administrators always pass.
func RequireGlobalPermission(permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok {
			return handler.ErrNotAuthenticated
		}

		if auth.IsAdmin(u) {
			return c.Next()
		}

		for _, p := range permissions {
			if auth.HasGlobalPermission(u, p) {
				return c.Next()
			}
		}

		metrics.PermissionDenials.WithLabelValues("global").Inc()
		log.Warn().Str("user", u.ID).Strs("required", permissions).Str("path", c.Path()).Msg("permission denied")

		return handler.ErrForbidden
	}
}

// RequireAdmin rejects users without ACCESS_ADMIN_PANEL.
func RequireAdmin() fiber.Handler {
	return RequireGlobalPermission(auth.PermAccessAdminPanel)
}

// Permissions resolves asset scoped permissions.
type Permissions interface {
	HasPermission(userID, assetID, permissionID string) bool
}

// RequirePermission rejects users lacking permissionID at the asset assetOf
// resolves for the request. Errors of assetOf are returned as is.
// Administrators always pass.
func RequirePermission(perms Permissions, permissionID string, assetOf func(c *fiber.Ctx) (string, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok {
			return handler.ErrNotAuthenticated
		}

		if auth.IsAdmin(u) {
			return c.Next()
		}

		assetID, err := assetOf(c)
		if err != nil {
			return err
		}

		if perms.HasPermission(u.ID, assetID, permissionID) {
			return c.Next()
		}

		metrics.PermissionDenials.WithLabelValues("asset").Inc()
		log.Warn().Str("user", u.ID).Str("asset", assetID).Str("required", permissionID).Str("path", c.Path()).Msg("permission denied")

		return handler.ErrForbidden
	}
}
