package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/web/handler"
	"github.com/atlas-ops/atlas/internal/web/session"
	"github.com/atlas-ops/atlas/internal/workforce"
)

type users map[string]domain.User

func (u users) User(id string) (domain.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}

	return domain.User{}, workforce.ErrUserNotFound
}

func newSession(t *testing.T, userID string) string {
	t.Helper()

	id, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, (&session.Data{UserID: userID, CreatedAt: time.Now()}).Write(id, time.Minute))

	return id
}

func TestMiddleware(t *testing.T) {
	session.Init(nil)

	dir := users{
		"admin":   {ID: "admin", IsActive: true, GlobalPermissions: []string{auth.PermAccessAdminPanel}},
		"manager": {ID: "manager", IsActive: true, GlobalPermissions: []string{auth.PermManageAllUsers}},
		"crew":    {ID: "crew", IsActive: true},
		"former":  {ID: "former", IsActive: false},
	}

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(Middleware(dir, ""))
	app.Get("/me", func(c *fiber.Ctx) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)

		return c.SendString(u.ID + ":" + handler.UserID(c))
	})
	app.Get("/users", RequireGlobalPermission(auth.PermManageAllUsers), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	testCases := []struct {
		name         string
		userID       string
		noSession    bool
		target       string
		expectedCode int
		expectedBody string
	}{
		{name: "no cookie", noSession: true, target: "/me", expectedCode: http.StatusUnauthorized},
		{name: "unknown user", userID: "ghost", target: "/me", expectedCode: http.StatusUnauthorized},
		{name: "inactive user", userID: "former", target: "/me", expectedCode: http.StatusUnauthorized},
		{name: "locals are set", userID: "crew", target: "/me", expectedCode: http.StatusOK, expectedBody: "crew:crew"},
		{name: "global permission held", userID: "manager", target: "/users", expectedCode: http.StatusOK},
		{name: "admin passes permission checks", userID: "admin", target: "/users", expectedCode: http.StatusOK},
		{name: "global permission missing", userID: "crew", target: "/users", expectedCode: http.StatusForbidden},
		{name: "admin only", userID: "manager", target: "/admin", expectedCode: http.StatusForbidden},
		{name: "admin", userID: "admin", target: "/admin", expectedCode: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if !tc.noSession {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: newSession(t, tc.userID)})
			}

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedCode, resp.StatusCode)

			if tc.expectedBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tc.expectedBody, string(body))
			}
		})
	}
}

func TestMiddleware_DeletesStaleSession(t *testing.T) {
	session.Init(nil)

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(Middleware(users{}, "custom"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	id := newSession(t, "removed-user")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "custom", Value: id})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.ErrorIs(t, new(session.Data).Read(id), session.ErrNoSession)
}

type grants map[string]bool

func (g grants) HasPermission(userID, assetID, permissionID string) bool {
	return g[userID+"/"+assetID+"/"+permissionID]
}

func TestRequirePermission(t *testing.T) {
	session.Init(nil)

	dir := users{
		"admin":   {ID: "admin", IsActive: true, GlobalPermissions: []string{auth.PermAccessAdminPanel}},
		"manager": {ID: "manager", IsActive: true, GlobalPermissions: []string{auth.PermManageAllUsers}},
		"crew":    {ID: "crew", IsActive: true},
	}
	perms := grants{"crew/store-1/" + domain.PermPlaybookComplete: true}

	assetOf := func(c *fiber.Ctx) (string, error) {
		if c.Params("asset") == "missing" {
			return "", workforce.ErrAssetNotFound
		}

		return c.Params("asset"), nil
	}

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(Middleware(dir, ""))
	app.Get("/:asset", RequirePermission(perms, domain.PermPlaybookComplete, assetOf), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	testCases := []struct {
		name         string
		userID       string
		target       string
		expectedCode int
	}{
		{name: "permission held at asset", userID: "crew", target: "/store-1", expectedCode: http.StatusOK},
		{name: "permission held elsewhere", userID: "crew", target: "/store-2", expectedCode: http.StatusForbidden},
		{name: "global permissions do not count", userID: "manager", target: "/store-1", expectedCode: http.StatusForbidden},
		{name: "admin passes", userID: "admin", target: "/store-2", expectedCode: http.StatusOK},
		{name: "asset lookup fails", userID: "crew", target: "/missing", expectedCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			req.AddCookie(&http.Cookie{Name: CookieName, Value: newSession(t, tc.userID)})

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tc.expectedCode, resp.StatusCode)
		})
	}
}
