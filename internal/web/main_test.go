package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/seed"
	"github.com/atlas-ops/atlas/internal/web/navigation"
	"github.com/atlas-ops/atlas/internal/web/session"
	"github.com/atlas-ops/atlas/internal/workforce"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	root, err := filepath.Abs("../../")
	require.NoError(t, err)

	fixtures, err := seed.Load(filepath.Join(root, "etc", "seed.yaml"))
	require.NoError(t, err)

	svc := workforce.New(workforce.Options{})
	applied, err := seed.Apply(context.Background(), svc, fixtures)
	require.NoError(t, err)
	require.True(t, applied)

	session.Init(nil)

	cfg := &config.Config{
		Webserver: config.Webserver{
			Port:         8080,
			URL:          "http://localhost:8080",
			ShutDownTime: 1,
			Session:      config.Session{CookieName: "atlas_session"},
		},
		University: config.University{WarningWindowDays: 30},
	}

	return New(cfg, svc)
}

type client struct {
	t      *testing.T
	s      *Service
	cookie *http.Cookie
}

func (c *client) do(method, target string, body any) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	resp, err := c.s.App.Test(req, -1)
	require.NoError(c.t, err)

	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	return resp.StatusCode, out
}

func (c *client) login(login, password string) int {
	c.t.Helper()

	data, err := json.Marshal(map[string]string{"login": login, "password": password})
	require.NoError(c.t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.s.App.Test(req, -1)
	require.NoError(c.t, err)
	resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "atlas_session" {
			c.cookie = cookie
		}
	}

	return resp.StatusCode
}

func TestCheckAlive(t *testing.T) {
	s := newTestService(t)
	c := &client{t: t, s: s}

	code, body := c.do(http.MethodGet, CheckAlivePath, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", string(body))

	s.alive.Store(false)

	code, _ = c.do(http.MethodGet, CheckAlivePath, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestMetrics(t *testing.T) {
	c := &client{t: t, s: newTestService(t)}

	code, body := c.do(http.MethodGet, MetricsPath, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestLogin(t *testing.T) {
	s := newTestService(t)

	testCases := []struct {
		name         string
		login        string
		password     string
		expectedCode int
	}{
		{name: "username", login: "achen", password: "password123", expectedCode: http.StatusOK},
		{name: "email ignores case", login: "ALEX.CHEN@ATLAS.EXAMPLE", password: "password123", expectedCode: http.StatusOK},
		{name: "wrong password", login: "achen", password: "nope", expectedCode: http.StatusUnauthorized},
		{name: "unknown user", login: "ghost", password: "password123", expectedCode: http.StatusUnauthorized},
		{name: "inactive user", login: "sjones", password: "password123", expectedCode: http.StatusUnauthorized},
		{name: "empty form", expectedCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &client{t: t, s: s}
			assert.Equal(t, tc.expectedCode, c.login(tc.login, tc.password))

			if tc.expectedCode == http.StatusOK {
				assert.NotNil(t, c.cookie)
			}
		})
	}
}

func TestSession(t *testing.T) {
	c := &client{t: t, s: newTestService(t)}

	code, _ := c.do(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code, "no session")

	require.Equal(t, http.StatusOK, c.login("achen", "password123"))

	code, body := c.do(http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, code)

	var me domain.User
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "user-alex-chen", me.ID)
	assert.Empty(t, me.PasswordHash)
	assert.NotContains(t, string(body), "passwordHash")

	code, _ = c.do(http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = c.do(http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code, "session closed")
}

func TestAdminRoutes(t *testing.T) {
	s := newTestService(t)

	user := &client{t: t, s: s}
	require.Equal(t, http.StatusOK, user.login("achen", "password123"))

	admin := &client{t: t, s: s}
	require.Equal(t, http.StatusOK, admin.login("admin", "changeme"))

	testCases := []struct {
		name         string
		client       *client
		method       string
		target       string
		body         any
		expectedCode int
	}{
		{name: "users forbidden", client: user, method: http.MethodGet, target: "/api/users", expectedCode: http.StatusForbidden},
		{name: "users as admin", client: admin, method: http.MethodGet, target: "/api/users", expectedCode: http.StatusOK},
		{name: "templates forbidden", client: user, method: http.MethodGet, target: "/api/templates", expectedCode: http.StatusForbidden},
		{name: "templates as admin", client: admin, method: http.MethodGet, target: "/api/templates", expectedCode: http.StatusOK},
		{name: "asset types readable", client: user, method: http.MethodGet, target: "/api/asset-types", expectedCode: http.StatusOK},
		{
			name: "asset type write forbidden", client: user, method: http.MethodPost, target: "/api/asset-types",
			body: domain.AssetTypeConfig{Name: "Gym"}, expectedCode: http.StatusForbidden,
		},
		{
			name: "invalid asset type", client: admin, method: http.MethodPost, target: "/api/asset-types",
			body: domain.AssetTypeConfig{}, expectedCode: http.StatusBadRequest,
		},
		{name: "unknown template", client: admin, method: http.MethodGet, target: "/api/templates/nope", expectedCode: http.StatusNotFound},
		{name: "asset in use", client: admin, method: http.MethodDelete, target: "/api/asset-types/type-hotel", expectedCode: http.StatusConflict},
		{name: "delete self", client: admin, method: http.MethodDelete, target: "/api/users/user-admin", expectedCode: http.StatusConflict},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := tc.client.do(tc.method, tc.target, tc.body)
			assert.Equal(t, tc.expectedCode, code, string(body))
		})
	}
}

func TestAssetPermissions(t *testing.T) {
	c := &client{t: t, s: newTestService(t)}
	require.Equal(t, http.StatusOK, c.login("achen", "password123"))

	testCases := []struct {
		perm    string
		allowed bool
	}{
		{perm: "perm-reports-view-sales", allowed: true},
		{perm: "perm-reports-view-pnl", allowed: false},
		{perm: "perm-unknown", allowed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.perm, func(t *testing.T) {
			code, body := c.do(http.MethodGet, "/api/assets/asset-store-0142/permissions/"+tc.perm, nil)
			require.Equal(t, http.StatusOK, code)

			var check struct {
				Allowed bool `json:"allowed"`
			}
			require.NoError(t, json.Unmarshal(body, &check))
			assert.Equal(t, tc.allowed, check.Allowed)
		})
	}

	code, body := c.do(http.MethodGet, "/api/assets/asset-store-0142/permissions", nil)
	require.Equal(t, http.StatusOK, code)

	var perms map[string]bool
	require.NoError(t, json.Unmarshal(body, &perms))
	assert.True(t, perms["perm-playbook-submit"])
	assert.False(t, perms["perm-reports-view-pnl"])
}

func TestLaunchAndComplete(t *testing.T) {
	s := newTestService(t)

	manager := &client{t: t, s: s}
	require.Equal(t, http.StatusOK, manager.login("achen", "password123"))

	code, body := manager.do(http.MethodPost, "/api/projects", workforce.LaunchInput{
		TemplateID: "template-1",
		AssetID:    "asset-store-0142",
		Name:       "Onboarding: Maria",
		Answers: map[string]domain.TaskAssignment{
			"ph-new-hire": {UserIDs: []string{"user-maria-garcia"}},
		},
	})
	require.Equal(t, http.StatusCreated, code, string(body))

	var project domain.ActiveProject
	require.NoError(t, json.Unmarshal(body, &project))
	require.Len(t, project.Tasks, 3)
	assert.Equal(t, domain.ProjectOnTrack, project.Status)
	assert.Equal(t, []string{"user-maria-garcia"}, project.Tasks[1].Task.Assignment.UserIDs)

	code, body = manager.do(http.MethodPost, "/api/projects/"+project.ID+"/tasks/t1-1/toggle", nil)
	require.Equal(t, http.StatusOK, code, string(body))

	var task domain.ActiveTask
	require.NoError(t, json.Unmarshal(body, &task))
	assert.Equal(t, domain.StatusCompleted, task.Status)

	hire := &client{t: t, s: s}
	require.Equal(t, http.StatusOK, hire.login("mgarcia", "password123"))

	code, _ = hire.do(http.MethodPost, "/api/projects", workforce.LaunchInput{TemplateID: "template-1", AssetID: "asset-store-0142"})
	assert.Equal(t, http.StatusForbidden, code, "crew members cannot launch onboarding")

	code, body = hire.do(http.MethodPost, "/api/courses/LMS-101/complete", nil)
	require.Equal(t, http.StatusOK, code, string(body))

	var result workforce.CompletionResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, domain.EnrollmentCompleted, result.Enrollment.Status)
	require.Len(t, result.CompletedTasks, 1)
	assert.Equal(t, project.ID, result.CompletedTasks[0].ProjectID)
	assert.Equal(t, "t1-2", result.CompletedTasks[0].TaskID)

	code, _ = hire.do(http.MethodPost, "/api/courses/LMS-101/complete", map[string]string{"userId": "user-alex-chen"})
	assert.Equal(t, http.StatusForbidden, code, "users complete only their own courses")

	code, body = hire.do(http.MethodGet, "/api/me/workspace", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "Upload Signed Handbook")
}

func TestMe(t *testing.T) {
	c := &client{t: t, s: newTestService(t)}
	require.Equal(t, http.StatusOK, c.login("achen", "password123"))

	code, body := c.do(http.MethodGet, "/api/me/navigation?asset=asset-store-0142", nil)
	require.Equal(t, http.StatusOK, code)

	var menu navigation.Menu
	require.NoError(t, json.Unmarshal(body, &menu))

	specific, ok := menu.Section(navigation.SectionSpecific)
	require.True(t, ok)

	labels := make([]string, 0, len(specific.Items))
	for _, item := range specific.Items {
		labels = append(labels, item.Label)
	}

	assert.Equal(t, []string{"Shift Playbook", "Reports"}, labels)

	_, ok = menu.Section(navigation.SectionAdmin)
	assert.False(t, ok)

	code, _ = c.do(http.MethodGet, "/api/me/navigation?asset=nope", nil)
	assert.Equal(t, http.StatusNotFound, code)

	testCases := []struct {
		name         string
		input        workforce.ChangePasswordInput
		expectedCode int
	}{
		{
			name:         "confirmation mismatch",
			input:        workforce.ChangePasswordInput{Current: "password123", New: "new-password-1", Confirm: "new-password-2"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "wrong current password",
			input:        workforce.ChangePasswordInput{Current: "wrong", New: "new-password-1", Confirm: "new-password-1"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "changed",
			input:        workforce.ChangePasswordInput{Current: "password123", New: "new-password-1", Confirm: "new-password-1"},
			expectedCode: http.StatusNoContent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := c.do(http.MethodPut, "/api/me/password", tc.input)
			assert.Equal(t, tc.expectedCode, code, string(body))
		})
	}

	fresh := &client{t: t, s: c.s}
	assert.Equal(t, http.StatusOK, fresh.login("achen", "new-password-1"))
}

func TestShiftPlaybook(t *testing.T) {
	s := newTestService(t)

	crew := &client{t: t, s: s}
	require.Equal(t, http.StatusOK, crew.login("mgarcia", "password123"))

	manager := &client{t: t, s: s}
	require.Equal(t, http.StatusOK, manager.login("achen", "password123"))

	outsider := &client{t: t, s: s}
	require.Equal(t, http.StatusOK, outsider.login("jwilliams", "password123"))

	code, body := crew.do(http.MethodPut, "/api/playbooks/playbook-log-1/entries/e3", map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, code, string(body))

	var entry domain.PlaybookEntry
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.True(t, entry.IsCompleted)
	assert.Equal(t, "Maria Garcia", entry.CompletedBy)
	assert.NotNil(t, entry.CompletedAt)

	testCases := []struct {
		name         string
		c            *client
		method       string
		target       string
		body         any
		expectedCode int
	}{
		{
			name: "crew cannot submit", c: crew, method: http.MethodPost,
			target: "/api/playbooks/playbook-log-1/submit", expectedCode: http.StatusForbidden,
		},
		{
			name: "no position at the asset", c: outsider, method: http.MethodPut,
			target: "/api/playbooks/playbook-log-1/entries/e5", body: map[string]bool{"completed": true}, expectedCode: http.StatusForbidden,
		},
		{
			name: "unknown log", c: manager, method: http.MethodPut,
			target: "/api/playbooks/playbook-missing/entries/e5", body: map[string]bool{"completed": true}, expectedCode: http.StatusNotFound,
		},
		{
			name: "unknown entry", c: manager, method: http.MethodPut,
			target: "/api/playbooks/playbook-log-1/entries/e99", body: map[string]bool{"completed": true}, expectedCode: http.StatusNotFound,
		},
		{
			name: "crew cannot create logs", c: crew, method: http.MethodPost,
			target: "/api/playbooks", body: domain.PlaybookLog{AssetID: "asset-store-0142", ShiftDate: "2024-08-01"}, expectedCode: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := tc.c.do(tc.method, tc.target, tc.body)
			assert.Equal(t, tc.expectedCode, code, string(body))
		})
	}

	code, body = manager.do(http.MethodPost, "/api/playbooks/playbook-log-1/submit", nil)
	require.Equal(t, http.StatusOK, code, string(body))

	var closed domain.PlaybookLog
	require.NoError(t, json.Unmarshal(body, &closed))
	assert.Equal(t, domain.PlaybookCompleted, closed.Status)
	assert.Equal(t, "Alex Chen", closed.SubmittedBy)

	code, _ = crew.do(http.MethodPut, "/api/playbooks/playbook-log-1/entries/e5", map[string]bool{"completed": true})
	assert.Equal(t, http.StatusConflict, code, "submitted shifts are closed")

	code, body = crew.do(http.MethodPost, "/api/playbooks/shifts", map[string]string{"assetId": "asset-store-0142", "shiftDate": "2024-07-31"})
	require.Equal(t, http.StatusCreated, code, string(body))

	var next domain.PlaybookLog
	require.NoError(t, json.Unmarshal(body, &next))
	assert.Equal(t, domain.PlaybookInProgress, next.Status)
	assert.Len(t, next.Entries, 9)

	code, body = manager.do(http.MethodGet, "/api/playbooks?asset=asset-store-0142", nil)
	require.Equal(t, http.StatusOK, code)

	var logs []domain.PlaybookLog
	require.NoError(t, json.Unmarshal(body, &logs))
	assert.Len(t, logs, 2)
}
