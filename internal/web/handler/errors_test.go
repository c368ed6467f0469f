package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/workforce"
)

func TestStatus(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "fiber error", err: fiber.ErrMethodNotAllowed, expected: fiber.StatusMethodNotAllowed},
		{name: "failed login", err: &auth.AuthenticationError{Err: auth.ErrInvalidCredentials}, expected: fiber.StatusUnauthorized},
		{name: "wrong old password", err: &auth.AuthenticationError{UserID: "u1", Err: auth.ErrInvalidOldPassword}, expected: fiber.StatusBadRequest},
		{name: "no session", err: ErrNotAuthenticated, expected: fiber.StatusUnauthorized},
		{name: "missing global permission", err: ErrForbidden, expected: fiber.StatusForbidden},
		{name: "unauthorized operation", err: fmt.Errorf("%w: toggle", workforce.ErrUnauthorized), expected: fiber.StatusForbidden},
		{name: "not found", err: fmt.Errorf("%w: %q", workforce.ErrTemplateNotFound, "t1"), expected: fiber.StatusNotFound},
		{name: "conflict", err: &workforce.AssetTypeInUseError{ConfigID: "type-1", Assets: 2}, expected: fiber.StatusConflict},
		{name: "held position", err: &workforce.PositionInUseError{AssetTypeID: "type-1", Positions: []string{"p1"}, Users: []string{"u1"}}, expected: fiber.StatusConflict},
		{name: "administrator required", err: fmt.Errorf("%w: global permissions", workforce.ErrAdminRequired), expected: fiber.StatusForbidden},
		{name: "validation", err: workforce.ErrTemplateNotApplicable, expected: fiber.StatusBadRequest},
		{name: "bad body", err: fmt.Errorf("%w: eof", ErrBadRequest), expected: fiber.StatusBadRequest},
		{name: "anything else", err: errors.New("disk full"), expected: fiber.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Status(tc.err))
		})
	}
}

type form struct {
	Name string `validate:"required"`
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/internal", func(_ *fiber.Ctx) error {
		return errors.New("connection refused by 10.0.0.7")
	})
	app.Get("/invalid", func(_ *fiber.Ctx) error {
		return fmt.Errorf("%w: %w", workforce.ErrValidation, validator.New().Struct(form{}))
	})

	testCases := []struct {
		target          string
		expectedCode    int
		expectedMessage string
		expectedFields  int
	}{
		{target: "/internal", expectedCode: fiber.StatusInternalServerError, expectedMessage: "internal server error"},
		{target: "/invalid", expectedCode: fiber.StatusBadRequest, expectedFields: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tc.target, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedCode, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			var out ErrorResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.False(t, out.Success)
			assert.Len(t, out.Fields, tc.expectedFields)

			if tc.expectedMessage != "" {
				assert.Equal(t, tc.expectedMessage, out.Message)
			}
		})
	}
}
