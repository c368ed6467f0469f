package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/workforce"
)

var (
	// ErrBadRequest is returned when a request body or parameter cannot be parsed.
	ErrBadRequest = errors.New("bad request")

	// ErrNotAuthenticated is returned for requests without a valid session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when the session user lacks a global permission.
	ErrForbidden = errors.New("forbidden")
)

type (
	// FieldError describes one failed validation rule.
	FieldError struct {
		FailedField string `json:"failedField"`
		Tag         string `json:"tag"`
		Value       any    `json:"value,omitempty"`
	}

	// ErrorResponse is the JSON body of every failed request.
	ErrorResponse struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Fields  []FieldError `json:"fields,omitempty"`
	}
)

// Status maps an error to its HTTP status code.
func Status(err error) int {
	var (
		fe      *fiber.Error
		authErr *auth.AuthenticationError
	)

	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &authErr):
		if errors.Is(authErr, auth.ErrInvalidOldPassword) {
			return fiber.StatusBadRequest
		}

		return fiber.StatusUnauthorized
	case errors.Is(err, ErrNotAuthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, workforce.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, workforce.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, workforce.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, workforce.ErrValidation), errors.Is(err, ErrBadRequest):
		return fiber.StatusBadRequest
	}

	return fiber.StatusInternalServerError
}

// FieldErrors extracts the failed validation rules wrapped in err.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			FailedField: e.Namespace(),
			Tag:         e.Tag(),
			Value:       e.Value(),
		})
	}

	return out
}

// ErrorHandler is the fiber error handler of the API. Internal errors are
// logged and answered with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := Status(err)

	resp := ErrorResponse{Message: err.Error(), Fields: FieldErrors(err)}

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		resp.Message = "internal server error"
	}

	return c.Status(status).JSON(resp)
}
