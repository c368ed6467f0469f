package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	fiberlogger "github.com/atlas-ops/atlas/internal/logger/adapter/fiber"
)

// UserID returns the id of the authenticated user of the request.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(fiberlogger.UserLocal).(string)
	return id
}

// ParseBody decodes the JSON request body into a new T.
func ParseBody[T any](c *fiber.Ctx) (T, error) {
	var v T
	if err := c.BodyParser(&v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	return v, nil
}

// Created answers 201 with v as JSON.
func Created(c *fiber.Ctx, v any) error {
	return c.Status(fiber.StatusCreated).JSON(v)
}

// NoContent answers 204.
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
