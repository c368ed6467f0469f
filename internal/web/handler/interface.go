package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/workforce"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, cfg *config.Config, svc *workforce.Service)
}
