// Package me provides the endpoints of the signed-in user: profile,
// navigation, workspace and password change.
package me

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/web/handler"
	authmiddleware "github.com/atlas-ops/atlas/internal/web/middleware/auth"
	"github.com/atlas-ops/atlas/internal/web/navigation"
	"github.com/atlas-ops/atlas/internal/workforce"
)

// Path is the base path of the endpoints.
const Path = "/me"

// Service is the handler of the signed-in user.
type Service struct {
	svc *workforce.Service
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(router fiber.Router, cfg *config.Config, svc *workforce.Service) {
	if router == nil || cfg == nil || svc == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.svc = svc

	router.Get(Path, s.Get)
	router.Get(Path+"/navigation", s.Navigation)
	router.Get(Path+"/workspace", s.Workspace)
	router.Get(Path+"/enrollments", s.Enrollments)
	router.Get(Path+"/certifications", s.Certifications)
	router.Put(Path+"/password", s.ChangePassword)
}

// Get answers the signed-in user.
func (s *Service) Get(c *fiber.Ctx) error {
	u, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return handler.ErrNotAuthenticated
	}

	return c.JSON(u.Redacted())
}

// Navigation answers the menu of the user at the asset given by the "asset"
// query parameter.
func (s *Service) Navigation(c *fiber.Ctx) error {
	u, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return handler.ErrNotAuthenticated
	}

	var (
		config     *domain.AssetTypeConfig
		positionID string
	)

	if assetID := c.Query("asset"); assetID != "" {
		for _, a := range u.Assignments {
			if a.AssetID == assetID {
				positionID = a.PositionID
				break
			}
		}

		asset, err := s.svc.Asset(assetID)
		if err != nil {
			return err
		}

		cfg, err := s.svc.AssetTypeConfig(asset.AssetTypeID)
		if err != nil {
			return err
		}

		config = &cfg
	}

	return c.JSON(navigation.Build(config, positionID, auth.IsAdmin(u)))
}

// Workspace answers the action center rows of the user.
func (s *Service) Workspace(c *fiber.Ctx) error {
	rows, err := s.svc.Workspace(handler.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(rows)
}

// Enrollments answers the course enrollments of the user.
func (s *Service) Enrollments(c *fiber.Ctx) error {
	return c.JSON(s.svc.Enrollments(handler.UserID(c)))
}

// Certifications answers the certifications of the user.
func (s *Service) Certifications(c *fiber.Ctx) error {
	return c.JSON(s.svc.Certifications(handler.UserID(c)))
}

// ChangePassword replaces the password of the user.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	in, err := handler.ParseBody[workforce.ChangePasswordInput](c)
	if err != nil {
		return err
	}

	if err = s.svc.ChangePassword(c.UserContext(), handler.UserID(c), in); err != nil {
		return err
	}

	return handler.NoContent(c)
}
