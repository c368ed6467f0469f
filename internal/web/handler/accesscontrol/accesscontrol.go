// Package accesscontrol provides the endpoints of the asset type blueprints:
// positions, pages and the permission matrix.
package accesscontrol

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/auth"
	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/web/handler"
	authmiddleware "github.com/atlas-ops/atlas/internal/web/middleware/auth"
	"github.com/atlas-ops/atlas/internal/workforce"
)

const (
	// Path is the base path of the asset type configs.
	Path = "/asset-types"

	// GlobalPermissionsPath lists the global permission flags.
	GlobalPermissionsPath = "/global-permissions"
)

// Service provides CRUD operations for asset type configs.
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

	router.Get(GlobalPermissionsPath, s.GlobalPermissions)
	router.Get(Path, s.List)
	router.Get(Path+"/:id", s.Get)
	router.Post(Path, authmiddleware.RequireAdmin(), s.Create)
	router.Put(Path+"/:id", authmiddleware.RequireAdmin(), s.Update)
	router.Delete(Path+"/:id", authmiddleware.RequireAdmin(), s.Delete)
}

// GlobalPermissions lists the known global flags.
func (s *Service) GlobalPermissions(c *fiber.Ctx) error {
	return c.JSON(auth.GlobalPermissions())
}

// List lists every blueprint.
func (s *Service) List(c *fiber.Ctx) error {
	return c.JSON(s.svc.AssetTypeConfigs())
}

// Get answers one blueprint.
func (s *Service) Get(c *fiber.Ctx) error {
	cfg, err := s.svc.AssetTypeConfig(c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(cfg)
}

// Create stores a new blueprint.
func (s *Service) Create(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.AssetTypeConfig](c)
	if err != nil {
		return err
	}

	out, err := s.svc.SaveAssetTypeConfig(c.UserContext(), in)
	if err != nil {
		return err
	}

	return handler.Created(c, out)
}

// Update replaces a blueprint.
func (s *Service) Update(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.AssetTypeConfig](c)
	if err != nil {
		return err
	}

	in.ID = c.Params("id")

	if _, err = s.svc.AssetTypeConfig(in.ID); err != nil {
		return err
	}

	out, err := s.svc.SaveAssetTypeConfig(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(out)
}

// Delete removes a blueprint no asset uses.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.svc.DeleteAssetTypeConfig(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return handler.NoContent(c)
}
