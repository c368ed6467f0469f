// Package asset provides the endpoints of the physical locations and the
// asset scoped permission checks.
package asset

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/web/handler"
	authmiddleware "github.com/atlas-ops/atlas/internal/web/middleware/auth"
	"github.com/atlas-ops/atlas/internal/workforce"
)

// Path is the base path for asset management.
const Path = "/assets"

// PermissionCheck answers a single permission query.
type PermissionCheck struct {
	AssetID      string `json:"assetId"`
	PermissionID string `json:"permissionId"`
	Allowed      bool   `json:"allowed"`
}

// Service provides CRUD operations for assets.
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

	router.Get(Path, s.List)
	router.Get(Path+"/:id", s.Get)
	router.Get(Path+"/:id/permissions", s.Permissions)
	router.Get(Path+"/:id/permissions/:perm", s.HasPermission)
	router.Get(Path+"/:id/templates", s.AvailableTemplates)
	router.Post(Path, authmiddleware.RequireAdmin(), s.Create)
	router.Put(Path+"/:id", authmiddleware.RequireAdmin(), s.Update)
	router.Delete(Path+"/:id", authmiddleware.RequireAdmin(), s.Delete)
}

// List lists every asset.
func (s *Service) List(c *fiber.Ctx) error {
	return c.JSON(s.svc.Assets())
}

// Get answers one asset.
func (s *Service) Get(c *fiber.Ctx) error {
	a, err := s.svc.Asset(c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(a)
}

// Permissions answers the effective permissions of the session user at the asset.
func (s *Service) Permissions(c *fiber.Ctx) error {
	perms, err := s.svc.EffectivePermissions(handler.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(perms)
}

// HasPermission answers whether the session user holds one permission at the asset.
func (s *Service) HasPermission(c *fiber.Ctx) error {
	check := PermissionCheck{AssetID: c.Params("id"), PermissionID: c.Params("perm")}
	check.Allowed = s.svc.HasPermission(handler.UserID(c), check.AssetID, check.PermissionID)

	return c.JSON(check)
}

// AvailableTemplates lists the templates the session user may launch at the asset.
func (s *Service) AvailableTemplates(c *fiber.Ctx) error {
	templates, err := s.svc.AvailableTemplates(handler.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(templates)
}

// Create stores a new asset under a fresh id.
func (s *Service) Create(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.Asset](c)
	if err != nil {
		return err
	}

	out, err := s.svc.CreateAsset(c.UserContext(), in)
	if err != nil {
		return err
	}

	return handler.Created(c, out)
}

// Update replaces an asset.
func (s *Service) Update(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.Asset](c)
	if err != nil {
		return err
	}

	in.ID = c.Params("id")

	out, err := s.svc.UpdateAsset(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(out)
}

// Delete removes an asset with every assignment and override referencing it.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.svc.DeleteAsset(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return handler.NoContent(c)
}
