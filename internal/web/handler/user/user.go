// Package user provides the user management endpoints. They are open to
// administrators and to holders of MANAGE_ALL_USERS; only administrators
// change global permissions or touch other administrators.
package user

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

// Path is the base path for user management.
const Path = "/users"

// Form is the body of a user create or update. An empty password keeps the
// current one on update.
type Form struct {
	FirstName         string                          `json:"firstName"`
	LastName          string                          `json:"lastName"`
	Username          string                          `json:"username"`
	Email             string                          `json:"email"`
	IsActive          bool                            `json:"isActive"`
	Assignments       []domain.Assignment             `json:"assignments"`
	GlobalPermissions []string                        `json:"globalPermissions"`
	Overrides         []domain.UserPermissionOverride `json:"overrides"`
	Password          string                          `json:"password"`
}

// User returns the user described by the form.
func (f Form) User(id string) domain.User {
	return domain.User{
		ID:                id,
		FirstName:         f.FirstName,
		LastName:          f.LastName,
		Username:          f.Username,
		Email:             f.Email,
		IsActive:          f.IsActive,
		Assignments:       f.Assignments,
		GlobalPermissions: f.GlobalPermissions,
		Overrides:         f.Overrides,
	}
}

// OverrideForm grants (true), denies (false) or resets (null) one permission.
type OverrideForm struct {
	AssetID      string `json:"assetId"`
	PermissionID string `json:"permissionId"`
	Value        *bool  `json:"value"`
}

// Service provides CRUD operations for users.
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

	group := router.Group(Path, authmiddleware.RequireGlobalPermission(auth.PermManageAllUsers))
	group.Get("/", s.List)
	group.Get("/:id", s.Get)
	group.Post("/", s.Create)
	group.Put("/:id", s.Update)
	group.Delete("/:id", s.Delete)
	group.Put("/:id/overrides", s.SetOverride)
}

// List lists every user.
func (s *Service) List(c *fiber.Ctx) error {
	return c.JSON(s.svc.Users())
}

// Get answers one user.
func (s *Service) Get(c *fiber.Ctx) error {
	u, err := s.svc.User(c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(u)
}

// Create stores a new user. A password is required.
func (s *Service) Create(c *fiber.Ctx) error {
	in, err := handler.ParseBody[Form](c)
	if err != nil {
		return err
	}

	out, err := s.svc.SaveUser(c.UserContext(), handler.UserID(c), in.User(""), in.Password)
	if err != nil {
		return err
	}

	return handler.Created(c, out)
}

// Update replaces a user.
func (s *Service) Update(c *fiber.Ctx) error {
	in, err := handler.ParseBody[Form](c)
	if err != nil {
		return err
	}

	id := c.Params("id")

	if _, err = s.svc.User(id); err != nil {
		return err
	}

	out, err := s.svc.SaveUser(c.UserContext(), handler.UserID(c), in.User(id), in.Password)
	if err != nil {
		return err
	}

	return c.JSON(out)
}

// Delete removes a user. Users cannot delete themselves.
func (s *Service) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == handler.UserID(c) {
		return fiber.NewError(fiber.StatusConflict, "cannot delete the signed-in user")
	}

	if err := s.svc.DeleteUser(c.UserContext(), handler.UserID(c), id); err != nil {
		return err
	}

	return handler.NoContent(c)
}

// SetOverride changes one permission override of a user.
func (s *Service) SetOverride(c *fiber.Ctx) error {
	in, err := handler.ParseBody[OverrideForm](c)
	if err != nil {
		return err
	}

	out, err := s.svc.SetOverride(c.UserContext(), handler.UserID(c), c.Params("id"), in.AssetID, in.PermissionID, in.Value)
	if err != nil {
		return err
	}

	return c.JSON(out)
}
