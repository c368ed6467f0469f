// Package actioncenter provides the endpoints of launched projects and
// standalone action items.
package actioncenter

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/web/handler"
	authmiddleware "github.com/atlas-ops/atlas/internal/web/middleware/auth"
	"github.com/atlas-ops/atlas/internal/workforce"
)

const (
	// ProjectsPath is the base path of launched projects.
	ProjectsPath = "/projects"
	// ActionItemsPath is the base path of action items.
	ActionItemsPath = "/action-items"
)

// ActionItemForm is the body of a new action item.
type ActionItemForm struct {
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
}

// Service provides the action center endpoints.
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

	router.Get(ProjectsPath, s.ListProjects)
	router.Get(ProjectsPath+"/:id", s.GetProject)
	router.Post(ProjectsPath, s.Launch)
	router.Post(ProjectsPath+"/:id/tasks/:taskId/toggle", s.ToggleTask)

	router.Get(ActionItemsPath, s.ListActionItems)
	router.Post(ActionItemsPath, s.CreateActionItem)
	router.Put(ActionItemsPath+"/:id", authmiddleware.RequireAdmin(), s.SaveActionItem)
	router.Post(ActionItemsPath+"/:id/toggle", s.ToggleActionItem)
}

// ListProjects lists every launched project.
func (s *Service) ListProjects(c *fiber.Ctx) error {
	return c.JSON(s.svc.ActiveProjects())
}

// GetProject answers one project.
func (s *Service) GetProject(c *fiber.Ctx) error {
	p, err := s.svc.ActiveProject(c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(p)
}

// Launch launches a template at an asset on behalf of the session user.
func (s *Service) Launch(c *fiber.Ctx) error {
	in, err := handler.ParseBody[workforce.LaunchInput](c)
	if err != nil {
		return err
	}

	p, err := s.svc.LaunchProject(c.UserContext(), handler.UserID(c), in)
	if err != nil {
		return err
	}

	return handler.Created(c, p)
}

// ToggleTask flips one project task.
func (s *Service) ToggleTask(c *fiber.Ctx) error {
	task, err := s.svc.ToggleTask(c.UserContext(), handler.UserID(c), c.Params("id"), c.Params("taskId"))
	if err != nil {
		return err
	}

	return c.JSON(task)
}

// ListActionItems lists every action item.
func (s *Service) ListActionItems(c *fiber.Ctx) error {
	return c.JSON(s.svc.ActionItems())
}

// CreateActionItem adds an item owned by the session user.
func (s *Service) CreateActionItem(c *fiber.Ctx) error {
	in, err := handler.ParseBody[ActionItemForm](c)
	if err != nil {
		return err
	}

	item, err := s.svc.CreateActionItem(c.UserContext(), handler.UserID(c), in.Description, in.DueDate)
	if err != nil {
		return err
	}

	return handler.Created(c, item)
}

// SaveActionItem replaces an action item.
func (s *Service) SaveActionItem(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.ActionItem](c)
	if err != nil {
		return err
	}

	in.ID = c.Params("id")

	item, err := s.svc.SaveActionItem(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

// ToggleActionItem flips an action item.
func (s *Service) ToggleActionItem(c *fiber.Ctx) error {
	item, err := s.svc.ToggleActionItem(c.UserContext(), handler.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(item)
}
