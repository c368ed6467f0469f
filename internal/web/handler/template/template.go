// Package template provides the administration endpoints of project
// templates and recurring rules.
package template

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/web/handler"
	authmiddleware "github.com/atlas-ops/atlas/internal/web/middleware/auth"
	"github.com/atlas-ops/atlas/internal/workforce"
)

const (
	// Path is the base path of project templates.
	Path = "/templates"
	// RecurringTasksPath is the base path of recurring task rules.
	RecurringTasksPath = "/recurring-tasks"
	// RecurringProjectsPath is the base path of recurring project rules.
	RecurringProjectsPath = "/recurring-projects"
)

// OrderForm lists every task id of a template in the new order.
type OrderForm struct {
	TaskIDs []string `json:"taskIds"`
}

// Service provides CRUD operations for templates.
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

	templates := router.Group(Path, authmiddleware.RequireAdmin())
	templates.Get("/", s.List)
	templates.Get("/:id", s.Get)
	templates.Post("/", s.Create)
	templates.Put("/:id", s.Update)
	templates.Delete("/:id", s.Delete)
	templates.Post("/:id/duplicate", s.Duplicate)
	templates.Put("/:id/order", s.Reorder)

	tasks := router.Group(RecurringTasksPath, authmiddleware.RequireAdmin())
	tasks.Get("/", s.ListRecurringTasks)
	tasks.Post("/", s.SaveRecurringTask)
	tasks.Put("/:id", s.SaveRecurringTask)
	tasks.Delete("/:id", s.DeleteRecurringTask)

	projects := router.Group(RecurringProjectsPath, authmiddleware.RequireAdmin())
	projects.Get("/", s.ListRecurringProjects)
	projects.Post("/", s.SaveRecurringProject)
	projects.Put("/:id", s.SaveRecurringProject)
	projects.Delete("/:id", s.DeleteRecurringProject)
}

// List lists every project template.
func (s *Service) List(c *fiber.Ctx) error {
	return c.JSON(s.svc.ProjectTemplates())
}

// Get answers one template.
func (s *Service) Get(c *fiber.Ctx) error {
	t, err := s.svc.ProjectTemplate(c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(t)
}

// Create stores a new template under a fresh id.
func (s *Service) Create(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.ProjectTemplate](c)
	if err != nil {
		return err
	}

	in.ID = ""

	out, err := s.svc.SaveProjectTemplate(c.UserContext(), in)
	if err != nil {
		return err
	}

	return handler.Created(c, out)
}

// Update replaces a template.
func (s *Service) Update(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.ProjectTemplate](c)
	if err != nil {
		return err
	}

	in.ID = c.Params("id")

	if _, err = s.svc.ProjectTemplate(in.ID); err != nil {
		return err
	}

	out, err := s.svc.SaveProjectTemplate(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(out)
}

// Delete removes a template.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.svc.DeleteProjectTemplate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return handler.NoContent(c)
}

// Duplicate copies a template.
func (s *Service) Duplicate(c *fiber.Ctx) error {
	out, err := s.svc.DuplicateProjectTemplate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return handler.Created(c, out)
}

// Reorder changes the task order of a template.
func (s *Service) Reorder(c *fiber.Ctx) error {
	in, err := handler.ParseBody[OrderForm](c)
	if err != nil {
		return err
	}

	out, err := s.svc.ReorderTemplateTasks(c.UserContext(), c.Params("id"), in.TaskIDs)
	if err != nil {
		return err
	}

	return c.JSON(out)
}

// ListRecurringTasks lists the recurring task rules.
func (s *Service) ListRecurringTasks(c *fiber.Ctx) error {
	return c.JSON(s.svc.RecurringTaskTemplates())
}

// SaveRecurringTask creates or replaces a recurring task rule.
func (s *Service) SaveRecurringTask(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.RecurringTaskTemplate](c)
	if err != nil {
		return err
	}

	in.ID = c.Params("id")

	out, err := s.svc.SaveRecurringTaskTemplate(c.UserContext(), in)
	if err != nil {
		return err
	}

	if in.ID == "" {
		return handler.Created(c, out)
	}

	return c.JSON(out)
}

// DeleteRecurringTask removes a recurring task rule.
func (s *Service) DeleteRecurringTask(c *fiber.Ctx) error {
	if err := s.svc.DeleteRecurringTaskTemplate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return handler.NoContent(c)
}

// ListRecurringProjects lists the recurring project rules.
func (s *Service) ListRecurringProjects(c *fiber.Ctx) error {
	return c.JSON(s.svc.RecurringProjectTemplates())
}

// SaveRecurringProject creates or replaces a recurring project rule.
func (s *Service) SaveRecurringProject(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.RecurringProjectTemplate](c)
	if err != nil {
		return err
	}

	in.ID = c.Params("id")

	out, err := s.svc.SaveRecurringProjectTemplate(c.UserContext(), in)
	if err != nil {
		return err
	}

	if in.ID == "" {
		return handler.Created(c, out)
	}

	return c.JSON(out)
}

// DeleteRecurringProject removes a recurring project rule.
func (s *Service) DeleteRecurringProject(c *fiber.Ctx) error {
	if err := s.svc.DeleteRecurringProjectTemplate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return handler.NoContent(c)
}
