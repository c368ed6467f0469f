// Package playbook provides the shift playbook endpoints: the daily
// checklists of an asset, their entries and shift submission.
package playbook

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/domain"
	"github.com/atlas-ops/atlas/internal/web/handler"
	authmiddleware "github.com/atlas-ops/atlas/internal/web/middleware/auth"
	"github.com/atlas-ops/atlas/internal/workforce"
)

// Path is the base path of playbook logs.
const Path = "/playbooks"

// ShiftForm is the body of a new shift.
type ShiftForm struct {
	AssetID   string `json:"assetId"`
	ShiftDate string `json:"shiftDate"`
}

// EntryForm is the body of an entry change.
type EntryForm struct {
	Completed bool `json:"completed"`
}

// Service provides the playbook endpoints.
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
	router.Post(Path, authmiddleware.RequireAdmin(), s.Create)
	router.Put(Path+"/:id", authmiddleware.RequireAdmin(), s.Update)
	router.Delete(Path+"/:id", authmiddleware.RequireAdmin(), s.Delete)
	router.Post(Path+"/shifts", s.StartShift)
	router.Put(
		Path+"/:id/entries/:entryId",
		authmiddleware.RequirePermission(svc, domain.PermPlaybookComplete, s.assetOf),
		s.SetEntry,
	)
	router.Post(
		Path+"/:id/submit",
		authmiddleware.RequirePermission(svc, domain.PermPlaybookSubmit, s.assetOf),
		s.Submit,
	)
}

// assetOf resolves the asset of the log named in the path.
func (s *Service) assetOf(c *fiber.Ctx) (string, error) {
	l, err := s.svc.PlaybookLog(c.Params("id"))
	if err != nil {
		return "", err
	}

	return l.AssetID, nil
}

// List lists the playbook logs, of one asset with ?asset=.
func (s *Service) List(c *fiber.Ctx) error {
	return c.JSON(s.svc.PlaybookLogs(c.Query("asset")))
}

// Get answers one playbook log.
func (s *Service) Get(c *fiber.Ctx) error {
	l, err := s.svc.PlaybookLog(c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(l)
}

// Create adds a playbook log under a fresh id.
func (s *Service) Create(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.PlaybookLog](c)
	if err != nil {
		return err
	}

	in.ID = ""

	l, err := s.svc.SavePlaybookLog(c.UserContext(), in)
	if err != nil {
		return err
	}

	return handler.Created(c, l)
}

// Update replaces a playbook log.
func (s *Service) Update(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.PlaybookLog](c)
	if err != nil {
		return err
	}

	in.ID = c.Params("id")

	if _, err = s.svc.PlaybookLog(in.ID); err != nil {
		return err
	}

	l, err := s.svc.SavePlaybookLog(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(l)
}

// Delete removes a playbook log.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.svc.DeletePlaybookLog(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return handler.NoContent(c)
}

// StartShift opens the next shift of an asset for the session user.
func (s *Service) StartShift(c *fiber.Ctx) error {
	in, err := handler.ParseBody[ShiftForm](c)
	if err != nil {
		return err
	}

	l, err := s.svc.StartShift(c.UserContext(), handler.UserID(c), in.AssetID, in.ShiftDate)
	if err != nil {
		return err
	}

	return handler.Created(c, l)
}

// SetEntry completes or clears one entry.
func (s *Service) SetEntry(c *fiber.Ctx) error {
	in, err := handler.ParseBody[EntryForm](c)
	if err != nil {
		return err
	}

	entry, err := s.svc.SetPlaybookEntry(c.UserContext(), handler.UserID(c), c.Params("id"), c.Params("entryId"), in.Completed)
	if err != nil {
		return err
	}

	return c.JSON(entry)
}

// Submit closes the shift.
func (s *Service) Submit(c *fiber.Ctx) error {
	l, err := s.svc.SubmitPlaybook(c.UserContext(), handler.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(l)
}
