// Package university provides the course catalog, enrollment and completion
// endpoints.
package university

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
	// CoursesPath is the base path of the catalog.
	CoursesPath = "/courses"
	// PathsPath is the base path of learning paths.
	PathsPath = "/learning-paths"
	// EnrollmentsPath is the base path of enrollment administration.
	EnrollmentsPath = "/enrollments"
	// CertificationsPath is the base path of certification administration.
	CertificationsPath = "/certifications"
)

// CompleteForm names the user who finished a course. Empty means the session
// user.
type CompleteForm struct {
	UserID string `json:"userId"`
}

// Service provides the university endpoints.
type Service struct {
	svc    *workforce.Service
	window time.Duration
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
	s.window = cfg.University.WarningWindow()

	router.Get(CoursesPath, s.ListCourses)
	router.Get(CoursesPath+"/:id", s.GetCourse)
	router.Post(CoursesPath+"/:id/enroll", s.Enroll)
	router.Post(CoursesPath+"/:id/complete", s.Complete)
	router.Post(CoursesPath, authmiddleware.RequireAdmin(), s.SaveCourse)
	router.Put(CoursesPath+"/:id", authmiddleware.RequireAdmin(), s.SaveCourse)
	router.Delete(CoursesPath+"/:id", authmiddleware.RequireAdmin(), s.DeleteCourse)

	router.Get(PathsPath, s.ListPaths)
	router.Post(PathsPath, authmiddleware.RequireAdmin(), s.SavePath)
	router.Put(PathsPath+"/:id", authmiddleware.RequireAdmin(), s.SavePath)
	router.Delete(PathsPath+"/:id", authmiddleware.RequireAdmin(), s.DeletePath)

	router.Put(EnrollmentsPath+"/:id", authmiddleware.RequireAdmin(), s.SaveEnrollment)
	router.Put(CertificationsPath+"/:id", authmiddleware.RequireAdmin(), s.SaveCertification)
	router.Post(CertificationsPath+"/check", authmiddleware.RequireAdmin(), s.CheckExpirations)
}

// ListCourses lists the catalog.
func (s *Service) ListCourses(c *fiber.Ctx) error {
	return c.JSON(s.svc.Courses())
}

// GetCourse answers one course.
func (s *Service) GetCourse(c *fiber.Ctx) error {
	course, err := s.svc.Course(c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(course)
}

// SaveCourse creates or replaces a course. The id in the path wins over the
// body on update.
func (s *Service) SaveCourse(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.UniversityCourse](c)
	if err != nil {
		return err
	}

	if id := c.Params("id"); id != "" {
		in.ID = id
	}

	out, err := s.svc.SaveCourse(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(out)
}

// DeleteCourse removes a course.
func (s *Service) DeleteCourse(c *fiber.Ctx) error {
	if err := s.svc.DeleteCourse(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return handler.NoContent(c)
}

// Enroll enrolls the session user in a course.
func (s *Service) Enroll(c *fiber.Ctx) error {
	e, err := s.svc.Enroll(c.UserContext(), handler.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}

	return handler.Created(c, e)
}

// Complete records a course completion and its propagation to project tasks.
func (s *Service) Complete(c *fiber.Ctx) error {
	var in CompleteForm
	if len(c.Body()) > 0 {
		var err error
		if in, err = handler.ParseBody[CompleteForm](c); err != nil {
			return err
		}
	}

	actorID := handler.UserID(c)
	if in.UserID == "" {
		in.UserID = actorID
	}

	result, err := s.svc.CompleteCourse(c.UserContext(), actorID, c.Params("id"), in.UserID)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// ListPaths lists the learning paths.
func (s *Service) ListPaths(c *fiber.Ctx) error {
	return c.JSON(s.svc.LearningPaths())
}

// SavePath creates or replaces a learning path.
func (s *Service) SavePath(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.LearningPath](c)
	if err != nil {
		return err
	}

	if id := c.Params("id"); id != "" {
		in.ID = id
	}

	out, err := s.svc.SaveLearningPath(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(out)
}

// DeletePath removes a learning path.
func (s *Service) DeletePath(c *fiber.Ctx) error {
	if err := s.svc.DeleteLearningPath(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return handler.NoContent(c)
}

// SaveEnrollment replaces an enrollment.
func (s *Service) SaveEnrollment(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.UserEnrollment](c)
	if err != nil {
		return err
	}

	in.ID = c.Params("id")

	out, err := s.svc.SaveEnrollment(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(out)
}

// SaveCertification replaces a certification.
func (s *Service) SaveCertification(c *fiber.Ctx) error {
	in, err := handler.ParseBody[domain.UserCertification](c)
	if err != nil {
		return err
	}

	in.ID = c.Params("id")

	out, err := s.svc.SaveCertification(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(out)
}

// CheckExpirations re-enrolls users whose certification expires within the
// window. The "days" query parameter overrides the configured window.
func (s *Service) CheckExpirations(c *fiber.Ctx) error {
	window := s.window
	if days := c.QueryInt("days", 0); days > 0 {
		window = time.Duration(days) * 24 * time.Hour
	}

	plan, err := s.svc.CheckCertificationExpirations(c.UserContext(), window)
	if err != nil {
		return err
	}

	return c.JSON(plan)
}
