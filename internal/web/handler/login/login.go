package login

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/atlas-ops/atlas/internal/config"
	"github.com/atlas-ops/atlas/internal/web/handler"
	"github.com/atlas-ops/atlas/internal/web/session"
	"github.com/atlas-ops/atlas/internal/workforce"
)

const (
	// Path is the path of the login endpoint below the API root.
	Path = "/login"
)

// Form is the login request. Login is a username or an email address.
type Form struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Service is the login handler service.
type Service struct {
	cfg *config.Config
	svc *workforce.Service
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(router fiber.Router, cfg *config.Config, svc *workforce.Service) {
	if router == nil || cfg == nil || svc == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.svc = svc

	router.Post(Path, s.Post)
}

// Post checks the credentials, opens a session and answers the user.
func (s *Service) Post(c *fiber.Ctx) error {
	form, err := handler.ParseBody[Form](c)
	if err != nil || form.Login == "" || form.Password == "" {
		return fmt.Errorf("%w: %w", handler.ErrBadRequest, ErrInvalidFormData)
	}

	user, err := s.svc.Authenticate(form.Login, form.Password)
	if err != nil {
		return err
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return ErrInternalServerError
	}

	userSession := &session.Data{
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return ErrInternalServerError
	}

	c.Cookie(&fiber.Cookie{
		Name:     s.cfg.Webserver.Session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   s.cfg.Webserver.CookieSecure && !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	log.Info().Str("user", user.ID).Msg("login")

	return c.JSON(user)
}
