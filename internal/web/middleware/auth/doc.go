// Package auth provides authentication middleware for the web application.
//
// Middleware validates the session cookie, loads the session user from the
// workforce service and stores it in fiber.Locals for the handlers. The
// Require* middlewares gate routes on global permission flags; asset scoped
// checks are made by the workforce service itself.
//
// Usage:
//
//	api.Use(authmiddleware.Middleware(svc, cfg.Webserver.Session.CookieName))
//	admin := api.Group("/admin", authmiddleware.RequireAdmin())
package auth
