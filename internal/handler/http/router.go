package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AtoyanMikhail/blogauth/internal/logger"
)

// NewRouter wires the auth, session and moderation endpoints.
// Throttled routes share one counter per route and client IP. Forwarding headers only
// count as the client IP when the handler trusts its proxy.
func NewRouter(h *Handler, metricsHandler http.Handler, l logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if h.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(recovery(l))
	r.Use(requestLogging(l))
	r.Use(h.metrics.Middleware)

	r.Get("/health", h.Health)
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Route("/auth", func(r chi.Router) {
		r.With(h.throttle("login")).Post("/login", h.Login)
		r.With(h.throttle("registration")).Post("/registration", h.Registration)
		r.With(h.throttle("registration-email-resending")).Post("/registration-email-resending", h.RegistrationEmailResending)
		r.With(h.throttle("new-password")).Post("/new-password", h.NewPassword)
		r.Post("/registration-confirmation", h.RegistrationConfirmation)
		r.Get("/confirm-registration", h.ConfirmFromLink)
		r.Post("/password-recovery", h.PasswordRecovery)

		r.Group(func(r chi.Router) {
			r.Use(h.refreshGuard)
			r.Post("/refresh-token", h.RefreshToken)
			r.Post("/logout", h.Logout)
		})

		r.With(h.bearerGuard).Get("/me", h.Me)
	})

	r.Route("/security/devices", func(r chi.Router) {
		r.Use(h.refreshGuard)
		r.Get("/", h.ListDevices)
		r.Delete("/", h.TerminateOtherDevices)
		r.Delete("/{deviceId}", h.TerminateDevice)
	})

	r.Route("/sa", func(r chi.Router) {
		r.Use(h.bearerGuard)
		r.Put("/users/{id}/ban", h.BanUser)
		r.Delete("/users/{id}", h.DeleteUser)
		r.Post("/users/{id}/role", h.ChangeRole)
		r.Put("/blogs/{id}/ban", h.BanBlog)
	})

	r.With(h.bearerGuard).Delete("/posts/{id}", h.DeletePost)

	return r
}
