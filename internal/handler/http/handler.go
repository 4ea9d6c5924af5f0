package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AtoyanMikhail/blogauth/internal/auth"
	"github.com/AtoyanMikhail/blogauth/internal/blacklist"
	"github.com/AtoyanMikhail/blogauth/internal/cache"
	"github.com/AtoyanMikhail/blogauth/internal/devices"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/metrics"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

// AuthService is implemented by *auth.Service.
type AuthService interface {
	Login(ctx context.Context, loginOrEmail, password string, client auth.Client) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, client auth.Client) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutOtherDevices(ctx context.Context, refreshToken string) (int64, error)
	Me(ctx context.Context, userID string) (*models.MeRes, error)
	CurrentUser(ctx context.Context, userID string) (*models.CurrentUser, error)

	Register(ctx context.Context, r auth.Registration) error
	ConfirmRegistration(ctx context.Context, code string) error
	ResendConfirmation(ctx context.Context, email string) error
	PasswordRecovery(ctx context.Context, email string) error
	NewPassword(ctx context.Context, recoveryCode, newPassword string) error
}

// Moderator is implemented by *moderation.Service.
type Moderator interface {
	BanUnbanUser(ctx context.Context, current models.CurrentUser, userID string, isBanned bool, reason string) error
	RemoveUser(ctx context.Context, current models.CurrentUser, userID string) error
	ChangeRole(ctx context.Context, current models.CurrentUser, userID string, role models.Role) (*models.User, error)
	BanUnbanBlog(ctx context.Context, current models.CurrentUser, blogID string, isBanned bool) error
	DeletePost(ctx context.Context, current models.CurrentUser, postID string) error
}

// TokenVerifier is implemented by *token.Signer.
type TokenVerifier interface {
	VerifyAccess(token string) (*models.AccessPayload, error)
	VerifyRefresh(token string) (*models.RefreshPayload, error)
}

// HealthCheck is one dependency checked by /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type Deps struct {
	Auth       AuthService
	Moderation Moderator
	Devices    devices.Registry
	Tokens     TokenVerifier
	Blacklist  blacklist.Blacklist
	Limiter    cache.RateLimiter
	Metrics    *metrics.Metrics
	Health     []HealthCheck
	Cookie     CookieConfig
	// TrustProxy enables X-Forwarded-For / X-Real-IP for the client IP.
	TrustProxy bool
}

type Handler struct {
	auth       AuthService
	moderation Moderator
	devices    devices.Registry
	tokens     TokenVerifier
	blacklist  blacklist.Blacklist
	limiter    cache.RateLimiter
	metrics    *metrics.Metrics
	health     []HealthCheck
	cookie     CookieConfig
	trustProxy bool
	validate   *validator.Validate
	l          logger.Logger
}

func NewHandler(d Deps, l logger.Logger) *Handler {
	return &Handler{
		auth:       d.Auth,
		moderation: d.Moderation,
		devices:    d.Devices,
		tokens:     d.Tokens,
		blacklist:  d.Blacklist,
		limiter:    d.Limiter,
		metrics:    d.Metrics,
		health:     d.Health,
		cookie:     d.Cookie,
		trustProxy: d.TrustProxy,
		validate:   newValidator(),
		l:          l,
	}
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func client(r *http.Request) auth.Client {
	ua := r.UserAgent()
	if ua == "" {
		ua = "unknown"
	}
	return auth.Client{IP: clientIP(r), UserAgent: ua}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.health))
	for _, hc := range h.health {
		if err := hc.Check(ctx); err != nil {
			h.l.Warn("Health check failed", logger.String("dependency", hc.Name), logger.Error(err))
			checks[hc.Name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[hc.Name] = "up"
	}

	writeJSON(w, status, checks)
}
