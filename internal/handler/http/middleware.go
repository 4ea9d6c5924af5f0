package http

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

type contextKey string

const (
	refreshTokenKey   contextKey = "refresh_token"
	refreshPayloadKey contextKey = "refresh_payload"
	currentUserKey    contextKey = "current_user"
)

// RefreshCookie is the cookie carrying the refresh token.
const RefreshCookie = "refreshToken"

type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

func requestLogging(l logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			l.Info("HTTP request",
				logger.String("request_id", middleware.GetReqID(r.Context())),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", rw.status),
				logger.Int("bytes", rw.bytes),
				logger.Duration("duration", time.Since(start)),
				logger.String("ip", clientIP(r)))
		})
	}
}

func recovery(l logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					l.Error("Panic recovered",
						logger.Any("panic", rec),
						logger.String("method", r.Method),
						logger.String("path", r.URL.Path))
					writeJSON(w, http.StatusInternalServerError, errorResponse{
						Code:    "INTERNAL_ERROR",
						Message: "an internal error occurred",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// throttle limits requests per client IP on one route. A limiter failure lets the request through.
func (h *Handler) throttle(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if h.limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed, retryAfter, err := h.limiter.Allow(r.Context(), route, clientIP(r))
			if err != nil {
				h.l.Warn("Rate limiter unavailable", logger.String("route", route), logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				h.metrics.Throttled(route)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				writeError(w, r, apperrors.TooManyRequests(), h.l)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// refreshGuard accepts only a validly signed, unexpired, non-blacklisted refresh cookie whose
// device session is still active.
func (h *Handler) refreshGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(RefreshCookie)
		if err != nil || cookie.Value == "" {
			writeError(w, r, apperrors.Unauthorized("refresh token is missing"), h.l)
			return
		}

		payload, err := h.tokens.VerifyRefresh(cookie.Value)
		if err != nil {
			writeError(w, r, apperrors.Unauthorized(err.Error()), h.l)
			return
		}

		revoked, err := h.blacklist.IsBlacklisted(r.Context(), cookie.Value)
		if err != nil {
			writeError(w, r, err, h.l)
			return
		}
		if revoked {
			writeError(w, r, apperrors.Revoked(), h.l)
			return
		}

		active, err := h.devices.IsActive(r.Context(), payload)
		if err != nil {
			writeError(w, r, err, h.l)
			return
		}
		if !active {
			writeError(w, r, apperrors.Unauthorized("session has been terminated"), h.l)
			return
		}

		ctx := context.WithValue(r.Context(), refreshTokenKey, cookie.Value)
		ctx = context.WithValue(ctx, refreshPayloadKey, payload)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerGuard resolves the access token owner. Banned or deleted users are rejected.
func (h *Handler) bearerGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			writeError(w, r, apperrors.Unauthorized("missing or malformed authorization header"), h.l)
			return
		}

		payload, err := h.tokens.VerifyAccess(parts[1])
		if err != nil {
			writeError(w, r, apperrors.Unauthorized(err.Error()), h.l)
			return
		}

		current, err := h.auth.CurrentUser(r.Context(), payload.UserID)
		if err != nil {
			writeError(w, r, err, h.l)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, current)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func refreshFromContext(ctx context.Context) (string, *models.RefreshPayload) {
	token, _ := ctx.Value(refreshTokenKey).(string)
	payload, _ := ctx.Value(refreshPayloadKey).(*models.RefreshPayload)
	return token, payload
}

func currentUserFromContext(ctx context.Context) *models.CurrentUser {
	current, _ := ctx.Value(currentUserKey).(*models.CurrentUser)
	return current
}

// clientIP reads RemoteAddr, which RealIP may have replaced by a bare address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
