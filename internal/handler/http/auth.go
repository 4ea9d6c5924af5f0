package http

import (
	"errors"
	"net/http"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/auth"
	"github.com/AtoyanMikhail/blogauth/internal/metrics"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, apperrors.ErrRevoked):
		return metrics.OutcomeRevoked
	default:
		return metrics.OutcomeFailure
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginReq
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.auth.Login(r.Context(), req.LoginOrEmail, req.Password, client(r))
	h.metrics.Login(outcome(err))
	if err != nil {
		writeError(w, r, err, h.l)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, models.AccessTokenRes{AccessToken: pair.AccessToken})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token, _ := refreshFromContext(r.Context())

	pair, err := h.auth.Refresh(r.Context(), token, client(r))
	h.metrics.Refresh(outcome(err))
	if err != nil {
		if errors.Is(err, apperrors.ErrRevoked) {
			h.clearRefreshCookie(w)
		}
		writeError(w, r, err, h.l)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, models.AccessTokenRes{AccessToken: pair.AccessToken})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := refreshFromContext(r.Context())

	err := h.auth.Logout(r.Context(), token)
	h.metrics.Logout(outcome(err))
	if err != nil {
		writeError(w, r, err, h.l)
		return
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Registration(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationReq
	if !h.decode(w, r, &req) {
		return
	}

	err := h.auth.Register(r.Context(), auth.Registration{
		Login:    req.Login,
		Email:    req.Email,
		Password: req.Password,
		Client:   client(r),
	})
	if err != nil {
		writeError(w, r, err, h.l)
		return
	}

	h.metrics.Registered()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RegistrationConfirmation(w http.ResponseWriter, r *http.Request) {
	var req models.CodeReq
	if !h.decode(w, r, &req) {
		return
	}
	h.confirm(w, r, req.Code)
}

// ConfirmFromLink serves the link sent in the confirmation mail.
func (h *Handler) ConfirmFromLink(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeFieldErrors(w, models.ErrorMessage{Message: "code is required", Field: "code"})
		return
	}
	h.confirm(w, r, code)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, code string) {
	if err := h.auth.ConfirmRegistration(r.Context(), code); err != nil {
		writeError(w, r, err, h.l)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RegistrationEmailResending(w http.ResponseWriter, r *http.Request) {
	var req models.EmailReq
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.auth.ResendConfirmation(r.Context(), req.Email); err != nil {
		writeError(w, r, err, h.l)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PasswordRecovery(w http.ResponseWriter, r *http.Request) {
	var req models.EmailReq
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.auth.PasswordRecovery(r.Context(), req.Email); err != nil {
		writeError(w, r, err, h.l)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req models.NewPasswordReq
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.auth.NewPassword(r.Context(), req.RecoveryCode, req.NewPassword); err != nil {
		writeError(w, r, err, h.l)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	current := currentUserFromContext(r.Context())

	me, err := h.auth.Me(r.Context(), current.ID)
	if err != nil {
		writeError(w, r, err, h.l)
		return
	}
	writeJSON(w, http.StatusOK, me)
}
