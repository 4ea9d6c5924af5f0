package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	_, payload := refreshFromContext(r.Context())

	list, err := h.devices.ListByUser(r.Context(), payload.UserID)
	if err != nil {
		writeError(w, r, err, h.l)
		return
	}
	if list == nil {
		list = []*models.Device{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) TerminateOtherDevices(w http.ResponseWriter, r *http.Request) {
	token, payload := refreshFromContext(r.Context())

	removed, err := h.auth.LogoutOtherDevices(r.Context(), token)
	if err != nil {
		writeError(w, r, err, h.l)
		return
	}

	h.l.Info("Other sessions terminated",
		logger.String("user_id", payload.UserID),
		logger.Int64("removed", removed))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) TerminateDevice(w http.ResponseWriter, r *http.Request) {
	_, payload := refreshFromContext(r.Context())

	current, err := h.auth.CurrentUser(r.Context(), payload.UserID)
	if err != nil {
		writeError(w, r, err, h.l)
		return
	}

	if err := h.devices.RemoveByDeviceID(r.Context(), *current, chi.URLParam(r, "deviceId")); err != nil {
		writeError(w, r, err, h.l)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
