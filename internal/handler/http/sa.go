package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AtoyanMikhail/blogauth/internal/models"
)

func (h *Handler) BanUser(w http.ResponseWriter, r *http.Request) {
	var req models.BanUserReq
	if !h.decode(w, r, &req) {
		return
	}
	current := currentUserFromContext(r.Context())

	err := h.moderation.BanUnbanUser(r.Context(), *current, chi.URLParam(r, "id"), *req.IsBanned, req.BanReason)
	if err != nil {
		writeError(w, r, err, h.l)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	current := currentUserFromContext(r.Context())

	if err := h.moderation.RemoveUser(r.Context(), *current, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, h.l)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req models.ChangeRoleReq
	if !h.decode(w, r, &req) {
		return
	}
	current := currentUserFromContext(r.Context())

	user, err := h.moderation.ChangeRole(r.Context(), *current, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeError(w, r, err, h.l)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) BanBlog(w http.ResponseWriter, r *http.Request) {
	var req models.BanBlogReq
	if !h.decode(w, r, &req) {
		return
	}
	current := currentUserFromContext(r.Context())

	if err := h.moderation.BanUnbanBlog(r.Context(), *current, chi.URLParam(r, "id"), *req.IsBanned); err != nil {
		writeError(w, r, err, h.l)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	current := currentUserFromContext(r.Context())

	if err := h.moderation.DeletePost(r.Context(), *current, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, h.l)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
