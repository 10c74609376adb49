package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/service"
)

// AdminHandler serves the admin and recruiter dashboards: user management,
// the job seeker directory and the contact inbox.
type AdminHandler struct {
	profiles *service.ProfileService
	messages *service.MessageService
	sessions SessionSource
	logger   *slog.Logger
}

func NewAdminHandler(profiles *service.ProfileService, messages *service.MessageService, sessions SessionSource, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{profiles: profiles, messages: messages, sessions: sessions, logger: logger}
}

// HTTP: GET /api/admin/users?limit=&offset=
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	users, err := h.profiles.ListUsers(r.Context(), h.sessions.Session(r.Context()), opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type roleRequest struct {
	Role string `json:"role"`
}

// HTTP: PUT /api/admin/users/{id}/role
func (h *AdminHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	u, err := h.profiles.ChangeRole(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type nameRequest struct {
	Name string `json:"name"`
}

// HTTP: PUT /api/admin/users/{id}/name
func (h *AdminHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	u, err := h.profiles.Rename(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleListJobSeekers is the recruiter directory.
//
// HTTP: GET /api/admin/jobseekers
func (h *AdminHandler) HandleListJobSeekers(w http.ResponseWriter, r *http.Request) {
	users, err := h.profiles.ListJobSeekers(r.Context(), h.sessions.Session(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HTTP: GET /api/admin/messages?limit=&offset=
func (h *AdminHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	msgs, err := h.messages.List(r.Context(), h.sessions.Session(r.Context()), opts)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HTTP: DELETE /api/admin/messages/{id}
func (h *AdminHandler) HandleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Delete(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
