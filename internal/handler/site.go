package handler

import (
	"log/slog"
	"net/http"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/service"
)

// SiteHandler serves the landing page and the small site-wide endpoints.
type SiteHandler struct {
	home          *service.HomeService
	notifications *service.NotificationService
	settings      *service.SettingsService
	messages      *service.MessageService
	visitors      *service.VisitorService
	sessions      SessionSource
	logger        *slog.Logger
}

func NewSiteHandler(
	home *service.HomeService,
	notifications *service.NotificationService,
	settings *service.SettingsService,
	messages *service.MessageService,
	visitors *service.VisitorService,
	sessions SessionSource,
	logger *slog.Logger,
) *SiteHandler {
	return &SiteHandler{
		home:          home,
		notifications: notifications,
		settings:      settings,
		messages:      messages,
		visitors:      visitors,
		sessions:      sessions,
		logger:        logger,
	}
}

// HTTP: GET /api/home
func (h *SiteHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	page, err := h.home.Load(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HTTP: GET /api/notifications
func (h *SiteHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.Recent(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HTTP: GET /api/settings
func (h *SiteHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HTTP: PUT /api/settings
func (h *SiteHandler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var in model.SiteSettings
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	saved, err := h.settings.Save(r.Context(), h.sessions.Session(r.Context()), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// HTTP: POST /api/contact
func (h *SiteHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.messages.Submit(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HTTP: POST /api/visits
func (h *SiteHandler) HandleVisit(w http.ResponseWriter, r *http.Request) {
	n, err := h.visitors.Visit(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"visitors": n})
}

// viewResponse tells the client which view to render.
type viewResponse struct {
	Requested  access.View      `json:"requested"`
	Navigate   access.View      `json:"navigate"`
	Redirected bool             `json:"redirected"`
	Dashboard  access.Dashboard `json:"dashboard"`
}

// HandleView resolves a requested view against the caller's role. A view the
// caller may not open is answered with their home view instead.
//
// HTTP: GET /api/view?view=admin
func (h *SiteHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	requested := access.ViewHome
	if raw := r.URL.Query().Get("view"); raw != "" {
		v, err := access.ParseView(raw)
		if err != nil {
			writeError(w, h.logger, apperror.ValidationFailed("view", err.Error()))
			return
		}
		requested = v
	}

	s := h.sessions.Session(r.Context())
	resolved := access.Resolve(s, requested)
	writeJSON(w, http.StatusOK, viewResponse{
		Requested:  requested,
		Navigate:   resolved,
		Redirected: resolved != requested,
		Dashboard:  access.DashboardFor(s),
	})
}
