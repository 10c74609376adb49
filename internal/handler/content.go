package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/service"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/upload"
)

// ContentHandler serves partners, team members and testimonials.
//
// Partner and team writes accept either a JSON body (image given as a URL)
// or a multipart form whose optional file part is named upload.FormField.
type ContentHandler struct {
	svc      *service.ContentService
	sessions SessionSource
	logger   *slog.Logger
}

func NewContentHandler(svc *service.ContentService, sessions SessionSource, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{svc: svc, sessions: sessions, logger: logger}
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// readImage returns the uploaded file, if any, and a func that releases it.
func readImage(r *http.Request) (*service.Image, func(), error) {
	if err := r.ParseMultipartForm(upload.MaxImageBytes + 1<<20); err != nil {
		return nil, func() {}, apperror.ValidationFailed("", "invalid multipart form: "+err.Error())
	}
	f, hdr, err := r.FormFile(upload.FormField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperror.ValidationFailed("image", "could not read the uploaded file")
	}
	return &service.Image{Filename: hdr.Filename, Body: f}, func() { f.Close() }, nil
}

func (h *ContentHandler) partnerInput(r *http.Request) (service.PartnerInput, *service.Image, func(), error) {
	var in service.PartnerInput
	if !isMultipart(r) {
		return in, nil, func() {}, decodeJSON(r, &in)
	}
	img, release, err := readImage(r)
	in.Name = r.FormValue("name")
	in.Category = r.FormValue("category")
	in.LogoURL = r.FormValue("logoUrl")
	return in, img, release, err
}

func (h *ContentHandler) teamInput(r *http.Request) (service.TeamMemberInput, *service.Image, func(), error) {
	var in service.TeamMemberInput
	if !isMultipart(r) {
		return in, nil, func() {}, decodeJSON(r, &in)
	}
	img, release, err := readImage(r)
	in.Name = r.FormValue("name")
	in.Role = r.FormValue("role")
	in.SocialLink = r.FormValue("socialLink")
	in.ImageURL = r.FormValue("imageUrl")
	return in, img, release, err
}

// --- Partners ---

// HTTP: GET /api/partners
func (h *ContentHandler) HandleListPartners(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListPartners(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HTTP: POST /api/partners
func (h *ContentHandler) HandleCreatePartner(w http.ResponseWriter, r *http.Request) {
	in, logo, release, err := h.partnerInput(r)
	defer release()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.svc.CreatePartner(r.Context(), h.sessions.Session(r.Context()), in, logo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HTTP: PUT /api/partners/{id}
func (h *ContentHandler) HandleUpdatePartner(w http.ResponseWriter, r *http.Request) {
	in, logo, release, err := h.partnerInput(r)
	defer release()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.svc.UpdatePartner(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id"), in, logo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HTTP: DELETE /api/partners/{id}
func (h *ContentHandler) HandleDeletePartner(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePartner(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Team ---

// HTTP: GET /api/team
func (h *ContentHandler) HandleListTeam(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListTeam(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HTTP: POST /api/team
func (h *ContentHandler) HandleCreateTeamMember(w http.ResponseWriter, r *http.Request) {
	in, photo, release, err := h.teamInput(r)
	defer release()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.svc.CreateTeamMember(r.Context(), h.sessions.Session(r.Context()), in, photo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HTTP: PUT /api/team/{id}
func (h *ContentHandler) HandleUpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	in, photo, release, err := h.teamInput(r)
	defer release()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.svc.UpdateTeamMember(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id"), in, photo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HTTP: DELETE /api/team/{id}
func (h *ContentHandler) HandleDeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTeamMember(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Testimonials ---
// Testimonial images are plain URLs, so these endpoints only take JSON.

// HTTP: GET /api/testimonials
func (h *ContentHandler) HandleListTestimonials(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListTestimonials(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HTTP: POST /api/testimonials
func (h *ContentHandler) HandleCreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var in service.TestimonialInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	t, err := h.svc.CreateTestimonial(r.Context(), h.sessions.Session(r.Context()), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// HTTP: PUT /api/testimonials/{id}
func (h *ContentHandler) HandleUpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	var in service.TestimonialInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	t, err := h.svc.UpdateTestimonial(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HTTP: DELETE /api/testimonials/{id}
func (h *ContentHandler) HandleDeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTestimonial(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

