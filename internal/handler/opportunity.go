package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/ranking"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/service"
)

// SessionSource settles the caller's session from the request context.
// service.AuthService is the production implementation.
type SessionSource interface {
	Session(ctx context.Context) *access.Session
}

// OpportunityHandler serves the listings board and the apply gate.
type OpportunityHandler struct {
	svc      *service.OpportunityService
	sessions SessionSource
	logger   *slog.Logger
}

func NewOpportunityHandler(svc *service.OpportunityService, sessions SessionSource, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{svc: svc, sessions: sessions, logger: logger}
}

func criteriaFrom(r *http.Request) (ranking.Criteria, error) {
	q := r.URL.Query()
	c, err := ranking.ParseCriteria(q.Get("q"), q.Get("category"), q.Get("workMode"), q.Get("minStipend"))
	if err != nil {
		return c, apperror.ValidationFailed("", err.Error())
	}
	return c, nil
}

// HandleList returns the filtered, ranked board.
//
// HTTP: GET /api/opportunities?q=&category=&workMode=&minStipend=
func (h *OpportunityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	records, err := h.svc.List(r.Context(), c)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Present(records))
}

// HandlePreview returns the home page teaser, filtered like the full board.
//
// HTTP: GET /api/opportunities/preview?q=&category=&workMode=&minStipend=
func (h *OpportunityHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFrom(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	records, err := h.svc.Preview(r.Context(), c)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Present(records))
}

// HTTP: GET /api/opportunities/{id}
func (h *OpportunityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, service.Listing{Opportunity: *o, Closed: h.svc.IsClosed(o)})
}

// HTTP: POST /api/opportunities
func (h *OpportunityHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.OpportunityInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	o, err := h.svc.Create(r.Context(), h.sessions.Session(r.Context()), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// HTTP: PUT /api/opportunities/{id}
func (h *OpportunityHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.OpportunityInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	o, err := h.svc.Update(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// HTTP: DELETE /api/opportunities/{id}
func (h *OpportunityHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// applyResponse is the body of an apply attempt. It is filled in by
// access.Router, so exactly one remedial hint is present on a denial.
type applyResponse struct {
	access.Decision
	Action string `json:"action,omitempty"`
}

func (a *applyResponse) Navigate(_ context.Context, v access.View) { a.View = v }

func (a *applyResponse) RequestSignIn(context.Context) { a.Action = "sign_in" }

func (a *applyResponse) OpenLink(_ context.Context, url string) { a.Link = url }

// HandleApply gates the apply button.
//
// HTTP: POST /api/opportunities/{id}/apply
//
//	200 {"outcome":"allow","link":"https://..."}
//	401 {"outcome":"deny_sign_in","action":"sign_in"}
//	403 {"outcome":"deny_incomplete","navigate":"profile","missing":["phone"]}
//	409 {"outcome":"deny_closed"}
//
// A placeholder link ("#") is allowed but comes back without a link.
func (h *OpportunityHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	d, _, err := h.svc.Apply(r.Context(), h.sessions.Session(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := &applyResponse{Decision: access.Decision{Outcome: d.Outcome, Missing: d.Missing}}
	access.Router{Navigator: resp, SignIn: resp, Opener: resp}.Execute(r.Context(), d)

	status := http.StatusOK
	switch d.Outcome {
	case access.OutcomeDenySignIn:
		status = http.StatusUnauthorized
	case access.OutcomeDenyIncomplete:
		status = http.StatusForbidden
	case access.OutcomeDenyClosed:
		status = http.StatusConflict
	}
	writeJSON(w, status, resp)
}
