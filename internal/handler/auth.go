package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/auth"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/service"
)

const stateCookie = "oauth_state"

// AuthHandler manages sign-in, sign-out and the caller's own profile.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGoogleLogin    → redirect the browser to Google's consent page
//   - HandleGoogleCallback → receive the code, exchange it for a user, set the session cookie
//   - HandleRegister       → create an email/password account and sign it in
//   - HandleLogin          → email/password sign-in
//   - HandleLogout         → clear the session cookie
//   - HandleMe / HandleUpdateMe → read and edit the caller's profile
//
// google is nil when OAuth credentials are not configured; the Google
// endpoints then answer 503.
type AuthHandler struct {
	google   *auth.GoogleProvider
	svc      *service.AuthService
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewAuthHandler(
	google *auth.GoogleProvider,
	svc *service.AuthService,
	profiles *service.ProfileService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		google:   google,
		svc:      svc,
		profiles: profiles,
		logger:   logger,
	}
}

// HandleGoogleLogin redirects the user to Google.
//
// HTTP: GET /auth/google/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes into a short-lived HttpOnly cookie and into the
// consent URL. The callback only proceeds when the two match.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, h.logger, apperror.Unavailable("google sign-in", nil))
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth flow.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for the Google account
//  3. Find, link or create the portal user
//  4. Set the session cookie
//  5. Redirect to the app, which reads /api/me to pick the dashboard
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, h.logger, apperror.Unavailable("google sign-in", nil))
		return
	}

	// --- Step 1: Validate CSRF state ---
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != c.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// single use
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	// --- Step 2: Exchange code ---
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}
	gu, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: Google exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	// --- Step 3: Resolve the portal user ---
	res, err := h.svc.SignInOAuth(r.Context(), gu)
	if err != nil {
		h.logger.Warn("auth callback: sign-in refused", slog.String("error", err.Error()))
		http.Redirect(w, r, "/?auth=failed", http.StatusSeeOther)
		return
	}

	// --- Steps 4 and 5 ---
	setSessionCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HTTP: POST /auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.svc.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, newMeResponse(access.ForProfile(res.User)))
}

// HTTP: POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.svc.SignInPassword(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, newMeResponse(access.ForProfile(res.User)))
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// Sessions are stateless JWTs, so the token stays valid until it expires;
// without the cookie the browser simply stops sending it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// meResponse is everything the front end needs to render the caller's chrome.
type meResponse struct {
	User      *model.UserProfile `json:"user"`
	State     access.State       `json:"state"`
	Dashboard access.Dashboard   `json:"dashboard"`
	Home      access.View        `json:"home"`
	Missing   []string           `json:"missing,omitempty"`
}

func newMeResponse(s *access.Session) meResponse {
	return meResponse{
		User:      s.Profile,
		State:     s.State,
		Dashboard: access.DashboardFor(s),
		Home:      access.HomeView(s),
		Missing:   access.MissingProfileFields(s.Profile),
	}
}

// HandleMe returns the caller's profile and session state.
//
// HTTP: GET /api/me
// Auth: Required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Session(r.Context())
	if _, err := h.profiles.Me(r.Context(), s); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newMeResponse(s))
}

// HandleUpdateMe saves the caller's profile form.
//
// HTTP: PUT /api/me
// Auth: Required
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var upd model.ProfileUpdate
	if err := decodeJSON(r, &upd); err != nil {
		writeError(w, h.logger, err)
		return
	}

	s := h.svc.Session(r.Context())
	if _, err := h.profiles.UpdateSelf(r.Context(), s, upd); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newMeResponse(s))
}

// setSessionCookie stores the JWT in an HttpOnly cookie.
// Secure should be set in production (HTTPS only); it is off for local dev.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
