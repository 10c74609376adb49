package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/auth"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/events"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/handler"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/ranking"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository/sqlite"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/service"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/upload"
)

var today = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

// testEnv is the whole HTTP stack over an in-memory database. There is no
// image host, so image uploads answer 503.
type testEnv struct {
	db     *sqlite.DB
	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("handler-test-secret-0123")
	require.NoError(t, err)

	engine := ranking.NewEngine(logger, ranking.WithClock(func() time.Time { return today }))
	authSvc := service.NewAuthService(db.Users(), tokens, auth.NewPasswordServiceForTest(), nil, logger)
	profiles := service.NewProfileService(db.Users(), logger)
	opps := service.NewOpportunityService(db.Opportunities(), db.Notifications(), events.NopPublisher{}, engine, logger)
	content := service.NewContentService(db.Partners(), db.Team(), db.Testimonials(), nil, logger)
	messages := service.NewMessageService(db.Messages(), events.NopPublisher{}, logger)
	settings := service.NewSettingsService(db.Settings(), logger)
	notifications := service.NewNotificationService(db.Notifications(), logger)
	visitors := service.NewVisitorService(db.Counters(), logger)
	home := service.NewHomeService(opps, content, notifications, settings, visitors)

	oh := handler.NewOpportunityHandler(opps, authSvc, logger)
	ah := handler.NewAuthHandler(nil, authSvc, profiles, logger)
	ch := handler.NewContentHandler(content, authSvc, logger)
	adm := handler.NewAdminHandler(profiles, messages, authSvc, logger)
	sh := handler.NewSiteHandler(home, notifications, settings, messages, visitors, authSvc, logger)

	r := chi.NewRouter()
	r.Post("/auth/register", ah.HandleRegister)
	r.Post("/auth/login", ah.HandleLogin)
	r.Post("/auth/logout", ah.HandleLogout)
	r.Get("/auth/google/login", ah.HandleGoogleLogin)
	r.Get("/api/me", ah.HandleMe)
	r.Put("/api/me", ah.HandleUpdateMe)
	r.Get("/api/home", sh.HandleHome)
	r.Get("/api/view", sh.HandleView)
	r.Post("/api/contact", sh.HandleContact)
	r.Post("/api/visits", sh.HandleVisit)
	r.Put("/api/settings", sh.HandleSaveSettings)
	r.Get("/api/opportunities", oh.HandleList)
	r.Get("/api/opportunities/preview", oh.HandlePreview)
	r.Post("/api/opportunities", oh.HandleCreate)
	r.Delete("/api/opportunities/{id}", oh.HandleDelete)
	r.Post("/api/opportunities/{id}/apply", oh.HandleApply)
	r.Post("/api/team", ch.HandleCreateTeamMember)
	r.Get("/api/admin/messages", adm.HandleListMessages)
	r.Put("/api/admin/users/{id}/role", adm.HandleChangeRole)

	return &testEnv{db: db, router: r}
}

// user stores a profile and returns its id.
func (e *testEnv) user(t *testing.T, email string, role model.Role, complete bool) string {
	t.Helper()
	u := &model.UserProfile{Email: email, Name: "Test User", Role: role}
	if complete {
		model.ProfileUpdate{
			Phone:         "9876543210",
			Location:      "Kandukur",
			DateOfBirth:   "2001-04-12",
			Gender:        "Female",
			Qualification: "B.Tech",
			FieldOfStudy:  "ECE",
			Institution:   "JNTU",
		}.ApplyTo(u)
	}
	require.NoError(t, e.db.Users().Create(context.Background(), u))
	return u.ID
}

func (e *testEnv) opportunity(t *testing.T, o model.Opportunity) string {
	t.Helper()
	require.NoError(t, e.db.Opportunities().Create(context.Background(), &o))
	return o.ID
}

// do sends a request, signed in as userID when it is not empty.
func (e *testEnv) do(req *http.Request, userID string, role model.Role) *httptest.ResponseRecorder {
	if userID != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), access.Identity{UserID: userID, Role: role}))
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func TestApply_Outcomes(t *testing.T) {
	env := newTestEnv(t)
	open := env.opportunity(t, model.Opportunity{Title: "Go Intern", Category: model.CategoryInternship, Deadline: "2025-07-01", Link: "https://example.com/apply"})
	closed := env.opportunity(t, model.Opportunity{Title: "Old", Category: model.CategoryJob, Deadline: "2025-06-01", Link: "https://example.com/old"})
	placeholder := env.opportunity(t, model.Opportunity{Title: "No link", Category: model.CategoryJob, Deadline: "2025-07-01"})
	incomplete := env.user(t, "new@example.com", model.RoleJobSeeker, false)
	complete := env.user(t, "ready@example.com", model.RoleJobSeeker, true)

	tests := []struct {
		name       string
		id         string
		userID     string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{"anonymous", open, "", http.StatusUnauthorized, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "deny_sign_in", body["outcome"])
			assert.Equal(t, "sign_in", body["action"])
		}},
		{"incomplete profile", open, incomplete, http.StatusForbidden, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "deny_incomplete", body["outcome"])
			assert.Equal(t, "profile", body["navigate"])
			assert.Contains(t, body["missing"], "phone")
		}},
		{"complete profile", open, complete, http.StatusOK, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "allow", body["outcome"])
			assert.Equal(t, "https://example.com/apply", body["link"])
		}},
		{"closed beats anonymous", closed, "", http.StatusConflict, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "deny_closed", body["outcome"])
			assert.NotContains(t, body, "action")
		}},
		{"placeholder link", placeholder, complete, http.StatusOK, func(t *testing.T, body map[string]any) {
			assert.Equal(t, "allow", body["outcome"])
			assert.NotContains(t, body, "link")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodPost, "/api/opportunities/"+tt.id+"/apply", nil), tt.userID, model.RoleJobSeeker)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			tt.check(t, decode(t, rr))
		})
	}
}

func TestApply_UnknownOpportunity(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(httptest.NewRequest(http.MethodPost, "/api/opportunities/missing/apply", nil), "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListOpportunities(t *testing.T) {
	env := newTestEnv(t)
	env.opportunity(t, model.Opportunity{Title: "Closed", Category: model.CategoryJob, Deadline: "2025-06-01", Featured: true})
	env.opportunity(t, model.Opportunity{Title: "Open", Category: model.CategoryJob, Deadline: "2025-07-01"})

	t.Run("open before closed", func(t *testing.T) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/api/opportunities", nil), "", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var list []struct {
			Title  string `json:"title"`
			Closed bool   `json:"closed"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
		require.Len(t, list, 2)
		assert.Equal(t, "Open", list[0].Title)
		assert.False(t, list[0].Closed)
		assert.True(t, list[1].Closed)
	})

	t.Run("bad filter", func(t *testing.T) {
		rr := env.do(httptest.NewRequest(http.MethodGet, "/api/opportunities?minStipend=lots", nil), "", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPreviewOpportunities(t *testing.T) {
	env := newTestEnv(t)
	for _, title := range []string{"Job 1", "Job 2", "Job 3", "Job 4"} {
		env.opportunity(t, model.Opportunity{Title: title, Category: model.CategoryJob, Deadline: "2025-07-01"})
	}
	env.opportunity(t, model.Opportunity{Title: "Summer Internship", Category: model.CategoryInternship, Deadline: "2025-07-01"})
	env.opportunity(t, model.Opportunity{Title: "Winter Internship", Category: model.CategoryInternship, Deadline: "2025-06-01"})

	tests := []struct {
		name   string
		query  string
		titles []string
		closed []bool
	}{
		{"unfiltered keeps three", "", nil, nil},
		{"category", "?category=internship", []string{"Summer Internship", "Winter Internship"}, []bool{false, true}},
		{"search", "?q=summer", []string{"Summer Internship"}, []bool{false}},
		{"nothing matches", "?q=welding", []string{}, []bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodGet, "/api/opportunities/preview"+tt.query, nil), "", "")
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

			var list []struct {
				Title  string `json:"title"`
				Closed bool   `json:"closed"`
			}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
			if tt.titles == nil {
				assert.Len(t, list, 3)
				return
			}
			titles := []string{}
			closed := []bool{}
			for _, l := range list {
				titles = append(titles, l.Title)
				closed = append(closed, l.Closed)
			}
			assert.Equal(t, tt.titles, titles)
			assert.Equal(t, tt.closed, closed)
		})
	}

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/opportunities/preview?workMode=underwater", nil), "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateOpportunity(t *testing.T) {
	env := newTestEnv(t)
	seeker := env.user(t, "seeker@example.com", model.RoleJobSeeker, true)
	recruiter := env.user(t, "recruiter@example.com", model.RoleRecruiter, false)
	body := `{"title":"Backend Intern","category":"internship","deadline":"2025-07-01"}`

	rr := env.do(jsonRequest(http.MethodPost, "/api/opportunities", body), seeker, model.RoleJobSeeker)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(jsonRequest(http.MethodPost, "/api/opportunities", `{"title":"No deadline"}`), recruiter, model.RoleRecruiter)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "deadline", decode(t, rr)["field"])

	rr = env.do(jsonRequest(http.MethodPost, "/api/opportunities", `{"title":"x","bogus":1}`), recruiter, model.RoleRecruiter)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(jsonRequest(http.MethodPost, "/api/opportunities", body), recruiter, model.RoleRecruiter)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode(t, rr)
	assert.Equal(t, "Backend Intern", created["title"])

	rr = env.do(httptest.NewRequest(http.MethodDelete, "/api/opportunities/"+created["id"].(string), nil), recruiter, model.RoleRecruiter)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/me", nil), "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(jsonRequest(http.MethodPost, "/auth/register", `{"name":"Asha","email":"asha@example.com","password":"correct-horse-9"}`), "", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	reg := decode(t, rr)
	assert.Equal(t, "incomplete", reg["state"])
	assert.Equal(t, "public", reg["dashboard"])

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "register must set the session cookie")
	assert.True(t, cookie.HttpOnly)

	rr = env.do(jsonRequest(http.MethodPost, "/auth/register", `{"name":"Asha","email":"asha@example.com","password":"correct-horse-9"}`), "", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(jsonRequest(http.MethodPost, "/auth/login", `{"email":"asha@example.com","password":"wrong-password-1"}`), "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(jsonRequest(http.MethodPost, "/auth/login", `{"email":"asha@example.com","password":"correct-horse-9"}`), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	user := decode(t, rr)["user"].(map[string]any)
	id := user["id"].(string)

	body := `{"phone":"9876543210","location":"Kandukur","dateOfBirth":"2001-04-12","gender":"Female","qualification":"B.Tech","fieldOfStudy":"ECE","institution":"JNTU"}`
	rr = env.do(jsonRequest(http.MethodPut, "/api/me", body), id, model.RoleJobSeeker)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "complete", decode(t, rr)["state"])
}

func TestGoogleLogin_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(httptest.NewRequest(http.MethodGet, "/auth/google/login", nil), "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestView_RedirectsToHome(t *testing.T) {
	env := newTestEnv(t)
	seeker := env.user(t, "seeker@example.com", model.RoleJobSeeker, true)
	admin := env.user(t, "admin@example.com", model.RoleAdmin, false)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/view?view=admin", nil), seeker, model.RoleJobSeeker)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "home", body["navigate"])
	assert.Equal(t, true, body["redirected"])

	rr = env.do(httptest.NewRequest(http.MethodGet, "/api/view?view=admin", nil), admin, model.RoleAdmin)
	body = decode(t, rr)
	assert.Equal(t, "admin", body["navigate"])
	assert.Equal(t, "admin", body["dashboard"])

	rr = env.do(httptest.NewRequest(http.MethodGet, "/api/view?view=nowhere", nil), "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestContactAndInbox(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin@example.com", model.RoleAdmin, false)
	recruiter := env.user(t, "recruiter@example.com", model.RoleRecruiter, false)

	rr := env.do(jsonRequest(http.MethodPost, "/api/contact", `{"name":"Ravi","email":"ravi@example.com","message":"Hello"}`), "", "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil), recruiter, model.RoleRecruiter)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(httptest.NewRequest(http.MethodGet, "/api/admin/messages?limit=-1", nil), admin, model.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil), admin, model.RoleAdmin)
	require.Equal(t, http.StatusOK, rr.Code)
	var msgs []model.ContactMessage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "Ravi", msgs[0].Name)
}

func TestChangeRole_Self(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin@example.com", model.RoleAdmin, false)

	rr := env.do(jsonRequest(http.MethodPut, "/api/admin/users/"+admin+"/role", `{"role":"jobseeker"}`), admin, model.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCreateTeamMember_Multipart(t *testing.T) {
	env := newTestEnv(t)
	admin := env.user(t, "admin@example.com", model.RoleAdmin, false)

	form := func(withImage bool) *http.Request {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("name", "Ravi Kumar")
		mw.WriteField("role", "Lead")
		if withImage {
			fw, _ := mw.CreateFormFile(upload.FormField, "ravi.png")
			fw.Write([]byte("\x89PNG\r\n\x1a\n"))
		}
		mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/team", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	rr := env.do(form(false), admin, model.RoleAdmin)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, upload.PlaceholderAvatar("Ravi Kumar"), decode(t, rr)["imageUrl"])

	// no image host is configured in tests
	rr = env.do(form(true), admin, model.RoleAdmin)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHomeAndVisits(t *testing.T) {
	env := newTestEnv(t)
	env.opportunity(t, model.Opportunity{Title: "A", Category: model.CategoryJob, Deadline: "2025-07-01"})
	env.opportunity(t, model.Opportunity{Title: "B", Category: model.CategoryJob, Deadline: "2025-06-01"})

	for i := 0; i < 2; i++ {
		rr := env.do(httptest.NewRequest(http.MethodPost, "/api/visits", nil), "", "")
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/home", nil), "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var page service.Home
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
	require.Len(t, page.Opportunities, 2)
	assert.Equal(t, "A", page.Opportunities[0].Title)
	assert.False(t, page.Opportunities[0].Closed)
	assert.True(t, page.Opportunities[1].Closed, "home flags closed listings like the board does")
	assert.EqualValues(t, 2, page.Visitors)
	assert.NotNil(t, page.Settings)
}

func TestSaveSettings_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	recruiter := env.user(t, "recruiter@example.com", model.RoleRecruiter, false)

	rr := env.do(jsonRequest(http.MethodPut, "/api/settings", `{"facebookUrl":"https://facebook.com/kandukur"}`), recruiter, model.RoleRecruiter)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
