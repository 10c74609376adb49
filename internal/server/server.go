// Package server wires the portal together: the record store, optional
// Redis, the services, the HTTP router and the background sweeper.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Open() creates:
//	  sqlite.DB ─┬→ stores → services → handlers → chi routes
//	  redis      ┘   (publisher + visitor counter, sqlite/no-op fallback)
//	  services → scheduler (anomaly sweep + notification pruning)
//
// This is the composition root: every dependency is built here and nowhere
// else. The CLI commands reuse Open so they see exactly the server's wiring.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/auth"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/config"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/events"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/handler"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/middleware"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/ranking"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
	sqliteRepo "github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository/sqlite"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/scheduler"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/service"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/upload"
)

const shutdownTimeout = 30 * time.Second

// Services is the portal's business layer, built once per process.
type Services struct {
	Auth          *service.AuthService
	Profiles      *service.ProfileService
	Opportunities *service.OpportunityService
	Content       *service.ContentService
	Messages      *service.MessageService
	Settings      *service.SettingsService
	Notifications *service.NotificationService
	Visitors      *service.VisitorService
	Home          *service.HomeService
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database and the Redis client. Close releases both;
// Start calls it on the way out.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	rdb      *redis.Client // nil when Redis is not configured or unreachable
	tokens   *auth.TokenService
	google   *auth.GoogleProvider
	services *Services
	sweeper  *scheduler.Scheduler
}

// Option adjusts how Open builds the server.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock fixes the ranking engine's clock. Tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Open builds every dependency from cfg.
//
// Optional collaborators degrade instead of failing:
//   - no JWT_SECRET     → everyone is anonymous, /auth routes are not mounted
//   - no Google client  → /auth/google/* answer 503
//   - no REDIS_URL, or Redis unreachable → events are dropped, the visitor
//     counter lives in sqlite
//   - no UPLOAD_URL     → image uploads answer 503
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	// === DATABASE ===
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	// === AUTH ===
	if cfg.AuthEnabled() {
		s.tokens, err = auth.NewTokenService(cfg.JWTSecret)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("creating token service: %w", err)
		}
	} else {
		logger.Warn("JWT_SECRET not set: sign-in is disabled and every visitor is anonymous")
	}
	if cfg.OAuthEnabled() {
		s.google = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	}

	// === REDIS (optional) ===
	var publisher events.Publisher = events.NopPublisher{}
	var counter repository.Counter = db.Counters()
	if cfg.RedisURL != "" {
		rdb, err := events.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable: events disabled, visitor count kept in sqlite",
				slog.String("error", err.Error()),
			)
		} else {
			s.rdb = rdb
			publisher = events.NewRedisPublisher(rdb, logger)
			counter = events.NewRedisCounter(rdb)
		}
	}

	// === IMAGE HOST (optional) ===
	// A nil *upload.Client must not be stored in the interface, or the
	// content service would see a non-nil uploader.
	var uploader upload.Uploader
	if cfg.UploadURL != "" {
		uploader = upload.NewClient(cfg.UploadURL, logger)
	}

	// === SERVICES ===
	engine := ranking.NewEngine(logger, ranking.WithClock(o.now))
	svc := &Services{
		Auth:          service.NewAuthService(db.Users(), s.tokens, auth.NewPasswordService(), cfg.IsAdminEmail, logger),
		Profiles:      service.NewProfileService(db.Users(), logger),
		Opportunities: service.NewOpportunityService(db.Opportunities(), db.Notifications(), publisher, engine, logger),
		Content:       service.NewContentService(db.Partners(), db.Team(), db.Testimonials(), uploader, logger),
		Messages:      service.NewMessageService(db.Messages(), publisher, logger),
		Settings:      service.NewSettingsService(db.Settings(), logger),
		Notifications: service.NewNotificationService(db.Notifications(), logger),
		Visitors:      service.NewVisitorService(counter, logger),
	}
	svc.Home = service.NewHomeService(svc.Opportunities, svc.Content, svc.Notifications, svc.Settings, svc.Visitors)
	s.services = svc

	s.sweeper = scheduler.New(svc.Opportunities, svc.Notifications, cfg.SweepInterval, logger)

	s.setupRoutes()
	return s, nil
}

// Services exposes the business layer to the CLI.
func (s *Server) Services() *Services { return s.services }

// Sweeper exposes the background sweeper to the CLI.
func (s *Server) Sweeper() *scheduler.Scheduler { return s.sweeper }

// Handler returns the router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes configures all middleware and routes.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID    → unique id per request, picked up by the logger
//  2. RealIP       → client IP from proxy headers
//  3. Recoverer    → a panic becomes a 500 instead of a crash
//  4. OptionalAuth → attaches the caller's identity when the cookie is valid
//  5. Logger       → one line per request, with request and user ids
//
// Authorization is not done here. Services check the caller's role through
// access.CanManage, so a route is never the only guard.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.OptionalAuth(s.tokens))
	s.router.Use(middleware.Logger(s.logger))

	svc := s.services
	sessions := svc.Auth
	authHandler := handler.NewAuthHandler(s.google, svc.Auth, svc.Profiles, s.logger)
	oppHandler := handler.NewOpportunityHandler(svc.Opportunities, sessions, s.logger)
	contentHandler := handler.NewContentHandler(svc.Content, sessions, s.logger)
	adminHandler := handler.NewAdminHandler(svc.Profiles, svc.Messages, sessions, s.logger)
	siteHandler := handler.NewSiteHandler(svc.Home, svc.Notifications, svc.Settings, svc.Messages, svc.Visitors, sessions, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	if s.tokens != nil {
		s.router.Route("/auth", func(r chi.Router) {
			r.Get("/google/login", authHandler.HandleGoogleLogin)
			r.Get("/google/callback", authHandler.HandleGoogleCallback)
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
		})
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/home", siteHandler.HandleHome)
		r.Get("/view", siteHandler.HandleView)
		r.Get("/notifications", siteHandler.HandleNotifications)
		r.Get("/settings", siteHandler.HandleGetSettings)
		r.Put("/settings", siteHandler.HandleSaveSettings)
		r.Post("/contact", siteHandler.HandleContact)
		r.Post("/visits", siteHandler.HandleVisit)

		r.Route("/opportunities", func(r chi.Router) {
			r.Get("/", oppHandler.HandleList)
			r.Post("/", oppHandler.HandleCreate)
			r.Get("/preview", oppHandler.HandlePreview)
			r.Get("/{id}", oppHandler.HandleGet)
			r.Put("/{id}", oppHandler.HandleUpdate)
			r.Delete("/{id}", oppHandler.HandleDelete)
			r.Post("/{id}/apply", oppHandler.HandleApply)
		})

		r.Get("/partners", contentHandler.HandleListPartners)
		r.Post("/partners", contentHandler.HandleCreatePartner)
		r.Put("/partners/{id}", contentHandler.HandleUpdatePartner)
		r.Delete("/partners/{id}", contentHandler.HandleDeletePartner)

		r.Get("/team", contentHandler.HandleListTeam)
		r.Post("/team", contentHandler.HandleCreateTeamMember)
		r.Put("/team/{id}", contentHandler.HandleUpdateTeamMember)
		r.Delete("/team/{id}", contentHandler.HandleDeleteTeamMember)

		r.Get("/testimonials", contentHandler.HandleListTestimonials)
		r.Post("/testimonials", contentHandler.HandleCreateTestimonial)
		r.Put("/testimonials/{id}", contentHandler.HandleUpdateTestimonial)
		r.Delete("/testimonials/{id}", contentHandler.HandleDeleteTestimonial)

		// Signed-in only. RequireAuth answers 401 before the service runs.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Put("/me", authHandler.HandleUpdateMe)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", adminHandler.HandleListUsers)
				r.Put("/users/{id}/role", adminHandler.HandleChangeRole)
				r.Put("/users/{id}/name", adminHandler.HandleRename)
				r.Get("/jobseekers", adminHandler.HandleListJobSeekers)
				r.Get("/messages", adminHandler.HandleListMessages)
				r.Delete("/messages/{id}", adminHandler.HandleDeleteMessage)
			})
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"database": "ok", "redis": "disabled"}
	code := http.StatusOK
	if err := s.db.Ping(ctx); err != nil {
		status["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if s.rdb != nil {
		status["redis"] = "ok"
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			// Redis is optional; report it without failing the check
			status["redis"] = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"database":%q,"redis":%q}`, status["database"], status["redis"])
}

// Start runs the HTTP server and the sweeper until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests and a running sweep (30s timeout)
//  3. Close the database and Redis
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // multipart uploads proxy to the image host
		IdleTimeout:  60 * time.Second,
	}

	if err := s.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("starting sweeper: %w", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("auth", s.tokens != nil),
			slog.Bool("redis", s.rdb != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.sweeper.Stop(shutdownCtx)

	if runErr == nil {
		s.logger.Info("server stopped gracefully")
	}
	return runErr
}

// Close releases the database and Redis connections.
func (s *Server) Close() error {
	var errs []error
	if s.rdb != nil {
		errs = append(errs, s.rdb.Close())
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}
