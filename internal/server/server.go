package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/plainpress/server/config"
	"github.com/plainpress/server/internal/db"
	"github.com/plainpress/server/internal/handlers"
	"github.com/plainpress/server/internal/mq"
	"github.com/plainpress/server/internal/services"
	"github.com/plainpress/server/internal/session"
	"github.com/plainpress/server/internal/storage"
	"github.com/plainpress/server/internal/store"
)

const sessionPurgeInterval = 10 * time.Minute

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger
	closers    []io.Closer
	cancel     context.CancelFunc
}

// Dependencies are the collaborators the HTTP routes are built from.
type Dependencies struct {
	Articles  *services.ArticleService
	Auth      *services.AuthService
	Cookies   *session.CookieCodec
	Logger    *slog.Logger
	StaticDir string
}

// New constructs a Server from configuration, connecting to the configured
// article backend and, if enabled, the events broker.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	secret := strings.TrimSpace(cfg.Session.Secret)
	if secret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	s := &Server{logger: logger}

	backend, prefix, err := s.openArticleBackend(ctx, cfg)
	if err != nil {
		s.closeAll()
		return nil, err
	}
	objects := storage.NewStorage(backend)
	if err := objects.EnsureBucket(ctx); err != nil {
		s.closeAll()
		return nil, fmt.Errorf("prepare article storage: %w", err)
	}

	articleRepo := store.NewArticleRepository(objects, prefix,
		store.WithSkipCorrupt(cfg.Articles.SkipCorrupt),
		store.WithLogger(logger),
	)

	articleOpts := []services.ArticleServiceOption{services.WithLogger(logger)}
	events, err := mq.Open(ctx, cfg)
	switch {
	case err == nil:
		s.closers = append(s.closers, events)
		articleOpts = append(articleOpts, services.WithEventPublisher(mq.NewArticlePublisher(events, cfg.Events.Channel)))
	case errors.Is(err, mq.ErrDisabled):
	default:
		s.closeAll()
		return nil, fmt.Errorf("connect events backend: %w", err)
	}

	sessions := session.NewMemoryStore(cfg.Session.TTL)
	purgeCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go sessions.RunPurger(purgeCtx, sessionPurgeInterval)

	deps := Dependencies{
		Articles: services.NewArticleService(articleRepo, articleOpts...),
		Auth: services.NewAuthService(
			store.NewCredentialStore(cfg.UsersFile, store.AutoMatcher{}),
			session.NewManager(sessions),
			logger,
		),
		Cookies:   session.NewCookieCodec(cfg.Session.CookieName, secret, cfg.Session.TTL, cfg.Session.Secure),
		Logger:    logger,
		StaticDir: cfg.StaticDir,
	}
	s.router = NewRouter(deps)

	port := cfg.ServerPort
	if port == 0 {
		port = 3000
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server configured",
		slog.Int("port", port),
		slog.String("articles_backend", cfg.Articles.Backend),
		slog.String("events_backend", cfg.Events.Backend),
	)
	return s, nil
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(deps Dependencies) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		handlers.LoadSession(deps.Cookies, deps.Auth),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, deps.Auth, deps.Cookies, logger)
	handlers.ArticleRouter(router, deps.Articles, logger)
	if strings.TrimSpace(deps.StaticDir) != "" {
		handlers.PageRouter(router, deps.StaticDir)
	}
	return router
}

func (s *Server) openArticleBackend(ctx context.Context, cfg config.Config) (storage.ObjectStorage, string, error) {
	switch cfg.Articles.Backend {
	case "", "fs":
		backend, err := storage.NewFSClient(cfg.Articles.Dir)
		return backend, "", err
	case "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		return backend, cfg.Articles.Prefix, err
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, "", err
		}
		s.closers = append(s.closers, backend)
		return backend, cfg.Articles.Prefix, nil
	case "postgres":
		conn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, "", err
		}
		s.closers = append(s.closers, conn)
		return storage.NewPostgresClient(conn), cfg.Articles.Prefix, nil
	default:
		return nil, "", fmt.Errorf("unknown articles backend %q", cfg.Articles.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done and releases backend connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeAll()
	return err
}

func (s *Server) closeAll() {
	if s.cancel != nil {
		s.cancel()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			s.logger.Warn("close resource failed", slog.Any("error", err))
		}
	}
	s.closers = nil
}
