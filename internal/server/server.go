package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/analysis"
	"github.com/KaramelBytes/bikeshare-dashboard/internal/dataset"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const sessionCookie = "bikeshare_session"

// Options configures a Server.
type Options struct {
	// Defaults is the selection new sessions start with.
	Defaults analysis.Selection
	Logger   *slog.Logger
	Metrics  *Metrics

	// SessionTTL and MaxSessions bound the session store; zero values
	// select DefaultSessionTTL and DefaultMaxSessions.
	SessionTTL  time.Duration
	MaxSessions int
}

// Server serves the dashboard views over HTTP. The prepared tables are
// shared by all sessions and never modified.
type Server struct {
	tables   *dataset.Tables
	sessions *SessionStore
	metrics  *Metrics
	logger   *slog.Logger
}

// New returns a Server over prepared tables.
func New(tables *dataset.Tables, opt Options) *Server {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NewMetrics()
	}
	if opt.Defaults.Seasons == nil {
		opt.Defaults = analysis.DefaultSelection()
	}
	s := &Server{
		tables:   tables,
		sessions: NewSessionStore(opt.Defaults, opt.SessionTTL, opt.MaxSessions),
		metrics:  opt.Metrics,
		logger:   opt.Logger.With(slog.String("component", "server")),
	}
	s.sessions.onChange = s.metrics.setSessions
	return s
}

// Sessions exposes the session store.
func (s *Server) Sessions() *SessionStore { return s.sessions }

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.withSession)
		r.With(render.SetContentType(render.ContentTypeJSON)).Group(func(r chi.Router) {
			r.Get("/selection", s.handleGetSelection)
			r.Put("/selection", s.handlePutSelection)
			r.Get("/view", s.handleView)
		})
		r.Get("/export/{dataset}/{format}", s.handleExport)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

type sessionKey struct{}

// withSession attaches the caller's session id to the request context,
// creating a session and setting the cookie when none is known.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			if _, ok := s.sessions.Get(c.Value); ok {
				id = c.Value
			}
		}
		if id == "" {
			id = s.sessions.Create().ID
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}
