// Package server exposes the tracking session and the record stores over
// HTTP, with a server-sent event stream for live dashboards.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/broadcast"
	"github.com/Rk346278/real-time-ambulance/internal/geocode"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/osrm"
	"github.com/Rk346278/real-time-ambulance/internal/repositories"
	"github.com/Rk346278/real-time-ambulance/internal/tracking"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// Deps are the collaborators the handlers call. Geocoder may be nil, in which
// case only "lat,lng" places are accepted.
type Deps struct {
	Session  *tracking.Session
	Hub      *broadcast.Hub
	Router   osrm.Router
	Geocoder geocode.Geocoder
	Drivers  repositories.DriverUpdateRepository
	Nurses   repositories.NurseUpdateRepository
	Logger   *slog.Logger

	// SubscriberBuffer sizes the event queue of every SSE client.
	SubscriberBuffer int
}

type Server struct {
	cfg      models.ServerConfig
	deps     Deps
	logger   *slog.Logger
	validate *validator.Validate
	handler  http.Handler
}

func New(cfg models.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SubscriberBuffer < 1 {
		deps.SubscriberBuffer = 64
	}
	s := &Server{
		cfg:      cfg,
		deps:     deps,
		logger:   deps.Logger,
		validate: validator.New(),
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/get-route", s.handleGetRoute)
	mux.HandleFunc("GET /api/geocode", s.handleGeocode)
	mux.HandleFunc("POST /api/route/start", s.handleStartRoute)
	mux.HandleFunc("POST /api/route/stop", s.handleStopRoute)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/checkpoints", s.handleCheckpoints)
	mux.HandleFunc("GET /api/checkpoints/{id}", s.handleCheckpoint)
	mux.HandleFunc("POST /update-location", s.handleUpdateLocation)

	mux.HandleFunc("GET /api/driver-updates", s.handleListDriverUpdates)
	mux.HandleFunc("POST /api/driver-updates", s.handleCreateDriverUpdate)
	mux.HandleFunc("GET /api/nurse-updates", s.handleListNurseUpdates)
	mux.HandleFunc("POST /api/nurse-updates", s.handleCreateNurseUpdate)
	mux.HandleFunc("DELETE /api/clear-all", s.handleClearAll)

	mux.HandleFunc("GET /api/events", s.handleEvents)

	return s.withLogging(withCORS(mux))
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then shuts down gracefully. Open event
// streams end with ctx because every request context derives from it.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		s.logger.Info("server shut down successfully")
		return nil
	})
	return g.Wait()
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the Flusher of the real writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
