// Package server exposes the rate-limit and audit core over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/BharatBattles/edurank-glow/internal/audit"
	"github.com/BharatBattles/edurank-glow/internal/auth"
	"github.com/BharatBattles/edurank-glow/internal/db"
	"github.com/BharatBattles/edurank-glow/internal/logging"
	"github.com/BharatBattles/edurank-glow/internal/ratelimit"
)

// Server bundles the handler dependencies.
type Server struct {
	store    *db.Store
	limiter  *ratelimit.Limiter
	recorder *audit.Recorder
	logger   *zap.Logger
}

// New builds a Server.
func New(store *db.Store, limiter *ratelimit.Limiter, recorder *audit.Recorder, logger *zap.Logger) *Server {
	return &Server{store: store, limiter: limiter, recorder: recorder, logger: logger}
}

// Router wires middleware and routes. Everything under /api/v1 requires a
// valid identity token.
func (s *Server) Router(validator *auth.Validator, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"https://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "edurank-glow"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(validator.Middleware)
		r.Post("/rate-limit/check", s.handleCheck)
		r.Get("/rate-limit/status", s.handleStatus)
		r.Post("/requests", s.handleLogRequest)
		r.Post("/audit", s.handleRecordAudit)
		r.Get("/audit", s.handleListAudit)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "endpoint not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	return r
}

// requestLogger logs one line per request with zap and places the request
// ID in the logging context so log lines deeper in the core (limiter,
// store, recorder) correlate to the request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := chimiddleware.GetReqID(r.Context())
		if reqID == "" {
			reqID = logging.NewRequestID()
		}
		ctx := logging.WithRequestID(r.Context(), reqID)
		r = r.WithContext(ctx)
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			logging.RequestIDField(ctx))
	})
}
