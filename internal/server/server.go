// Package server provides the HTTP API for the resume parser.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/db"
	"github.com/jonathan/resume-parser/internal/resume"
	"github.com/jonathan/resume-parser/internal/server/ratelimit"
	"github.com/jonathan/resume-parser/internal/types"
)

// Extractor runs the extraction pipeline for one upload.
type Extractor interface {
	Extract(ctx context.Context, upload resume.Upload) (*types.CandidateProfile, error)
}

// RunLister reads the extraction audit log.
type RunLister interface {
	ListRunsFiltered(ctx context.Context, filters db.RunFilters) ([]db.ExtractionRun, error)
	GetRun(ctx context.Context, id uuid.UUID) (*db.ExtractionRun, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	extractor      Extractor
	runs           RunLister
	logger         *zap.Logger
	rateLimiter    *ratelimit.Limiter
	maxUploadBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithRunLister enables GET /extractions.
func WithRunLister(runs RunLister) Option {
	return func(s *Server) { s.runs = runs }
}

// WithLogger sets the request logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithRateLimiter replaces the limiter built from the configuration.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(s *Server) { s.rateLimiter = limiter }
}

// New creates a new server instance
func New(cfg *config.Config, extractor Extractor, opts ...Option) *Server {
	s := &Server{
		extractor:      extractor,
		logger:         zap.NewNop(),
		maxUploadBytes: cfg.MaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig(ratelimit.Settings{
			Enabled:         !cfg.RateLimitDisabled,
			ExtractPerHour:  cfg.RateLimitPerHour,
			ExtractBurst:    cfg.RateLimitBurst,
			DefaultLimit:    cfg.RateLimitDefault,
			DefaultWindow:   cfg.RateLimitDefaultWindow,
			CleanupInterval: cfg.RateLimitCleanupInterval,
			Whitelist:       cfg.RateLimitWhitelist,
			Blacklist:       cfg.RateLimitBlacklist,
		}))
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = config.DefaultMaxUploadBytes
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /resume/extract", s.handleExtract)
	mux.HandleFunc("GET /extractions", s.handleListExtractions)
	mux.HandleFunc("GET /extractions/{id}", s.handleGetExtraction)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("OPTIONS /", s.handlePreflight)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(corsPolicy(cfg).Handler(s.withRateLimit(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // the model call has no timeout of its own
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		defer s.rateLimiter.Stop()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.logger.Info("server stopped")
	return err
}

// corsPolicy selects the cross-origin policy for the deployment environment.
// Production allows only the configured origins, with credentials; any other
// environment allows every origin without credentials.
func corsPolicy(cfg *config.Config) *cors.Cors {
	opts := cors.Options{
		AllowedMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:     []string{"Authorization", "Content-Type"},
		ExposedHeaders:     []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:             300,
		OptionsPassthrough: true,
	}
	if cfg.IsProduction() {
		opts.AllowedOrigins = cfg.CORSAllowedOrigins
		opts.AllowCredentials = true
	} else {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	}
	return cors.New(opts)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID identifies the caller by remote IP.
// X-Forwarded-For is ignored since it is trivially spoofed without a trusted proxy.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		retry := int((info.RetryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	}
	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime))
	s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// handlePreflight answers OPTIONS on any path with an empty 200.
// CORS headers are already set by the policy middleware.
func (s *Server) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes {"detail": detail}
func (s *Server) errorResponse(w http.ResponseWriter, status int, detail any) {
	s.jsonResponse(w, status, map[string]any{"detail": detail})
}
