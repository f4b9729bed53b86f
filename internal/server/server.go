// Package server exposes reports and rendered chart images over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/ads-report/internal/config"
	"github.com/sells-group/ads-report/internal/model"
	"github.com/sells-group/ads-report/internal/report"
)

// Generator produces a report for the configured dataset.
type Generator interface {
	Generate(ctx context.Context, datasetPath string) (*model.Report, error)
}

// Server routes report and chart requests.
type Server struct {
	router  *chi.Mux
	gen     Generator
	limiter *rate.Limiter
}

// New builds a Server. Images under chartDir are served below urlBase.
func New(gen Generator, cfg config.ServerConfig, chartDir, urlBase string) *Server {
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		router:  chi.NewRouter(),
		gen:     gen,
		limiter: rate.NewLimiter(rate.Limit(perSec), burst),
	}
	s.setupMiddleware(cfg.CORSOrigins)
	s.setupRoutes(chartDir, urlBase)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes(chartDir, urlBase string) {
	s.router.Get("/health", handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/api/report", s.handleReport)
	})

	base := "/" + strings.Trim(urlBase, "/")
	if base != "/" && chartDir != "" {
		files := http.StripPrefix(base+"/", http.FileServer(http.Dir(chartDir)))
		s.router.Get(base+"/*", noListing(files))
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReport runs a fresh report. The format query parameter selects json
// (default), yaml or text.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}
	contentType, ok := contentTypes[format]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported format " + format})
		return
	}

	rep, err := s.gen.Generate(r.Context(), "")
	if err != nil {
		status := http.StatusInternalServerError
		if report.IsSchemaError(err) {
			status = http.StatusUnprocessableEntity
		}
		zap.L().Error("server: report failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Bool("fatal", report.IsFatal(err)),
			zap.Error(err),
		)
		writeJSON(w, status, map[string]string{"error": report.Banner(err)})
		return
	}

	var buf bytes.Buffer
	if err := report.Encode(&buf, rep, format); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "encoding failed"})
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

var contentTypes = map[string]string{
	report.FormatJSON: "application/json",
	report.FormatYAML: "application/yaml",
	report.FormatText: "text/markdown; charset=utf-8",
}

// rateLimit rejects requests once the token bucket is empty. Every report run
// spawns one renderer process per chart.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// noListing hides directory indexes from the file server.
func noListing(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
