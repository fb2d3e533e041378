// Package http exposes the planner over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budgetplan/internal/cache"
	"budgetplan/internal/core"
	applog "budgetplan/internal/log"
	"budgetplan/internal/services"
)

type Server struct {
	http.Server
	planner     *services.PlannerService
	rateLimiter *rateLimiter

	// Report caches, invalidated whenever the underlying month changes
	breakdownCache *cache.LRUCache[[]core.CategoryValue]
	groupCache     *cache.LRUCache[[]core.GroupExpense]
	balancesCache  *cache.LRUCache[balancesReport]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, planner *services.PlannerService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		planner:        planner,
		rateLimiter:    newRateLimiter(),
		breakdownCache: cache.NewLRUCache[[]core.CategoryValue](100, 5*time.Minute),
		groupCache:     cache.NewLRUCache[[]core.GroupExpense](100, 5*time.Minute),
		balancesCache:  cache.NewLRUCache[balancesReport](10, 5*time.Minute),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.breakdownCache)
	s.cacheManager.Register(s.groupCache)
	s.cacheManager.Register(s.balancesCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	planner.SetOnChange(s.invalidateReports)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/months/{key}", s.withSecurityHeaders(s.handleGetMonth))
	mux.HandleFunc("PUT /api/months/{key}/income", s.withSecurityHeaders(s.handleSetIncome))
	mux.HandleFunc("POST /api/months/{key}/allocations", s.withSecurityHeaders(s.handleAddAllocation))
	mux.HandleFunc("PUT /api/months/{key}/allocations/{id}", s.withSecurityHeaders(s.handleUpdateAllocation))
	mux.HandleFunc("DELETE /api/months/{key}/allocations/{id}", s.withSecurityHeaders(s.handleRemoveAllocation))
	mux.HandleFunc("PUT /api/months/{key}/allocations/{id}/group", s.withSecurityHeaders(s.handleSetManualGroup))
	mux.HandleFunc("POST /api/months/{key}/template", s.withSecurityHeaders(s.handleApplyTemplate))

	mux.HandleFunc("GET /api/categories", s.withSecurityHeaders(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withSecurityHeaders(s.handleAddCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.withSecurityHeaders(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withSecurityHeaders(s.handleRemoveCategory))

	mux.HandleFunc("GET /api/templates", s.withSecurityHeaders(s.handleListTemplates))

	mux.HandleFunc("GET /api/months/{key}/reports/breakdown", s.withSecurityHeaders(s.handleCategoryBreakdown))
	mux.HandleFunc("GET /api/months/{key}/reports/groups", s.withSecurityHeaders(s.handleGroupExpenses))
	mux.HandleFunc("GET /api/reports/balances", s.withSecurityHeaders(s.handleRecentBalances))

	mux.HandleFunc("GET /api/export", s.withSecurityHeaders(s.handleExport))
	mux.HandleFunc("POST /api/import", s.withSecurityHeaders(s.handleImport))

	return s
}

// invalidateReports drops cached reports for a changed month. An empty key
// means a registry-level change that can affect every report.
func (s *Server) invalidateReports(monthKey string) {
	if monthKey == "" {
		s.breakdownCache.Clear()
		s.groupCache.Clear()
		s.balancesCache.Clear()
		return
	}
	s.breakdownCache.Delete(monthKey)
	s.breakdownCache.Delete(monthKey + "+unknown")
	s.groupCache.Delete(monthKey)
	s.balancesCache.Clear()
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientIPOf(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		// Rate limit mutating requests only
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
