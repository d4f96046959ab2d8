// Package http exposes the JSON API: transaction CRUD, monthly category
// summaries, settings and the SMS sync endpoint.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"paisa/internal/cache"
	"paisa/internal/core"
	"paisa/internal/middleware/trace"
	"paisa/internal/services"
	"paisa/internal/storage"
)

const summaryCacheTTL = 5 * time.Minute

type Server struct {
	http.Server
	store  storage.Store
	ingest *services.IngestService

	rateLimiter *rateLimiter

	// Category summaries are the hot read path; cached per year-month.
	summaryCache *cache.LRUCache[[]core.CategoryTotal]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer wires routes and returns a ready-to-run server.
func NewServer(addr string, store storage.Store, ingest *services.IngestService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           nil, // set below, after middleware wrapping
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:        store,
		ingest:       ingest,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[[]core.CategoryTotal](100, summaryCacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/months", s.handleMonths)
	mux.HandleFunc("GET /api/transactions/{year}/{month}", s.handleListByMonth)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories/{year}/{month}", s.handleCategorySummary)

	mux.HandleFunc("GET /api/meta/categories", handleMetaCategories)
	mux.HandleFunc("GET /api/meta/sources", handleMetaSources)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	mux.HandleFunc("POST /api/sms/sync", s.handleSMSSync)

	tracer := trace.NewMiddleware(clientIP)
	s.Handler = tracer.Middleware(securityHeaders(s.withRateLimit(mux)))

	return s
}

// securityHeaders sets the headers a JSON-only API should carry. HSTS is only
// meaningful once TLS terminates here rather than at a proxy.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies the per-IP limiter to mutating requests only.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP(r)) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP(r), "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the background cleanup goroutines and then the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// clientIP extracts the client address, honoring the usual proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func summaryCacheKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// invalidateSummaries drops the cached summary for every month a mutation
// could have touched. Updates can move a transaction across months, so both
// the old and new month keys are dropped.
func (s *Server) invalidateSummaries(months ...core.YearMonth) {
	for _, ym := range months {
		s.summaryCache.Delete(summaryCacheKey(ym.Year, ym.Month))
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
