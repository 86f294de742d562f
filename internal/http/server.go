// Package http exposes the budget API over JSON, plus the report export
// surfaces (CSV, XLSX and a printable HTML view).
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"obra/internal/middleware/ratelimit"
	"obra/internal/middleware/security"
	"obra/internal/middleware/trace"
	"obra/internal/services"
)

// Options tunes the server beyond its service dependencies.
type Options struct {
	// RateLimitPerMinute caps mutating requests per client IP.
	RateLimitPerMinute int

	// ReadyCheck reports whether downstream dependencies are reachable.
	// Nil means always ready.
	ReadyCheck func(ctx context.Context) error
}

type Server struct {
	http.Server

	items   *services.ItemService
	txs     *services.TransactionService
	reports *services.ReportService

	limiter  *ratelimit.Limiter
	detector *security.Detector
	ready    func(ctx context.Context) error

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, items *services.ItemService, txs *services.TransactionService, reports *services.ReportService, opts Options) *Server {
	s := &Server{
		items:    items,
		txs:      txs,
		reports:  reports,
		detector: security.NewDetector(),
		ready:    opts.ReadyCheck,
	}

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}
	s.limiter = ratelimit.NewLimiter(limiterCfg)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/items", s.handleCreateItem)
	mux.HandleFunc("GET /api/items/{id}", s.handleGetItem)
	mux.HandleFunc("PUT /api/items/{id}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.handleDeleteItem)
	mux.HandleFunc("GET /api/items/{id}/guidance", s.handleItemGuidance)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/projects/{projectID}/items", s.handleListProjectItems)
	mux.HandleFunc("GET /api/projects/{projectID}/transactions", s.handleListProjectTransactions)
	mux.HandleFunc("GET /api/projects/{projectID}/report", s.handleProjectReport)
	mux.HandleFunc("GET /api/projects/{projectID}/report.csv", s.handleReportCSV)
	mux.HandleFunc("GET /api/projects/{projectID}/report.xlsx", s.handleReportExcel)
	mux.HandleFunc("GET /api/projects/{projectID}/report/print", s.handleReportPrint)
	mux.HandleFunc("GET /api/projects/{projectID}/report/columns", s.handleGetColumns)
	mux.HandleFunc("PUT /api/projects/{projectID}/report/columns", s.handlePutColumns)

	traceMw := trace.NewMiddleware(s.detector.ExtractClientIP)
	headersMw := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limitMw := s.limiter.Middleware(s.detector.ExtractClientIP)

	handler := traceMw.Middleware(
		headersMw.Middleware(
			limitMw(
				s.screenSuspicious(mux))))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// screenSuspicious counts and logs requests matching known attack
// patterns. They still reach the mux, which 404s anything unrouted.
func (s *Server) screenSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
