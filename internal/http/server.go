package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/prefs"
	"fintrack/internal/report"
)

// Deps are the components the API serves. Hub and Ready are optional.
type Deps struct {
	Ledger  *ledger.Store
	Reports *report.Cached
	Prefs   *prefs.Store
	Hub     *notify.Hub
	Logger  *log.Logger
	// Ready reports whether storage is reachable.
	Ready func(ctx context.Context) error
	Now   func() time.Time
}

type Options struct {
	RateLimitPerMinute int
	CSVStrict          bool
}

type Server struct {
	http.Server
	ledger  *ledger.Store
	reports *report.Cached
	prefs   *prefs.Store
	hub     *notify.Hub
	ready   func(ctx context.Context) error
	now     func() time.Time
	opts    Options
	logger  *log.Logger

	rateLimiter *rateLimiter
	metrics     *securityMetrics
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		ledger:      deps.Ledger,
		reports:     deps.Reports,
		prefs:       deps.Prefs,
		hub:         deps.Hub,
		ready:       deps.Ready,
		now:         now,
		opts:        opts,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		metrics:     &securityMetrics{},
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withTracing(withSecurityHeaders(s.withRateLimit(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.hub.HandleRequest)
	}

	registerCRUD(mux, "/api/transactions", s.transactionRoutes())
	registerCRUD(mux, "/api/categories", s.categoryRoutes())
	registerCRUD(mux, "/api/budgets", s.budgetRoutes())
	registerCRUD(mux, "/api/goals", s.goalRoutes())
	mux.HandleFunc("GET /api/categories/options", s.handleCategoryOptions)
	mux.HandleFunc("GET /api/transactions/categories", s.handleUsedCategories)
	mux.HandleFunc("POST /api/goals/{id}/contribute", s.handleContribute)

	mux.HandleFunc("GET /api/user", s.handleGetUser)
	mux.HandleFunc("PATCH /api/user", s.handlePatchUser)

	mux.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /api/preferences", s.handlePutPreferences)
	mux.HandleFunc("POST /api/preferences/toggle", s.handleTogglePreferences)

	mux.HandleFunc("GET /api/reports/summary", s.handleSummary)
	mux.HandleFunc("GET /api/reports/budgets", s.handleBudgets)
	mux.HandleFunc("GET /api/reports/goals", s.handleGoals)
	mux.HandleFunc("GET /api/reports/trend", s.handleTrend)
	mux.HandleFunc("GET /api/reports/recent", s.handleRecent)
	mux.HandleFunc("GET /api/reports/categories", s.handleDistribution)
	mux.HandleFunc("GET /api/reports/timeseries", s.handleTimeSeries)
	mux.HandleFunc("GET /api/reports/income-expense", s.handleIncomeVsExpense)

	mux.HandleFunc("GET /api/export.csv", s.handleExportCSV)
}

// Shutdown stops the rate limiter janitor and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
