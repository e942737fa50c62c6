package http

import (
	"net/http"

	"fintrack/internal/report"
)

const maxListLimit = 100

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.reports.Summary()).Write(w)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.reports.Budgets()).Write(w)
}

// handleGoals returns goals grouped by priority, or the ranked top ?limit
// goals when a limit is given.
func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("limit") {
		n := ParseLimit(r.URL.Query(), "limit", report.DashboardGoalLimit, maxListLimit)
		NewJSONResponse().Data(s.reports.TopGoals(n)).Write(w)
		return
	}
	NewJSONResponse().Data(s.reports.Goals()).Write(w)
}

// handleTrend returns every month ascending, or the newest ?recent months
// newest first.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	trend := s.reports.MonthlyTrend()
	if r.URL.Query().Has("recent") {
		n := ParseLimit(r.URL.Query(), "recent", report.RecentMonthLimit, maxListLimit)
		NewJSONResponse().Data(report.RecentMonths(trend, n)).Write(w)
		return
	}
	NewJSONResponse().Data(trend).Write(w)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	n := ParseLimit(r.URL.Query(), "limit", report.RecentTransactionLimit, maxListLimit)
	NewJSONResponse().Data(s.reports.Recent(n)).Write(w)
}

// handleDistribution returns every category slice, or the top ?top slices.
func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	slices := s.reports.Distribution()
	if r.URL.Query().Has("top") {
		n := ParseLimit(r.URL.Query(), "top", report.DashboardSliceLimit, maxListLimit)
		slices = report.TopSlices(slices, n)
	}
	NewJSONResponse().Data(slices).Write(w)
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	win, err := ParseWindow(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.reports.TimeSeries(win)).Write(w)
}

func (s *Server) handleIncomeVsExpense(w http.ResponseWriter, r *http.Request) {
	win, err := ParseWindow(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.reports.IncomeVsExpense(win)).Write(w)
}
