package http

import (
	"bytes"
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/report"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks storage and reports ledger, websocket and limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["storage"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	}
	checks["ledger"] = map[string]any{"version": s.ledger.Version()}
	if s.hub != nil {
		checks["websocket"] = map[string]any{"sessions": s.hub.Sessions()}
	}
	checks["security"] = map[string]any{
		"active_clients":      s.rateLimiter.ActiveClients(),
		"rate_limit_hits":     atomic.LoadInt64(&s.metrics.rateLimitHits),
		"suspicious_requests": atomic.LoadInt64(&s.metrics.suspiciousRequests),
	}

	NewJSONResponse().Status(httpStatus).Data(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleExportCSV streams every transaction as an attachment. ?strict
// overrides the configured quoting mode.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	strict := ParseBool(r.URL.Query(), "strict", s.opts.CSVStrict)

	var buf bytes.Buffer
	if err := s.ledger.ExportCSV(r.Context(), &buf, strict); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed", log.FieldError, err)
		InternalServerError("Failed to export transactions").Write(w)
		return
	}

	w.Header().Set("Content-Type", report.CSVContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.CSVFileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
