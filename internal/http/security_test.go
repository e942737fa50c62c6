package http

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct peer", "203.0.113.7:5000", nil, "203.0.113.7"},
		{"untrusted peer ignores forwarding", "203.0.113.7:5000", map[string]string{"X-Forwarded-For": "198.51.100.1"}, "203.0.113.7"},
		{"trusted proxy forwards", "127.0.0.1:5000", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, "198.51.100.1"},
		{"trusted proxy real ip", "10.1.2.3:80", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"trusted proxy bad header", "10.1.2.3:80", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := extractClientIP(r); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	metrics := &securityMetrics{}

	normal := httptest.NewRequest(http.MethodGet, "/api/transactions?q=food", nil)
	if detectSuspiciousRequest(normal, metrics) {
		t.Error("normal request flagged")
	}

	probe := httptest.NewRequest(http.MethodGet, "/.env", nil)
	if !detectSuspiciousRequest(probe, metrics) {
		t.Error("path probe not flagged")
	}

	scanner := httptest.NewRequest(http.MethodGet, "/", nil)
	scanner.Header.Set("User-Agent", "sqlmap/1.7")
	if !detectSuspiciousRequest(scanner, metrics) {
		t.Error("scanner agent not flagged")
	}

	if got := atomic.LoadInt64(&metrics.suspiciousRequests); got != 2 {
		t.Errorf("suspicious counter = %d, want 2", got)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(2)
	defer rl.stop()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	metrics := &securityMetrics{}

	if !rl.allow("a", metrics) || !rl.allow("a", metrics) {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("a", metrics) {
		t.Fatal("third request in the window should be refused")
	}
	if !rl.allow("b", metrics) {
		t.Fatal("other clients have their own window")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("a", metrics) {
		t.Fatal("a new window should reset the count")
	}
	if got := atomic.LoadInt64(&metrics.rateLimitHits); got != 1 {
		t.Errorf("rate limit hits = %d, want 1", got)
	}

	now = now.Add(11 * time.Minute)
	if removed := rl.cleanupStaleEntries(); removed != 2 {
		t.Errorf("removed %d stale clients, want 2", removed)
	}
	if rl.ActiveClients() != 0 {
		t.Errorf("active clients = %d", rl.ActiveClients())
	}
}
