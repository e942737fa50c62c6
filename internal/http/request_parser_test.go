package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func TestParseFilter(t *testing.T) {
	f := ParseFilter(url.Values{"q": {"  coffee\x00 "}, "type": {"expense"}, "category": {"Food & Dining"}})
	want := report.Filter{Query: "coffee", Type: "expense", Category: "Food & Dining"}
	if f != want {
		t.Errorf("ParseFilter = %+v, want %+v", f, want)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in   string
		want report.Window
		ok   bool
	}{
		{"", report.WindowMonth, true},
		{"month", report.WindowMonth, true},
		{"year", report.WindowYear, true},
		{"week", "", false},
	}
	for _, tt := range tests {
		got, err := ParseWindow(url.Values{"window": {tt.in}})
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseWindow(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
		if !tt.ok && !errors.Is(err, errBadRequest) {
			t.Errorf("ParseWindow(%q) expected bad request, got %v", tt.in, err)
		}
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 5},
		{"3", 3},
		{"0", 5},
		{"-2", 5},
		{"abc", 5},
		{"1000", 100},
	}
	for _, tt := range tests {
		if got := ParseLimit(url.Values{"limit": {tt.value}}, "limit", 5, 100); got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	q := url.Values{"strict": {"1"}, "bad": {"maybe"}}
	if !ParseBool(q, "strict", false) {
		t.Error("strict=1 should be true")
	}
	if !ParseBool(q, "bad", true) {
		t.Error("invalid value should fall back to default")
	}
	if ParseBool(q, "missing", false) {
		t.Error("missing value should fall back to default")
	}
}

func TestParseTransactionType(t *testing.T) {
	if typ, err := ParseTransactionType(url.Values{}); err != nil || typ != core.Expense {
		t.Errorf("default = %q, %v; want expense", typ, err)
	}
	if typ, err := ParseTransactionType(url.Values{"type": {"income"}}); err != nil || typ != core.Income {
		t.Errorf("income = %q, %v", typ, err)
	}
	if _, err := ParseTransactionType(url.Values{"type": {"transfer"}}); !errors.Is(err, errBadRequest) {
		t.Errorf("expected bad request, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Car"}`))
	if err := decodeJSON(httptest.NewRecorder(), r, &v); err != nil || v.Name != "Car" {
		t.Errorf("decodeJSON = %+v, %v", v, err)
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	if err := decodeJSON(httptest.NewRecorder(), r, &v); !errors.Is(err, errBadRequest) {
		t.Errorf("expected bad request, got %v", err)
	}

	big := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	if err := decodeJSON(httptest.NewRecorder(), r, &v); !errors.Is(err, errBadRequest) {
		t.Errorf("expected oversized body to be rejected, got %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"  hello  ":       "hello",
		"a\x00b\x07c":     "abc",
		"line1\nline2\tx": "line1\nline2\tx",
		"Food & Dining":   "Food & Dining",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
