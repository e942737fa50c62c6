package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestJSONLoggerCarriesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Component: ComponentLedger, Output: &buf})
	l.WithFields(NewFields().WithRecord("transactions", "abc").WithError(errors.New("boom"))).Info("persist failed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentLedger || entry[FieldRecordID] != "abc" || entry[FieldError] != "boom" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentHTTP, Output: &buf})
	ctx := NewContext(context.Background(), l)
	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("expected component in output, got %q", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}
