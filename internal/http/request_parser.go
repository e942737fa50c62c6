package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// decodeJSON reads one JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// ParseFilter reads the q, type and category list filters.
func ParseFilter(query url.Values) report.Filter {
	return report.Filter{
		Query:    sanitizeInput(query.Get("q")),
		Type:     strings.TrimSpace(query.Get("type")),
		Category: sanitizeInput(query.Get("category")),
	}
}

// ParseWindow reads ?window=month|year, defaulting to month.
func ParseWindow(query url.Values) (report.Window, error) {
	v := strings.TrimSpace(query.Get("window"))
	if v == "" {
		return report.WindowMonth, nil
	}
	w, err := report.ParseWindow(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return w, nil
}

// ParseLimit reads a positive integer parameter, falling back to def when
// it is missing or invalid and capping it at max.
func ParseLimit(query url.Values, key string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(query.Get(key)))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ParseBool reads a boolean flag such as ?strict=1.
func ParseBool(query url.Values, key string, def bool) bool {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// ParseTransactionType reads ?type=income|expense, defaulting to expense.
func ParseTransactionType(query url.Values) (core.TransactionType, error) {
	v := core.TransactionType(strings.TrimSpace(query.Get("type")))
	if v == "" {
		return core.Expense, nil
	}
	if !v.Valid() {
		return "", fmt.Errorf("%w: unknown transaction type %q", errBadRequest, v)
	}
	return v, nil
}
