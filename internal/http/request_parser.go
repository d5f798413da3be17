package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON strictly decodes the request body into dst. Unknown fields
// and trailing garbage are rejected so client typos surface as 400s.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return core.Validationf("invalid request body: %v", err)
	}
	if dec.More() {
		return core.Validationf("invalid request body: unexpected trailing data")
	}
	return nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, core.Validationf("invalid date %q: use YYYY-MM-DD", value)
}

// parseDateQuery reads an optional date query parameter. An absent
// parameter yields the zero time, meaning no bound.
func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	return parseDate(r.URL.Query().Get(key))
}

// parseIntQuery reads an optional integer query parameter, returning 0
// when absent so the service applies its defaults.
func parseIntQuery(r *http.Request, key string) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, core.Validationf("invalid %s %q: must be a number", key, value)
	}
	return n, nil
}
