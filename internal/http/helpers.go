package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tabel/internal/core"
)

// filterFromQuery builds the filter selection from query parameters. Absent
// employee/month/week selectors default to the ALL sentinel; an absent date
// stays empty (no date narrowing).
func filterFromQuery(r *http.Request) core.FilterSelection {
	f := core.DefaultFilter()
	q := r.URL.Query()
	if v := sanitizeInput(q.Get("employee")); v != "" {
		f.Employee = v
	}
	if v := sanitizeInput(q.Get("month")); v != "" {
		f.Month = v
	}
	if v := sanitizeInput(q.Get("week")); v != "" {
		f.Week = v
	}
	f.Date = sanitizeInput(q.Get("date"))
	return f
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
