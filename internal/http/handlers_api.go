package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tabel/internal/records/httpapi"
)

// handleAPIData serves the raw record set as JSON, in the report's own
// field naming.
func (s *Server) handleAPIData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	recs, err := s.getRecords(r.Context())
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := json.NewEncoder(w).Encode(recs); err != nil {
		slog.ErrorContext(r.Context(), "Encode records error", "error", err)
	}
}

// handleAPIView serves the computed dashboard view for the query's filter
// selection as JSON.
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	f := filterFromQuery(r)
	view, err := s.getView(r.Context(), f)
	if err != nil {
		writeJSONError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		slog.ErrorContext(r.Context(), "Encode view error", "error", err)
	}
}

// handleRefresh drops the caches and, when messaging is configured, asks
// the import worker to re-fetch the report.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.invalidateData()

	if s.refresher != nil {
		if err := s.refresher.PublishRefresh(r.Context(), "manual"); err != nil {
			slog.ErrorContext(r.Context(), "Publish refresh error", "error", err)
			http.Error(w, "refresh request failed", http.StatusBadGateway)
			return
		}
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Data load error", "error", err, "url", r.URL.Path)

	status := http.StatusBadGateway
	msg := "failed to load report data"
	if errors.Is(err, httpapi.ErrTimeout) {
		status = http.StatusGatewayTimeout
		msg = "report data request timed out"
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
