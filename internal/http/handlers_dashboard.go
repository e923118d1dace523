package http

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"tabel/internal/core"
	"tabel/internal/records/httpapi"
)

// summaryView is the Summary with its numbers pre-formatted for rendering.
type summaryView struct {
	TotalHours         string
	AvgPerDay          string
	MaxPerDay          string
	WorkDays           int
	NetWorkHours       string
	NetMinusLunchHours string
	NetMinusSmokeHours string
	TopEmployee        string
}

type dashboardView struct {
	Filter        core.FilterSelection
	Options       core.FilterOptions
	Summary       summaryView
	Rows          []core.TableRow
	Breaks        []core.BreakRow
	ShowBreaks    bool
	Calendar      core.CalendarMonth
	ChartJSON     template.JS
	HasChart      bool
	EmployeeCount int
	AllEmployees  bool
}

// chartPayload feeds the Chart.js bar chart on the dashboard page. Each bar
// is colored with the shared ramp.
type chartPayload struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
}

func chartJSON(cs core.ChartSeries) template.JS {
	p := chartPayload{
		Labels: cs.Labels,
		Values: cs.Values,
		Colors: make([]string, len(cs.Values)),
	}
	for i, v := range cs.Values {
		p.Colors[i] = core.HoursColor(v)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "null"
	}
	return template.JS(b)
}

func newSummaryView(s core.Summary) summaryView {
	return summaryView{
		TotalHours:         core.FormatHours(s.TotalHours),
		AvgPerDay:          core.FormatHours(s.AvgPerDay),
		MaxPerDay:          core.FormatHours(s.MaxPerDay),
		WorkDays:           s.WorkDays,
		NetWorkHours:       core.FormatHours(s.NetWorkHours),
		NetMinusLunchHours: core.FormatHours(s.NetMinusLunchHours),
		NetMinusSmokeHours: core.FormatHours(s.NetMinusSmokeHours),
		TopEmployee:        s.TopEmployee,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	f := filterFromQuery(r)
	view, err := s.getView(r.Context(), f)
	if err != nil {
		s.renderDataError(w, r, err)
		return
	}

	recs, err := s.getRecords(r.Context())
	if err != nil {
		s.renderDataError(w, r, err)
		return
	}

	data := dashboardView{
		Filter:        f,
		Options:       core.Options(recs),
		Summary:       newSummaryView(view.Summary),
		Rows:          view.Rows,
		Breaks:        view.Breaks,
		ShowBreaks:    !f.AllEmployees(),
		Calendar:      view.Calendar,
		ChartJSON:     chartJSON(view.Chart),
		HasChart:      len(view.Chart.Labels) > 0,
		EmployeeCount: view.EmployeeCount,
		AllEmployees:  f.AllEmployees(),
	}
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	f := filterFromQuery(r)
	view, err := s.getView(r.Context(), f)
	if err != nil {
		s.renderDataError(w, r, err)
		return
	}

	data := struct {
		Filter   core.FilterSelection
		Calendar core.CalendarMonth
	}{Filter: f, Calendar: view.Calendar}
	if err := s.templates.ExecuteTemplate(w, "calendar.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Calendar template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// bubbleView is one employee bar of the bubbles page, with the bar width
// already scaled to a percentage of the busiest employee.
type bubbleView struct {
	Name  string
	Hours string
	Width int
	Color string
}

func bubbleViews(bubbles []core.EmployeeBubble) []bubbleView {
	out := make([]bubbleView, 0, len(bubbles))
	for _, b := range bubbles {
		width := int(b.Ratio * 100)
		if width < 2 && b.Hours > 0 {
			width = 2
		}
		out = append(out, bubbleView{
			Name:  b.Name,
			Hours: core.FormatHours(b.Hours),
			Width: width,
			Color: b.Color,
		})
	}
	return out
}

func (s *Server) handleBubblesPage(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	recs, err := s.getRecords(r.Context())
	if err != nil {
		s.renderDataError(w, r, err)
		return
	}

	data := struct {
		Bubbles []bubbleView
	}{Bubbles: bubbleViews(core.Bubbles(recs))}
	if err := s.templates.ExecuteTemplate(w, "bubbles.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Bubbles template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// renderDataError shows the load failure to the user, with a dedicated
// message when the upstream timed out.
func (s *Server) renderDataError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Data load error", "error", err, "url", r.URL.Path)

	msg := "Не удалось загрузить данные отчёта"
	if errors.Is(err, httpapi.ErrTimeout) {
		msg = "Превышено время ожидания ответа от сервера данных"
	}
	w.WriteHeader(http.StatusBadGateway)
	if s.templates != nil {
		data := struct {
			Error string
		}{Error: msg}
		if terr := s.templates.ExecuteTemplate(w, "error.html", data); terr == nil {
			return
		}
	}
	_, _ = w.Write([]byte(`<div class="error">` + msg + `</div>`))
}
