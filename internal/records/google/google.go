package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"tabel/internal/core"
	ports "tabel/internal/records"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client loads attendance records from a Google Sheets export of the report.
// Row layout, one record per row starting at row 2:
//
//	A Сотрудник, B Дата (DD.MM.YYYY), C Первый вход, D Последний выход,
//	E net_seconds, F net_minus_lunch_seconds, G net_minus_smoke_seconds,
//	H breaks as a JSON array (optional).
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.Source = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Табель") and service account
// credentials via GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Табель"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a read-only Sheets Service using Service
// Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Load(ctx context.Context) ([]core.AttendanceRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:H", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	recs := make([]core.AttendanceRecord, 0, len(resp.Values))
	for i, row := range resp.Values {
		rec, ok := parseRow(toStrings(row))
		if !ok {
			slog.WarnContext(ctx, "Skipping malformed sheet row", "sheet", c.sheetName, "row", i+2)
			continue
		}
		recs = append(recs, rec)
	}
	slog.InfoContext(ctx, "Loaded attendance records from sheet",
		"sheet", c.sheetName, "count", len(recs))
	return recs, nil
}

// parseRow converts one sheet row into a record. Rows without an employee
// name and date are skipped; numeric and break columns are best-effort.
func parseRow(cols []string) (core.AttendanceRecord, bool) {
	if len(cols) < 2 || cols[0] == "" || cols[1] == "" {
		return core.AttendanceRecord{}, false
	}
	rec := core.AttendanceRecord{
		Employee: cols[0],
		Date:     cols[1],
		FirstIn:  safeGet(cols, 2),
		LastOut:  safeGet(cols, 3),
	}
	rec.NetSeconds = parseSeconds(safeGet(cols, 4))
	rec.NetMinusLunchSeconds = parseSeconds(safeGet(cols, 5))
	rec.NetMinusSmokeSeconds = parseSeconds(safeGet(cols, 6))
	if raw := safeGet(cols, 7); raw != "" {
		var breaks []core.BreakInterval
		if err := json.Unmarshal([]byte(raw), &breaks); err == nil {
			rec.Breaks = breaks
		}
	}
	return rec, true
}

func parseSeconds(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Sheets may render integers as "28800.0".
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
