package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"tabel/internal/core"
	ports "tabel/internal/records"
)

// Source reads attendance records from a local JSON file. It re-reads the
// file on every Load, so replacing the file on disk is enough to refresh
// the dashboard.
type Source struct {
	path string
}

var _ ports.Source = (*Source)(nil)

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Load(ctx context.Context) ([]core.AttendanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var recs []core.AttendanceRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return recs, nil
}
