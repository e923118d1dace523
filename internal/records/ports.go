package records

import (
	"context"
	"tabel/internal/core"
)

// Ports for attendance data adapters.
type (
	// Source loads the full attendance record set from wherever the report
	// originates: an upstream HTTP endpoint, a local file, or a spreadsheet.
	Source interface {
		Load(ctx context.Context) ([]core.AttendanceRecord, error)
	}

	// Store persists a loaded record set and serves it back to the dashboard.
	Store interface {
		// ReplaceAll swaps the stored record set for the given one atomically.
		ReplaceAll(ctx context.Context, recs []core.AttendanceRecord) error
		ListRecords(ctx context.Context) ([]core.AttendanceRecord, error)
	}
)
