package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tabel/internal/core"
	ports "tabel/internal/records"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the attendance record set between refreshes so
// the dashboard keeps serving data while the upstream report is unreachable.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceAll swaps the stored record set inside a single transaction, so
// readers never observe a half-imported report.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, recs []core.AttendanceRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM break_intervals"); err != nil {
		return fmt.Errorf("clear break intervals: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM attendance_records"); err != nil {
		return fmt.Errorf("clear attendance records: %w", err)
	}

	insertRecord, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance_records
			(employee, date, first_in, last_out, net_seconds, net_minus_lunch_seconds, net_minus_smoke_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer insertRecord.Close()

	insertBreak, err := tx.PrepareContext(ctx, `
		INSERT INTO break_intervals
			(record_id, kind, exit_time, return_time, duration_seconds)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare break insert: %w", err)
	}
	defer insertBreak.Close()

	for _, rec := range recs {
		res, err := insertRecord.ExecContext(ctx,
			rec.Employee, rec.Date, rec.FirstIn, rec.LastOut,
			rec.NetSeconds, rec.NetMinusLunchSeconds, rec.NetMinusSmokeSeconds)
		if err != nil {
			return fmt.Errorf("insert record for %s on %s: %w", rec.Employee, rec.Date, err)
		}
		recordID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("record id: %w", err)
		}
		for _, b := range rec.Breaks {
			if _, err := insertBreak.ExecContext(ctx,
				recordID, b.Kind, b.ExitTime, b.ReturnTime, b.DurationSeconds); err != nil {
				return fmt.Errorf("insert break for record %d: %w", recordID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Attendance records replaced", "count", len(recs))
	return nil
}

// ListRecords returns the stored record set in insertion order, which
// preserves the order of the imported report.
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, employee, date, first_in, last_out,
		       net_seconds, net_minus_lunch_seconds, net_minus_smoke_seconds
		FROM attendance_records
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query attendance records: %w", err)
	}
	defer rows.Close()

	var recs []core.AttendanceRecord
	var ids []int64
	index := make(map[int64]int)
	for rows.Next() {
		var id int64
		var rec core.AttendanceRecord
		if err := rows.Scan(&id, &rec.Employee, &rec.Date, &rec.FirstIn, &rec.LastOut,
			&rec.NetSeconds, &rec.NetMinusLunchSeconds, &rec.NetMinusSmokeSeconds); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		index[id] = len(recs)
		ids = append(ids, id)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	if len(ids) == 0 {
		return recs, nil
	}

	breakRows, err := r.db.QueryContext(ctx, `
		SELECT record_id, kind, exit_time, return_time, duration_seconds
		FROM break_intervals
		ORDER BY record_id, id`)
	if err != nil {
		return nil, fmt.Errorf("query break intervals: %w", err)
	}
	defer breakRows.Close()

	for breakRows.Next() {
		var recordID int64
		var b core.BreakInterval
		if err := breakRows.Scan(&recordID, &b.Kind, &b.ExitTime, &b.ReturnTime, &b.DurationSeconds); err != nil {
			return nil, fmt.Errorf("scan break interval: %w", err)
		}
		if i, ok := index[recordID]; ok {
			recs[i].Breaks = append(recs[i].Breaks, b)
		}
	}
	if err := breakRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate break intervals: %w", err)
	}
	return recs, nil
}

// Count returns the number of stored attendance records. The import worker
// uses it to decide whether a startup load is needed.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count attendance records: %w", err)
	}
	return n, nil
}
