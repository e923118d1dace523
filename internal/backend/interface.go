package backend

import (
	"context"
	"time"

	"tabel/internal/records"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the wired adapters for the selected backend.
// Source is what the dashboard reads the record set from. Store is non-nil
// only when a local cache backs the dashboard; the import worker writes
// into it.
type BackendResult struct {
	Source  records.Source
	Store   records.Store
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// file specific
	DataFile string

	// sqlite specific
	SQLiteDBPath string

	// http specific; also used by the sqlite backend's import source
	DataURL      string
	FetchTimeout time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	HTTPBackend   BackendType = "http"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, SheetsBackend, HTTPBackend:
		return true
	default:
		return false
	}
}
