package backend

import (
	"context"
	"fmt"
	"log/slog"

	"tabel/internal/records"
	"tabel/internal/records/file"
	gsheet "tabel/internal/records/google"
	"tabel/internal/records/httpapi"
	"tabel/internal/storage"

	"tabel/internal/core"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case FileBackend:
		return f.createFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx)
	case HTTPBackend:
		return f.createHTTPBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized file backend", "data_file", config.DataFile)
	return &BackendResult{
		Source: file.New(config.DataFile),
	}, nil
}

// createSQLiteBackend wires the local cache: the dashboard reads from the
// SQLite store, the import worker fills it from the upstream endpoint.
func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"data_url", config.DataURL)

	return &BackendResult{
		Source:  storeSource{repo},
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context) (*BackendResult, error) {
	cli, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")

	return &BackendResult{
		Source: cli,
	}, nil
}

func (f *DefaultFactory) createHTTPBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized HTTP backend",
		"data_url", config.DataURL,
		"fetch_timeout", config.FetchTimeout)
	return &BackendResult{
		Source: httpapi.New(config.DataURL, config.FetchTimeout),
	}, nil
}

// storeSource lets the dashboard read the record set through the Source
// port when a local store backs it.
type storeSource struct {
	store records.Store
}

func (s storeSource) Load(ctx context.Context) ([]core.AttendanceRecord, error) {
	return s.store.ListRecords(ctx)
}
