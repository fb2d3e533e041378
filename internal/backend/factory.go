package backend

import (
	"fmt"
	"log/slog"

	"budgetplan/internal/storage"
)

// Factory creates stores based on configuration
type Factory interface {
	Create(config Config) (*Result, error)
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(config Config) (*Result, error) {
	switch config.Type {
	case SQLiteBackend:
		kv, err := storage.NewSQLiteKV(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Result{KV: kv, Cleanup: kv.Close}, nil

	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return &Result{KV: storage.NewMemoryKV()}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
