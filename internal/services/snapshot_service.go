package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetplan/internal/core"
	"budgetplan/internal/store"
	"budgetplan/internal/transfer"
)

// SnapshotService writes export documents to disk. It reads the raw state
// straight from the key/value store so it can run in a separate process from
// the planner server.
type SnapshotService struct {
	kv    store.KV
	dir   string
	label string
	now   func() time.Time
}

func NewSnapshotService(kv store.KV, dir, label string) *SnapshotService {
	return &SnapshotService{
		kv:    kv,
		dir:   dir,
		label: label,
		now:   time.Now,
	}
}

// WriteSnapshot exports current state to a dated file in the snapshot
// directory, overwriting any snapshot already taken the same day.
func (s *SnapshotService) WriteSnapshot(ctx context.Context) (string, error) {
	months, categories, err := s.loadState(ctx)
	if err != nil {
		return "", err
	}

	data, err := transfer.Export(months, categories, s.now())
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	path := filepath.Join(s.dir, transfer.Filename(s.label, s.now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot written",
		"path", path,
		"months", len(months),
		"categories", len(categories))

	return path, nil
}

func (s *SnapshotService) loadState(ctx context.Context) (core.MonthlyData, []core.Category, error) {
	months := core.MonthlyData{}
	if raw, ok, err := s.kv.Get(ctx, store.KeyMonthlyData); err != nil {
		return nil, nil, fmt.Errorf("load months: %w", err)
	} else if ok {
		decoded, err := core.DecodeMonthlyData([]byte(raw))
		if err != nil {
			return nil, nil, fmt.Errorf("decode months: %w", err)
		}
		months = decoded
	}

	categories := core.DefaultCategories
	if raw, ok, err := s.kv.Get(ctx, store.KeyCategories); err != nil {
		return nil, nil, fmt.Errorf("load categories: %w", err)
	} else if ok {
		decoded, err := core.DecodeCategories([]byte(raw))
		if err != nil {
			return nil, nil, fmt.Errorf("decode categories: %w", err)
		}
		categories = decoded
	}

	return months, categories, nil
}
