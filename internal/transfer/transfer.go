// Package transfer implements whole-state export and import of the planner's
// persisted aggregates as a single JSON document.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"budgetplan/internal/core"
)

// Archive is the on-disk interchange format. ExportDate is informational; it
// is ignored on import.
type Archive struct {
	MonthlyData core.MonthlyData `json:"monthlyData"`
	Categories  []core.Category  `json:"categories"`
	ExportDate  string           `json:"exportDate"`
}

var ErrInvalidFormat = errors.New("invalid import format")

// Export serializes the full state, pretty-printed for hand inspection.
func Export(months core.MonthlyData, categories []core.Category, now time.Time) ([]byte, error) {
	if months == nil {
		months = core.MonthlyData{}
	}
	if categories == nil {
		categories = []core.Category{}
	}
	doc := Archive{
		MonthlyData: months,
		Categories:  categories,
		ExportDate:  now.UTC().Format(time.RFC3339),
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return b, nil
}

// Filename builds the download name, e.g. "完整预算数据_2025-06-01.json".
func Filename(label string, now time.Time) string {
	return label + "_" + now.Format("2006-01-02") + ".json"
}

// Import parses an exported document. Both monthlyData and categories must be
// present and well-formed; any failure rejects the whole file so the caller's
// state is never partially replaced.
func Import(data []byte) (core.MonthlyData, []core.Category, error) {
	var envelope struct {
		MonthlyData json.RawMessage `json:"monthlyData"`
		Categories  json.RawMessage `json:"categories"`
		ExportDate  string          `json:"exportDate"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(envelope.MonthlyData) == 0 || string(envelope.MonthlyData) == "null" {
		return nil, nil, fmt.Errorf("%w: missing monthlyData", ErrInvalidFormat)
	}
	if len(envelope.Categories) == 0 || string(envelope.Categories) == "null" {
		return nil, nil, fmt.Errorf("%w: missing categories", ErrInvalidFormat)
	}

	months, err := core.DecodeMonthlyData(envelope.MonthlyData)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	categories, err := core.DecodeCategories(envelope.Categories)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return months, categories, nil
}
