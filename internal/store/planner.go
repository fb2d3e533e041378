package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"budgetplan/internal/core"
)

// Planner owns the monthly plans and the category registry. Every mutation
// rebuilds the affected record, persists the full aggregate to the KV and only
// then commits in memory, so a failed write never leaves half-applied state.
// There is exactly one writer per process; the mutex guards the HTTP surface.
type Planner struct {
	mu  sync.Mutex
	kv  KV
	ids IDSource

	months     core.MonthlyData
	categories []core.Category
	revisions  map[string]int64
}

// Allocation fields accepted by UpdateAllocationField.
const (
	FieldPurpose  = "purpose"
	FieldAmount   = "amount"
	FieldCategory = "category"
	FieldNote     = "note"
)

// Category fields accepted by UpdateCategoryField.
const (
	FieldName  = "name"
	FieldColor = "color"
)

// New loads persisted state from the KV. Absent or malformed state falls back
// to empty monthly data and the default category registry; the planner never
// refuses to start over bad local state.
func New(ctx context.Context, kv KV, ids IDSource) (*Planner, error) {
	p := &Planner{
		kv:         kv,
		ids:        ids,
		months:     core.MonthlyData{},
		categories: append([]core.Category(nil), core.DefaultCategories...),
		revisions:  map[string]int64{},
	}

	if raw, ok, err := kv.Get(ctx, KeyMonthlyData); err != nil {
		return nil, fmt.Errorf("load monthly data: %w", err)
	} else if ok {
		months, derr := core.DecodeMonthlyData([]byte(raw))
		if derr != nil {
			slog.WarnContext(ctx, "Discarding malformed monthly data", "error", derr)
		} else {
			p.months = months
		}
	}

	raw, ok, err := kv.Get(ctx, KeyCategories)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if !ok {
		// canonical key absent: migrate the legacy key if one exists
		raw, ok, err = kv.Get(ctx, LegacyKeyCategories)
		if err != nil {
			return nil, fmt.Errorf("load legacy categories: %w", err)
		}
		if ok {
			slog.InfoContext(ctx, "Migrating categories from legacy storage key")
		}
	}
	if ok {
		cats, derr := core.DecodeCategories([]byte(raw))
		if derr != nil {
			slog.WarnContext(ctx, "Discarding malformed categories", "error", derr)
		} else if len(cats) > 0 {
			p.categories = cats
		}
	}

	return p, nil
}

// GetMonthData returns the stored plan or the zero-value default. Never fails.
func (p *Planner) GetMonthData(monthKey string) core.MonthData {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.months[monthKey]; ok {
		return m.Clone()
	}
	return core.EmptyMonth()
}

// Months returns a deep copy of the whole monthly map.
func (p *Planner) Months() core.MonthlyData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.months.Clone()
}

// Revision returns the per-month write counter, used for change events.
func (p *Planner) Revision(monthKey string) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.revisions[monthKey]
}

// SetIncome parses raw currency input (non-digits stripped, never rejected)
// and stores it as the month's income.
func (p *Planner) SetIncome(ctx context.Context, monthKey, raw string) (core.MonthData, error) {
	return p.mutateMonth(ctx, monthKey, func(m *core.MonthData) error {
		m.Income = core.ParseIncome(raw)
		return nil
	})
}

// AddAllocation appends a fresh empty row and returns it.
func (p *Planner) AddAllocation(ctx context.Context, monthKey string) (core.Allocation, error) {
	alloc := core.Allocation{ID: p.ids.NewID()}
	_, err := p.mutateMonth(ctx, monthKey, func(m *core.MonthData) error {
		m.Allocations = append(m.Allocations, alloc)
		return nil
	})
	if err != nil {
		return core.Allocation{}, err
	}
	return alloc, nil
}

// UpdateAllocationField replaces one named field on the matching allocation.
// A missing allocation id is a no-op, matching keystroke-driven updates that
// may race a row removal.
func (p *Planner) UpdateAllocationField(ctx context.Context, monthKey, allocID, field, value string) (core.MonthData, error) {
	return p.mutateMonth(ctx, monthKey, func(m *core.MonthData) error {
		for i := range m.Allocations {
			if m.Allocations[i].ID != allocID {
				continue
			}
			switch field {
			case FieldPurpose:
				m.Allocations[i].Purpose = value
			case FieldAmount:
				v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
				if err != nil {
					v = core.ParseIncome(value)
				}
				m.Allocations[i].Amount = core.ClampAmount(v)
			case FieldCategory:
				m.Allocations[i].Category = value
			case FieldNote:
				m.Allocations[i].Note = value
			default:
				return fmt.Errorf("%w: %q", core.ErrUnknownField, field)
			}
			return nil
		}
		return nil
	})
}

// RemoveAllocation filters the row out. Removing an absent id is a no-op.
func (p *Planner) RemoveAllocation(ctx context.Context, monthKey, allocID string) (core.MonthData, error) {
	return p.mutateMonth(ctx, monthKey, func(m *core.MonthData) error {
		kept := m.Allocations[:0]
		for _, a := range m.Allocations {
			if a.ID != allocID {
				kept = append(kept, a)
			}
		}
		m.Allocations = kept
		return nil
	})
}

// ApplyTemplate replaces the month's allocations with fresh seed rows from the
// named template. Manually edited rows are discarded: templates are starting
// points, not merges. Unknown names return core.ErrUnknownTemplate.
func (p *Planner) ApplyTemplate(ctx context.Context, monthKey, name string) (core.MonthData, error) {
	tmpl, ok := core.Template(name)
	if !ok {
		return core.MonthData{}, fmt.Errorf("%w: %q", core.ErrUnknownTemplate, name)
	}
	return p.mutateMonth(ctx, monthKey, func(m *core.MonthData) error {
		m.Allocations = tmpl.Allocations(m.Income, p.ids.NewID)
		m.ActiveTemplate = name
		return nil
	})
}

// SetManualGroup pins the allocation to a group id, or clears the pin when the
// sentinel "auto" is passed. The id is not validated against the active
// template: group resolution tolerates dangling ids and falls back to the
// category-based match.
func (p *Planner) SetManualGroup(ctx context.Context, monthKey, allocID, groupID string) (core.MonthData, error) {
	return p.mutateMonth(ctx, monthKey, func(m *core.MonthData) error {
		for i := range m.Allocations {
			if m.Allocations[i].ID == allocID {
				if groupID == core.ManualGroupAuto {
					m.Allocations[i].ManualGroup = ""
				} else {
					m.Allocations[i].ManualGroup = groupID
				}
				return nil
			}
		}
		return nil
	})
}

// ListCategories returns the registry in insertion order.
func (p *Planner) ListCategories() []core.Category {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]core.Category(nil), p.categories...)
}

// AddCategory appends a user category. A blank name is silently ignored and
// reported via ok=false.
func (p *Planner) AddCategory(ctx context.Context, name, color string) (core.Category, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, false, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cat := core.Category{ID: "custom_" + p.ids.NewID(), Name: name, Color: color}
	next := append(append([]core.Category(nil), p.categories...), cat)
	if err := p.persistCategories(ctx, next); err != nil {
		return core.Category{}, false, err
	}
	p.categories = next
	return cat, true, nil
}

// RemoveCategory drops the entry. Allocations referencing it keep their
// dangling id and render as uncategorized; there is no cascade.
func (p *Planner) RemoveCategory(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := make([]core.Category, 0, len(p.categories))
	for _, c := range p.categories {
		if c.ID != id {
			next = append(next, c)
		}
	}
	if err := p.persistCategories(ctx, next); err != nil {
		return err
	}
	p.categories = next
	return nil
}

// UpdateCategoryField edits the name or color of one category in place.
func (p *Planner) UpdateCategoryField(ctx context.Context, id, field, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := append([]core.Category(nil), p.categories...)
	for i := range next {
		if next[i].ID != id {
			continue
		}
		switch field {
		case FieldName:
			next[i].Name = value
		case FieldColor:
			next[i].Color = value
		default:
			return fmt.Errorf("%w: %q", core.ErrUnknownField, field)
		}
		if err := p.persistCategories(ctx, next); err != nil {
			return err
		}
		p.categories = next
		return nil
	}
	return fmt.Errorf("%w: %q", core.ErrCategoryNotFound, id)
}

// ReplaceAll swaps the whole state atomically: both aggregates are persisted
// before either replaces the in-memory copy. Used by import.
func (p *Planner) ReplaceAll(ctx context.Context, months core.MonthlyData, categories []core.Category) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	months = months.Clone()
	if err := p.persistMonths(ctx, months); err != nil {
		return err
	}
	if err := p.persistCategories(ctx, categories); err != nil {
		return err
	}
	p.months = months
	p.categories = append([]core.Category(nil), categories...)
	for key := range months {
		p.revisions[key]++
	}
	return nil
}

// mutateMonth runs fn against a copy of the month record (created lazily with
// the zero default), persists the full map and commits on success.
func (p *Planner) mutateMonth(ctx context.Context, monthKey string, fn func(*core.MonthData) error) (core.MonthData, error) {
	if !core.ValidMonthKey(monthKey) {
		return core.MonthData{}, fmt.Errorf("%w: %q", core.ErrInvalidMonthKey, monthKey)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	month := core.EmptyMonth()
	if m, ok := p.months[monthKey]; ok {
		month = m.Clone()
	}
	if err := fn(&month); err != nil {
		return core.MonthData{}, err
	}

	next := p.months.Clone()
	next[monthKey] = month
	if err := p.persistMonths(ctx, next); err != nil {
		return core.MonthData{}, err
	}
	p.months = next
	p.revisions[monthKey]++
	return month.Clone(), nil
}

func (p *Planner) persistMonths(ctx context.Context, months core.MonthlyData) error {
	raw, err := encode(months)
	if err != nil {
		return err
	}
	if err := p.kv.Set(ctx, KeyMonthlyData, raw); err != nil {
		return fmt.Errorf("persist monthly data: %w", err)
	}
	return nil
}

func (p *Planner) persistCategories(ctx context.Context, cats []core.Category) error {
	raw, err := encode(cats)
	if err != nil {
		return err
	}
	if err := p.kv.Set(ctx, KeyCategories, raw); err != nil {
		return fmt.Errorf("persist categories: %w", err)
	}
	return nil
}
