// Package services orchestrates planner mutations across persistence,
// messaging and in-process notification.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgetplan/internal/core"
	"budgetplan/internal/notify"
	"budgetplan/internal/store"
	"budgetplan/internal/transfer"
)

// ChangePublisher publishes budget change messages to the broker.
type ChangePublisher interface {
	PublishBudgetChanged(ctx context.Context, monthKey string, revision int64) error
}

// PlannerService wraps the planner store with eventing: every successful
// mutation invalidates dependent caches, raises a notice where the user should
// see one, and publishes a change message. Publishing never fails the
// mutation; local state is already committed.
type PlannerService struct {
	planner   *store.Planner
	publisher ChangePublisher
	bus       *notify.Bus
	label     string
	onChange  func(monthKey string)
}

func NewPlannerService(planner *store.Planner, publisher ChangePublisher, bus *notify.Bus, exportLabel string) *PlannerService {
	return &PlannerService{
		planner:   planner,
		publisher: publisher,
		bus:       bus,
		label:     exportLabel,
	}
}

// SetOnChange installs a callback invoked after every committed mutation,
// before the change message is published.
func (s *PlannerService) SetOnChange(fn func(monthKey string)) {
	s.onChange = fn
}

func (s *PlannerService) MonthData(monthKey string) core.MonthData {
	return s.planner.GetMonthData(monthKey)
}

func (s *PlannerService) Months() core.MonthlyData {
	return s.planner.Months()
}

func (s *PlannerService) Categories() []core.Category {
	return s.planner.ListCategories()
}

func (s *PlannerService) SetIncome(ctx context.Context, monthKey, raw string) (core.MonthData, error) {
	m, err := s.planner.SetIncome(ctx, monthKey, raw)
	if err != nil {
		return core.MonthData{}, err
	}
	s.changed(ctx, monthKey)
	return m, nil
}

func (s *PlannerService) AddAllocation(ctx context.Context, monthKey string) (core.Allocation, error) {
	a, err := s.planner.AddAllocation(ctx, monthKey)
	if err != nil {
		return core.Allocation{}, err
	}
	s.changed(ctx, monthKey)
	return a, nil
}

func (s *PlannerService) UpdateAllocationField(ctx context.Context, monthKey, allocID, field, value string) (core.MonthData, error) {
	m, err := s.planner.UpdateAllocationField(ctx, monthKey, allocID, field, value)
	if err != nil {
		return core.MonthData{}, err
	}
	s.changed(ctx, monthKey)
	return m, nil
}

func (s *PlannerService) RemoveAllocation(ctx context.Context, monthKey, allocID string) (core.MonthData, error) {
	m, err := s.planner.RemoveAllocation(ctx, monthKey, allocID)
	if err != nil {
		return core.MonthData{}, err
	}
	s.changed(ctx, monthKey)
	return m, nil
}

func (s *PlannerService) ApplyTemplate(ctx context.Context, monthKey, name string) (core.MonthData, error) {
	m, err := s.planner.ApplyTemplate(ctx, monthKey, name)
	if err != nil {
		if errors.Is(err, core.ErrUnknownTemplate) {
			s.notice(notify.LevelError, "未知的预算模板", name)
		}
		return core.MonthData{}, err
	}
	s.notice(notify.LevelSuccess, "模板已应用", name)
	s.changed(ctx, monthKey)
	return m, nil
}

func (s *PlannerService) SetManualGroup(ctx context.Context, monthKey, allocID, groupID string) (core.MonthData, error) {
	m, err := s.planner.SetManualGroup(ctx, monthKey, allocID, groupID)
	if err != nil {
		return core.MonthData{}, err
	}
	s.changed(ctx, monthKey)
	return m, nil
}

func (s *PlannerService) AddCategory(ctx context.Context, name, color string) (core.Category, bool, error) {
	c, ok, err := s.planner.AddCategory(ctx, name, color)
	if err != nil || !ok {
		return c, ok, err
	}
	s.changed(ctx, "")
	return c, true, nil
}

func (s *PlannerService) RemoveCategory(ctx context.Context, id string) error {
	if err := s.planner.RemoveCategory(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "")
	return nil
}

func (s *PlannerService) UpdateCategoryField(ctx context.Context, id, field, value string) error {
	if err := s.planner.UpdateCategoryField(ctx, id, field, value); err != nil {
		return err
	}
	s.changed(ctx, "")
	return nil
}

// Export serializes the full state and returns the document together with its
// suggested filename.
func (s *PlannerService) Export(now time.Time) ([]byte, string, error) {
	data, err := transfer.Export(s.planner.Months(), s.planner.ListCategories(), now)
	if err != nil {
		return nil, "", err
	}
	return data, transfer.Filename(s.label, now), nil
}

// Import replaces the full state with the contents of an exported document.
// A malformed document leaves current state untouched.
func (s *PlannerService) Import(ctx context.Context, data []byte) error {
	months, categories, err := transfer.Import(data)
	if err != nil {
		s.notice(notify.LevelError, "导入失败", err.Error())
		return err
	}
	if err := s.planner.ReplaceAll(ctx, months, categories); err != nil {
		s.notice(notify.LevelError, "导入失败", err.Error())
		return fmt.Errorf("replace state: %w", err)
	}
	s.notice(notify.LevelSuccess, "数据导入成功", "")
	for key := range months {
		s.changed(ctx, key)
	}
	if len(months) == 0 {
		s.changed(ctx, "")
	}
	return nil
}

// Report accessors. Computation lives in core; the service just binds the
// current state.

func (s *PlannerService) MonthBalance(monthKey string) core.MonthBalance {
	m := s.planner.GetMonthData(monthKey)
	return core.MonthBalance{Month: monthKey, Balance: core.Balance(m)}
}

func (s *PlannerService) CategoryBreakdown(monthKey string, includeUnknown bool) []core.CategoryValue {
	m := s.planner.GetMonthData(monthKey)
	return core.CategoryBreakdown(m, s.planner.ListCategories(), includeUnknown)
}

func (s *PlannerService) GroupExpenses(monthKey string) []core.GroupExpense {
	m := s.planner.GetMonthData(monthKey)
	return core.GroupExpenses(m, m.ActiveTemplate)
}

func (s *PlannerService) RecentBalances(n int) []core.MonthBalance {
	return core.RecentBalances(s.planner.Months(), n)
}

func (s *PlannerService) TotalBalance() float64 {
	return core.TotalBalance(s.planner.Months())
}

func (s *PlannerService) Revision(monthKey string) int64 {
	return s.planner.Revision(monthKey)
}

func (s *PlannerService) changed(ctx context.Context, monthKey string) {
	if s.onChange != nil {
		s.onChange(monthKey)
	}
	if s.publisher == nil || monthKey == "" {
		return
	}
	revision := s.planner.Revision(monthKey)
	if err := s.publisher.PublishBudgetChanged(ctx, monthKey, revision); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"month_key", monthKey,
			"revision", revision,
			"error", err)
	}
}

func (s *PlannerService) notice(level notify.Level, title, detail string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(notify.Notice{Level: level, Title: title, Detail: detail})
}
