package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"budgetplan/internal/core"
)

type fakeKV struct {
	data    map[string]string
	failSet bool
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]string{}} }

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	if f.failSet {
		return errors.New("kv write failed")
	}
	f.data[key] = value
	return nil
}

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func newTestPlanner(t *testing.T) (*Planner, *fakeKV) {
	t.Helper()
	kv := newFakeKV()
	p, err := New(context.Background(), kv, &seqIDs{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, kv
}

func TestGetMonthDataDefault(t *testing.T) {
	p, _ := newTestPlanner(t)
	m := p.GetMonthData("2025-06")
	if m.Income != 0 || len(m.Allocations) != 0 || m.ActiveTemplate != "" {
		t.Fatalf("expected zero default, got %+v", m)
	}
}

func TestSetIncomeStripsNonDigits(t *testing.T) {
	p, _ := newTestPlanner(t)
	m, err := p.SetIncome(context.Background(), "2025-06", "1,2a3")
	if err != nil {
		t.Fatalf("SetIncome: %v", err)
	}
	if m.Income != 123 {
		t.Fatalf("income = %v, want 123", m.Income)
	}
}

func TestSetIncomeRejectsBadMonthKey(t *testing.T) {
	p, _ := newTestPlanner(t)
	if _, err := p.SetIncome(context.Background(), "junk", "100"); !errors.Is(err, core.ErrInvalidMonthKey) {
		t.Fatalf("expected ErrInvalidMonthKey, got %v", err)
	}
}

func TestAllocationLifecycle(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	const key = "2025-06"

	alloc, err := p.AddAllocation(ctx, key)
	if err != nil {
		t.Fatalf("AddAllocation: %v", err)
	}
	if alloc.ID == "" || alloc.Purpose != "" || alloc.Amount != 0 {
		t.Fatalf("new row should be empty with generated id, got %+v", alloc)
	}

	if _, err := p.UpdateAllocationField(ctx, key, alloc.ID, FieldAmount, "500"); err != nil {
		t.Fatalf("update amount: %v", err)
	}
	if _, err := p.SetIncome(ctx, key, "1000"); err != nil {
		t.Fatalf("set income: %v", err)
	}

	m := p.GetMonthData(key)
	if got := core.Balance(m); got != 500 {
		t.Fatalf("balance = %v, want 500", got)
	}

	if _, err := p.RemoveAllocation(ctx, key, alloc.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// second removal of the same id is a no-op, not an error
	if _, err := p.RemoveAllocation(ctx, key, alloc.ID); err != nil {
		t.Fatalf("idempotent remove: %v", err)
	}
	if got := len(p.GetMonthData(key).Allocations); got != 0 {
		t.Fatalf("expected 0 allocations, got %d", got)
	}
}

func TestUpdateAllocationFieldUnknownID(t *testing.T) {
	p, _ := newTestPlanner(t)
	if _, err := p.UpdateAllocationField(context.Background(), "2025-06", "ghost", FieldPurpose, "x"); err != nil {
		t.Fatalf("unknown allocation id must be a no-op, got %v", err)
	}
}

func TestUpdateAllocationFieldRejectsUnknownField(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	alloc, _ := p.AddAllocation(ctx, "2025-06")
	if _, err := p.UpdateAllocationField(ctx, "2025-06", alloc.ID, "bogus", "x"); !errors.Is(err, core.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestUpdateAllocationAmountClampsNegative(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	alloc, _ := p.AddAllocation(ctx, "2025-06")
	m, err := p.UpdateAllocationField(ctx, "2025-06", alloc.ID, FieldAmount, "-42")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if m.Allocations[0].Amount != 0 {
		t.Fatalf("negative amount must clamp to 0, got %v", m.Allocations[0].Amount)
	}
}

func TestApplyTemplate(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	const key = "2025-06"

	if _, err := p.SetIncome(ctx, key, "3000"); err != nil {
		t.Fatalf("set income: %v", err)
	}
	m, err := p.ApplyTemplate(ctx, key, "50/30/20法则")
	if err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	if m.ActiveTemplate != "50/30/20法则" {
		t.Fatalf("active template = %q", m.ActiveTemplate)
	}
	if got := core.TotalAllocated(m); got != 3000 {
		t.Fatalf("total allocated = %v, want 3000", got)
	}
	if got := core.Balance(m); got != 0 {
		t.Fatalf("balance = %v, want 0", got)
	}

	amounts := []float64{1500, 900, 600}
	for i, a := range m.Allocations {
		if a.Amount != amounts[i] {
			t.Fatalf("row %d amount = %v, want %v", i, a.Amount, amounts[i])
		}
	}
}

func TestApplyTemplateReplacesManualEdits(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	const key = "2025-06"

	alloc, _ := p.AddAllocation(ctx, key)
	_, _ = p.UpdateAllocationField(ctx, key, alloc.ID, FieldPurpose, "hand-edited")

	m, err := p.ApplyTemplate(ctx, key, "零基预算法")
	if err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	for _, a := range m.Allocations {
		if a.ID == alloc.ID {
			t.Fatal("template application must discard existing rows")
		}
	}
}

func TestApplyTemplateUnknown(t *testing.T) {
	p, _ := newTestPlanner(t)
	_, err := p.ApplyTemplate(context.Background(), "2025-06", "no-such-plan")
	if !errors.Is(err, core.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	if got := len(p.GetMonthData("2025-06").Allocations); got != 0 {
		t.Fatalf("unknown template must not touch data, got %d rows", got)
	}
}

func TestSetManualGroupAndAutoSentinel(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	const key = "2025-06"

	alloc, _ := p.AddAllocation(ctx, key)
	m, err := p.SetManualGroup(ctx, key, alloc.ID, "financial")
	if err != nil {
		t.Fatalf("SetManualGroup: %v", err)
	}
	if m.Allocations[0].ManualGroup != "financial" {
		t.Fatalf("manual group = %q", m.Allocations[0].ManualGroup)
	}

	m, err = p.SetManualGroup(ctx, key, alloc.ID, core.ManualGroupAuto)
	if err != nil {
		t.Fatalf("SetManualGroup auto: %v", err)
	}
	if m.Allocations[0].ManualGroup != "" {
		t.Fatalf("auto sentinel must clear the pin, got %q", m.Allocations[0].ManualGroup)
	}
}

func TestCategoryRegistry(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()

	if got := len(p.ListCategories()); got != len(core.DefaultCategories) {
		t.Fatalf("expected seeded registry, got %d entries", got)
	}

	cat, ok, err := p.AddCategory(ctx, "宠物", "#ff0000")
	if err != nil || !ok {
		t.Fatalf("AddCategory: ok=%v err=%v", ok, err)
	}
	if cat.ID == "" || cat.Name != "宠物" {
		t.Fatalf("unexpected category %+v", cat)
	}

	// whitespace name is silently ignored
	if _, ok, err := p.AddCategory(ctx, "   ", "#fff"); err != nil || ok {
		t.Fatalf("blank name must be a no-op, ok=%v err=%v", ok, err)
	}

	if err := p.UpdateCategoryField(ctx, cat.ID, FieldColor, "#00ff00"); err != nil {
		t.Fatalf("UpdateCategoryField: %v", err)
	}
	cats := p.ListCategories()
	if cats[len(cats)-1].Color != "#00ff00" {
		t.Fatalf("color not updated: %+v", cats[len(cats)-1])
	}

	if err := p.RemoveCategory(ctx, cat.ID); err != nil {
		t.Fatalf("RemoveCategory: %v", err)
	}
	if got := len(p.ListCategories()); got != len(core.DefaultCategories) {
		t.Fatalf("expected registry back to defaults, got %d", got)
	}
}

func TestRemoveCategoryKeepsDanglingReferences(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()
	const key = "2025-06"

	cat, _, _ := p.AddCategory(ctx, "临时", "#123456")
	alloc, _ := p.AddAllocation(ctx, key)
	_, _ = p.UpdateAllocationField(ctx, key, alloc.ID, FieldCategory, cat.ID)

	if err := p.RemoveCategory(ctx, cat.ID); err != nil {
		t.Fatalf("RemoveCategory: %v", err)
	}
	m := p.GetMonthData(key)
	if m.Allocations[0].Category != cat.ID {
		t.Fatalf("allocation must keep its dangling category id, got %q", m.Allocations[0].Category)
	}
}

func TestMutationPersistsAndReloads(t *testing.T) {
	kv := newFakeKV()
	ctx := context.Background()

	p, err := New(ctx, kv, &seqIDs{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.SetIncome(ctx, "2025-06", "1000"); err != nil {
		t.Fatalf("SetIncome: %v", err)
	}
	if _, _, err := p.AddCategory(ctx, "旅行", "#abcdef"); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	reloaded, err := New(ctx, kv, &seqIDs{})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.GetMonthData("2025-06").Income; got != 1000 {
		t.Fatalf("income after reload = %v, want 1000", got)
	}
	cats := reloaded.ListCategories()
	if cats[len(cats)-1].Name != "旅行" {
		t.Fatalf("category missing after reload: %+v", cats)
	}
}

func TestFailedPersistLeavesStateUntouched(t *testing.T) {
	p, kv := newTestPlanner(t)
	ctx := context.Background()

	if _, err := p.SetIncome(ctx, "2025-06", "1000"); err != nil {
		t.Fatalf("SetIncome: %v", err)
	}
	kv.failSet = true
	if _, err := p.SetIncome(ctx, "2025-06", "9999"); err == nil {
		t.Fatal("expected persist error")
	}
	if got := p.GetMonthData("2025-06").Income; got != 1000 {
		t.Fatalf("failed write must not commit, income = %v", got)
	}
}

func TestLegacyCategoryKeyMigration(t *testing.T) {
	kv := newFakeKV()
	kv.data[LegacyKeyCategories] = `[{"id":"housing","name":"房","color":"#111111"}]`

	p, err := New(context.Background(), kv, &seqIDs{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cats := p.ListCategories()
	if len(cats) != 1 || cats[0].Name != "房" {
		t.Fatalf("legacy key not read: %+v", cats)
	}
}

func TestCanonicalKeyWinsOverLegacy(t *testing.T) {
	kv := newFakeKV()
	kv.data[KeyCategories] = `[{"id":"a","name":"canonical","color":"#1"}]`
	kv.data[LegacyKeyCategories] = `[{"id":"b","name":"legacy","color":"#2"}]`

	p, err := New(context.Background(), kv, &seqIDs{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cats := p.ListCategories()
	if len(cats) != 1 || cats[0].Name != "canonical" {
		t.Fatalf("canonical key must win: %+v", cats)
	}
}

func TestMalformedStateFallsBackToDefaults(t *testing.T) {
	kv := newFakeKV()
	kv.data[KeyMonthlyData] = `{broken json`
	kv.data[KeyCategories] = `[{"id":`

	p, err := New(context.Background(), kv, &seqIDs{})
	if err != nil {
		t.Fatalf("startup must survive corrupt state: %v", err)
	}
	if got := len(p.Months()); got != 0 {
		t.Fatalf("expected empty months, got %d", got)
	}
	if got := len(p.ListCategories()); got != len(core.DefaultCategories) {
		t.Fatalf("expected default categories, got %d", got)
	}
}

func TestRevisionIncrements(t *testing.T) {
	p, _ := newTestPlanner(t)
	ctx := context.Background()

	if got := p.Revision("2025-06"); got != 0 {
		t.Fatalf("initial revision = %d", got)
	}
	_, _ = p.SetIncome(ctx, "2025-06", "100")
	_, _ = p.AddAllocation(ctx, "2025-06")
	if got := p.Revision("2025-06"); got != 2 {
		t.Fatalf("revision = %d, want 2", got)
	}
}
