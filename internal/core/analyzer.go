package core

import "sort"

// Derived aggregates over month plans. Everything here is pure and recomputed
// on every read; callers that need cheaper reads cache at a higher layer.

// CategoryValue is one slice of the per-category chart data.
type CategoryValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// GroupExpense is a CategoryGroup joined with its actual spend for a month.
type GroupExpense struct {
	CategoryGroup
	TotalExpense     float64 `json:"totalExpense"`
	ActualPercentage float64 `json:"actualPercentage"`
	IsExceeding      bool    `json:"isExceeding"`
}

// MonthBalance pairs a month key with its balance.
type MonthBalance struct {
	Month   string  `json:"month"`
	Balance float64 `json:"balance"`
}

// UncategorizedName labels breakdown entries whose category id no longer
// resolves against the registry.
const UncategorizedName = "未分类"

// TotalAllocated sums the amounts of every allocation in the month.
func TotalAllocated(m MonthData) float64 {
	var sum float64
	for _, a := range m.Allocations {
		sum += a.Amount
	}
	return sum
}

// Balance is income minus total allocated.
func Balance(m MonthData) float64 {
	return m.Income - TotalAllocated(m)
}

// TotalBalance sums the balances of every stored month.
func TotalBalance(d MonthlyData) float64 {
	var sum float64
	for _, m := range d {
		sum += Balance(m)
	}
	return sum
}

// CategoryBreakdown groups allocation amounts by category, joined against the
// registry for display name and color. Zero-value entries are omitted. When
// includeUnknown is set, amounts referencing a deleted category are bucketed
// under UncategorizedName instead of being dropped.
func CategoryBreakdown(m MonthData, categories []Category, includeUnknown bool) []CategoryValue {
	totals := make(map[string]float64)
	for _, a := range m.Allocations {
		if a.Category != "" {
			totals[a.Category] += a.Amount
		}
	}

	out := make([]CategoryValue, 0, len(categories))
	for _, c := range categories {
		if v := totals[c.ID]; v > 0 {
			out = append(out, CategoryValue{Name: c.Name, Value: v, Color: c.Color})
		}
		delete(totals, c.ID)
	}

	if includeUnknown {
		var orphaned float64
		for _, v := range totals {
			orphaned += v
		}
		if orphaned > 0 {
			out = append(out, CategoryValue{Name: UncategorizedName, Value: orphaned, Color: "#64748b"})
		}
	}
	return out
}

// GroupExpenses computes per-group actual spend, percentage of income and
// over-budget status for the month's active template. Returns an empty slice
// when no template is active or the template defines no groups.
func GroupExpenses(m MonthData, templateName string) []GroupExpense {
	groups := TemplateGroups(templateName)
	if len(groups) == 0 {
		return []GroupExpense{}
	}

	out := make([]GroupExpense, 0, len(groups))
	for _, g := range groups {
		var total float64
		for _, a := range m.Allocations {
			if resolved := ResolveGroup(a, templateName); resolved != nil && resolved.ID == g.ID {
				total += a.Amount
			}
		}
		pct := 0.0
		if m.Income > 0 {
			pct = total / m.Income * 100
		}
		out = append(out, GroupExpense{
			CategoryGroup:    g,
			TotalExpense:     total,
			ActualPercentage: pct,
			IsExceeding:      pct > g.RecommendedPercentage,
		})
	}
	return out
}

// RecentBalances returns the last n monthly balances sorted ascending by
// month key (lexicographic order matches chronological for "yyyy-MM").
func RecentBalances(d MonthlyData, n int) []MonthBalance {
	out := make([]MonthBalance, 0, len(d))
	for k, m := range d {
		out = append(out, MonthBalance{Month: k, Balance: Balance(m)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
