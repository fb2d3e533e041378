package core

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
)

type (
	// Category is a user-visible tag used to classify allocations.
	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	// Allocation assigns part of a month's income to a purpose. Category and
	// ManualGroup are optional references; a dangling Category id is tolerated
	// and rendered as uncategorized.
	Allocation struct {
		ID          string  `json:"id"`
		Purpose     string  `json:"purpose"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category,omitempty"`
		Note        string  `json:"note,omitempty"`
		ManualGroup string  `json:"manualGroup,omitempty"`
	}

	// MonthData is the complete plan for one calendar month.
	MonthData struct {
		Income         float64      `json:"income"`
		Allocations    []Allocation `json:"allocations"`
		ActiveTemplate string       `json:"activeTemplate,omitempty"`
	}

	// MonthlyData maps "yyyy-MM" month keys to month plans. It is the root
	// persisted aggregate and is serialized in full on every mutation.
	MonthlyData map[string]MonthData
)

var (
	ErrUnknownTemplate    = errors.New("unknown template")
	ErrInvalidMonthKey    = errors.New("invalid month key")
	ErrEmptyName          = errors.New("empty name")
	ErrUnknownField       = errors.New("unknown field")
	ErrAllocationNotFound = errors.New("allocation not found")
	ErrCategoryNotFound   = errors.New("category not found")
)

// DefaultCategories is the seeded registry. The ids are stable and referenced
// by the template catalog; names and colors are user-editable copies.
var DefaultCategories = []Category{
	{ID: "housing", Name: "住房", Color: "#4f46e5"},
	{ID: "food", Name: "餐饮", Color: "#16a34a"},
	{ID: "transport", Name: "交通", Color: "#facc15"},
	{ID: "entertainment", Name: "娱乐", Color: "#f97316"},
	{ID: "shopping", Name: "购物", Color: "#3b82f6"},
	{ID: "medical", Name: "医疗", Color: "#06b6d4"},
	{ID: "education", Name: "教育", Color: "#eab308"},
	{ID: "saving", Name: "储蓄", Color: "#6366f1"},
	{ID: "investment", Name: "投资", Color: "#14b8a6"},
	{ID: "other", Name: "其他", Color: "#64748b"},
}

var monthKeyRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthKeyOf returns the "yyyy-MM" key for the month containing t.
func MonthKeyOf(t time.Time) string {
	return t.Format("2006-01")
}

// ValidMonthKey reports whether s is a well-formed "yyyy-MM" key.
func ValidMonthKey(s string) bool {
	return monthKeyRe.MatchString(s)
}

// EmptyMonth returns the zero-value plan created lazily on first access.
func EmptyMonth() MonthData {
	return MonthData{Income: 0, Allocations: []Allocation{}}
}

// Clone returns a deep copy so callers can mutate without aliasing the stored
// record (replace-on-write contract).
func (m MonthData) Clone() MonthData {
	out := MonthData{
		Income:         m.Income,
		ActiveTemplate: m.ActiveTemplate,
		Allocations:    make([]Allocation, len(m.Allocations)),
	}
	copy(out.Allocations, m.Allocations)
	return out
}

// Clone deep-copies the whole monthly map.
func (d MonthlyData) Clone() MonthlyData {
	out := make(MonthlyData, len(d))
	for k, v := range d {
		out[k] = v.Clone()
	}
	return out
}

// ParseIncome converts free-form currency input to a non-negative amount.
// Every non-digit rune is discarded, not rejected: "1,2a3" parses as 123.
// Empty or unparseable input yields 0.
func ParseIncome(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0
	}
	var v float64
	for _, r := range digits {
		v = v*10 + float64(r-'0')
	}
	return v
}

// ClampAmount coerces out-of-range numeric input to zero. Bad input never
// surfaces as an error from a form-driven tool.
func ClampAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
