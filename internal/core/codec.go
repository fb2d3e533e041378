package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Persisted aggregates are plain JSON documents. Decoding is strict: unknown
// fields or malformed month keys reject the whole document with a typed error
// instead of silently yielding partial state.

var ErrCorruptState = errors.New("corrupt persisted state")

// DecodeMonthlyData parses the root monthly map. Nil allocation lists are
// normalized to empty slices and out-of-range amounts are clamped to zero.
func DecodeMonthlyData(raw []byte) (MonthlyData, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var months MonthlyData
	if err := dec.Decode(&months); err != nil {
		return nil, fmt.Errorf("%w: monthly data: %v", ErrCorruptState, err)
	}

	for key, m := range months {
		if !ValidMonthKey(key) {
			return nil, fmt.Errorf("%w: month key %q", ErrCorruptState, key)
		}
		if m.Allocations == nil {
			m.Allocations = []Allocation{}
		}
		m.Income = ClampAmount(m.Income)
		for i := range m.Allocations {
			m.Allocations[i].Amount = ClampAmount(m.Allocations[i].Amount)
		}
		months[key] = m
	}
	return months, nil
}

// DecodeCategories parses the category registry, rejecting empty or duplicate
// ids.
func DecodeCategories(raw []byte) ([]Category, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var cats []Category
	if err := dec.Decode(&cats); err != nil {
		return nil, fmt.Errorf("%w: categories: %v", ErrCorruptState, err)
	}

	seen := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: category with empty id", ErrCorruptState)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate category id %q", ErrCorruptState, c.ID)
		}
		seen[c.ID] = true
	}
	return cats, nil
}
