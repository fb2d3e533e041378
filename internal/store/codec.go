package store

import (
	"encoding/json"
	"fmt"
)

// Storage keys for the two persisted aggregates.
const (
	KeyMonthlyData = "monthlyData"
	KeyCategories  = "userCategories"
	// older builds persisted the registry under this key; it is read once
	// when the canonical key is absent and never written back
	LegacyKeyCategories = "categories"
)

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	return string(b), nil
}
