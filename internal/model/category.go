package model

import "strings"

// Canonical waste categories. "trash" survives in older clients and model
// label maps as an alias for landfill; CanonicalCategory folds it in.
const (
	CategoryRecycle   = "recycle"
	CategoryCompost   = "compost"
	CategoryLandfill  = "landfill"
	CategoryHazardous = "hazardous"
)

// CanonicalCategory lower-cases c and maps the legacy "trash" alias to
// "landfill". Unknown categories pass through lower-cased; callers treat
// them with default thresholds and fallback guidance.
func CanonicalCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "trash" {
		return CategoryLandfill
	}
	return c
}

// KnownCategories returns the canonical category set, in a stable order.
func KnownCategories() []string {
	return []string{CategoryRecycle, CategoryCompost, CategoryLandfill, CategoryHazardous}
}
