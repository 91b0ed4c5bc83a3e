// Package envdata holds the environmental-impact catalog: a read-only
// mapping from normalized item key to impact facts, loaded once at startup.
package envdata

import (
	"strings"

	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

// Source loads environmental facts from some backing store.
type Source interface {
	Load() (map[string]model.EnvironmentalFact, error)
}

// Catalog is an immutable lookup table of environmental facts.
// Safe for concurrent use after construction.
type Catalog struct {
	facts map[string]model.EnvironmentalFact
}

// New builds a Catalog from the given source. A nil source or a load
// failure falls back to the built-in default table; the failure is logged,
// never fatal.
func New(src Source, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if src == nil {
		return &Catalog{facts: Default()}
	}
	facts, err := src.Load()
	if err != nil {
		logger.Warn("environmental catalog load failed, using built-in defaults", zap.Error(err))
		return &Catalog{facts: Default()}
	}
	normalized := make(map[string]model.EnvironmentalFact, len(facts))
	for k, v := range facts {
		normalized[NormalizeKey(k)] = v
	}
	return &Catalog{facts: normalized}
}

// Lookup returns the fact for the given normalized key. The second return
// is false when the item is unknown; absence is not an error.
func (c *Catalog) Lookup(key string) (model.EnvironmentalFact, bool) {
	f, ok := c.facts[NormalizeKey(key)]
	return f, ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.facts)
}

// NormalizeKey converts a display label to a catalog lookup key:
// lower-case, spaces replaced with underscores.
func NormalizeKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "_")
}
