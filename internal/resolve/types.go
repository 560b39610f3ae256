package resolve

import (
	"log/slog"
	"sort"

	"techmap/internal/association"
	"techmap/internal/criteria"
)

// Record is one association between a technique and a criterion.
type Record struct {
	Criterion criteria.Criterion `yaml:"criterion" json:"criterion"`
	Type      association.Type   `yaml:"type" json:"type"`
	// HasUsageChildren is true when the entry declares a using list.
	HasUsageChildren bool `yaml:"hasUsageChildren" json:"hasUsageChildren"`
	// UsageParentIDs are the ids of the entry's usage parent (several for a conjunction parent).
	UsageParentIDs []string `yaml:"usageParentIds" json:"usageParentIds"`
	// UsageParentDescription is set only when UsageParentIDs is empty.
	UsageParentDescription string `yaml:"usageParentDescription,omitempty" json:"usageParentDescription,omitempty"`
	// With lists the other ids of the same conjunction.
	With []string `yaml:"with" json:"with"`
}

// Index maps technique ids to their ordered, deduplicated records.
// An absent key and an empty list mean the same thing.
type Index map[string][]Record

// Techniques returns the indexed technique ids in lexical order.
func (idx Index) Techniques() []string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Config holds configuration for the resolution process.
type Config struct {
	// Logger receives debug output about skipped criteria. Nil means slog.Default().
	Logger *slog.Logger
	// SingularQuantities are the usingQuantity words phrased in the singular.
	SingularQuantities []string
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() Config {
	return Config{
		SingularQuantities: []string{"one", "any"},
	}
}
