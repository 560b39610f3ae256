package techniques

import (
	"fmt"
	"slices"
	"strings"

	"techmap/internal/diagnostic"
	"techmap/internal/match"
	"techmap/internal/resolve"
)

// Diagnostic codes produced by Check.
const (
	CodePhantom = "phantom_technique"
	CodeUnused  = "unused_technique"
)

// Phantoms returns the index keys absent from the registry, in lexical order.
func Phantoms(index resolve.Index, registry Registry) []string {
	var out []string

	for _, id := range index.Techniques() {
		if !registry.Has(id) {
			out = append(out, id)
		}
	}

	return out
}

// Check compares a resolved index with the registry. Phantom ids (indexed
// but unregistered, usually a typo in a specification) are warnings and
// carry a suggestion when one registered id is a clear match. Registered
// techniques no criterion refers to are reported as info.
func Check(index resolve.Index, registry Registry) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}
	known := registry.IDs()

	for _, id := range Phantoms(index, registry) {
		msg := "technique is not in the registry"
		if hint := match.Suggest(id, known); hint != "" {
			msg = fmt.Sprintf("%s (did you mean %q?)", msg, hint)
		}

		diags.AddWarning(CodePhantom, msg, id, criteriaOf(index[id]))
	}

	for _, id := range known {
		if _, used := index[id]; !used {
			diags.AddInfo(CodeUnused, "no criterion refers to this technique", id, "")
		}
	}

	diags.Sort()

	return diags
}

// criteriaOf lists the criteria a phantom id was found under.
func criteriaOf(records []resolve.Record) string {
	var ids []string

	for _, rec := range records {
		if !slices.Contains(ids, rec.Criterion.ID) {
			ids = append(ids, rec.Criterion.ID)
		}
	}

	return strings.Join(ids, ",")
}
