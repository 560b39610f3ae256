package resolve

import (
	"sort"
	"strconv"
	"strings"

	"techmap/internal/criteria"
)

// Finalize removes structurally duplicate records per technique, orders the
// rest by criterion number (numerically, per segment) and drops techniques
// left without records. The input is not modified.
func Finalize(index Index) Index {
	out := make(Index, len(index))

	for id, records := range index {
		unique := dedupe(records)
		if len(unique) == 0 {
			continue
		}

		sort.SliceStable(unique, func(i, j int) bool {
			return criteria.Compare(unique[i].Criterion.Number, unique[j].Criterion.Number) < 0
		})

		out[id] = unique
	}

	return out
}

// dedupe keeps the first of every group of structurally equal records.
func dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))

	for _, rec := range records {
		key := recordKey(rec)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, rec)
	}

	return out
}

// recordKey encodes every field of rec; equal keys mean equal records.
func recordKey(rec Record) string {
	const (
		fieldSep = "\x1f"
		listSep  = "\x1e"
	)

	c := rec.Criterion

	return strings.Join([]string{
		c.ID,
		c.Name,
		c.Number.String(),
		string(c.Type),
		strings.Join(c.Versions, listSep),
		rec.Type.Key(),
		strconv.FormatBool(rec.HasUsageChildren),
		strings.Join(rec.UsageParentIDs, listSep),
		rec.UsageParentDescription,
		strings.Join(rec.With, listSep),
	}, fieldSep)
}
