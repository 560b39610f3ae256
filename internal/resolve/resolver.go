package resolve

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"techmap/internal/association"
	"techmap/internal/common"
	"techmap/internal/criteria"
)

// Resolver inverts specifications into an Index for one criteria set.
// A Resolver holds no state between calls; resolve each guideline version
// with its own criteria set.
type Resolver struct {
	criteria criteria.Set
	config   Config
	logger   *slog.Logger
	singular map[string]struct{}
}

// NewResolver creates a new Resolver over the active criteria set.
func NewResolver(set criteria.Set, config Config) *Resolver {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	singular := make(map[string]struct{}, len(config.SingularQuantities))
	for _, q := range config.SingularQuantities {
		singular[normalizeQuantity(q)] = struct{}{}
	}

	return &Resolver{
		criteria: set,
		config:   config,
		logger:   logger.With(slog.String("component", "resolve")),
		singular: singular,
	}
}

// Resolve inverts specs with the default configuration.
func Resolve(specs association.Specifications, set criteria.Set) Index {
	return NewResolver(set, DefaultConfig()).Resolve(specs)
}

// Resolve walks every applicable specification and returns the finalized index.
// Specifications whose criterion is absent from the set, or is not a success
// criterion, contribute nothing.
func (r *Resolver) Resolve(specs association.Specifications) Index {
	acc := make(Index)

	for _, c := range r.applicable(specs) {
		r.resolveCriterion(specs[c.ID], c, acc)
	}

	return Finalize(acc)
}

// ResolveRaw validates untyped specifications and resolves them. Every
// specification is validated, applicable or not; any schema violation
// fails the whole resolution.
func (r *Resolver) ResolveRaw(raw map[string]any) (Index, error) {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	specs := make(association.Specifications, len(raw))

	var errs []error

	for _, id := range ids {
		spec, err := association.Validate(id, raw[id])
		if err != nil {
			errs = append(errs, err)
			continue
		}

		specs[id] = spec
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return r.Resolve(specs), nil
}

// applicable returns the success criteria with a specification, in number order.
func (r *Resolver) applicable(specs association.Specifications) []criteria.Criterion {
	ids := make([]string, 0, len(specs))
	for id := range specs {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	active := make(criteria.Set, len(ids))

	for _, id := range ids {
		if specs[id] == nil {
			continue
		}

		c, ok := r.criteria[id]
		if !ok {
			r.logger.Debug("criterion not in active set", slog.String("criterion", id))
			continue
		}

		if !c.IsSuccessCriterion() {
			r.logger.Debug("not a success criterion",
				slog.String("criterion", id),
				slog.String("type", string(c.Type)))

			continue
		}

		active[id] = c
	}

	return active.Sorted()
}

func (r *Resolver) resolveCriterion(spec *association.Specification, c criteria.Criterion, acc Index) {
	for _, t := range association.Types {
		if t == association.Sufficient && spec.HasSections() {
			// Section and group titles are presentation only.
			for _, sec := range spec.SufficientSections {
				r.traverse(sec.Techniques, c, t, nil, acc)

				for _, g := range sec.Groups {
					r.traverse(g.Techniques, c, t, nil, acc)
				}
			}

			continue
		}

		r.traverse(spec.List(t), c, t, nil, acc)
	}
}

// traverse emits records for list and recurses into using lists with the
// declaring entry as the new parent.
func (r *Resolver) traverse(
	list []association.Reference,
	c criteria.Criterion,
	t association.Type,
	parent *association.Reference,
	acc Index,
) {
	parentIDs := usageParentIDs(parent)

	description := ""
	if len(parentIDs) == 0 {
		description = r.DescribeParent(parent)
	}

	record := func(hasChildren bool, with []string) Record {
		return Record{
			Criterion:              c,
			Type:                   t,
			HasUsageChildren:       hasChildren,
			UsageParentIDs:         common.Clone(parentIDs),
			UsageParentDescription: description,
			With:                   with,
		}
	}

	for _, raw := range list {
		entry := association.Normalize(raw)

		switch {
		case entry.IsConjunction():
			ids := memberIDs(entry)
			for _, id := range ids {
				acc[id] = append(acc[id], record(entry.DeclaresUsing(), common.Without(ids, id)))
			}
		case entry.HasID():
			acc[entry.ID] = append(acc[entry.ID], record(entry.DeclaresUsing(), []string{}))
		default:
			r.logger.Debug("title-only reference not indexed",
				slog.String("criterion", c.ID),
				slog.String("title", entry.Title))
		}

		if entry.DeclaresUsing() {
			r.traverse(entry.Using, c, t, &entry, acc)
		}
	}
}

// memberIDs returns the ids of a conjunction's members, skipping title-only members.
func memberIDs(conj association.Reference) []string {
	ids := make([]string, 0, len(conj.And))

	for _, m := range association.NormalizeAll(conj.And) {
		if m.HasID() {
			ids = append(ids, m.ID)
		}
	}

	return ids
}

// usageParentIDs returns the ids by which parent can be cited: its
// conjunction members, or its own id.
func usageParentIDs(parent *association.Reference) []string {
	switch {
	case parent == nil:
		return []string{}
	case parent.IsConjunction():
		return memberIDs(*parent)
	case parent.HasID():
		return []string{parent.ID}
	default:
		return []string{}
	}
}

func normalizeQuantity(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
