package association

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"techmap/internal/match"
)

type fieldSet map[string]struct{}

func newFieldSet(names ...string) fieldSet {
	fs := make(fieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}

	return fs
}

func (fs fieldSet) with(names ...string) fieldSet {
	out := make(fieldSet, len(fs)+len(names))
	for n := range fs {
		out[n] = struct{}{}
	}

	for _, n := range names {
		out[n] = struct{}{}
	}

	return out
}

func (fs fieldSet) names() []string {
	out := make([]string, 0, len(fs))
	for n := range fs {
		out = append(out, n)
	}

	return out
}

var (
	usingKeys = []string{"using", "skipUsingText", "usingConjunction", "usingPrefix", "usingQuantity"}

	documentFields    = newFieldSet("intro", "note", "sufficient", "advisory", "failure")
	simpleFields      = newFieldSet("id", "title")
	extendedFields    = simpleFields.with(usingKeys...)
	conjunctionFields = newFieldSet("and", "andConjunction").with(usingKeys...)
	sectionFields     = newFieldSet("title", "techniques", "groups", "note")
	groupFields       = newFieldSet("id", "title", "techniques")
)

// validator accumulates schema errors for one criterion document.
type validator struct {
	criterion string
	errs      []error
}

// Validate checks an untyped specification (as decoded from YAML or JSON)
// against the reference grammar and returns its typed form.
//
// Every violation found is reported; the returned error joins one
// *SchemaError per violation and matches ErrSchema.
func Validate(criterionID string, raw any) (*Specification, error) {
	v := &validator{criterion: criterionID}

	spec := v.document(raw)
	if len(v.errs) > 0 {
		return nil, errors.Join(v.errs...)
	}

	return spec, nil
}

func (v *validator) fail(path, code string, entry any, format string, args ...any) {
	v.errs = append(v.errs, &SchemaError{
		Criterion: v.criterion,
		Path:      path,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Entry:     entry,
	})
}

func (v *validator) document(raw any) *Specification {
	spec := &Specification{}
	if raw == nil {
		return spec
	}

	obj, ok := asObject(raw)
	if !ok {
		v.fail("", CodeWrongShape, raw, "specification must be a mapping, got %s", shapeOf(raw))
		return spec
	}

	v.checkFields("", obj, documentFields)

	spec.Intro = v.optionalString("", obj, "intro")
	spec.Note = v.optionalString("", obj, "note")

	if rawList, present := obj["sufficient"]; present {
		if list, ok := v.list("sufficient", rawList); ok {
			if isSectionList(list) {
				spec.SufficientSections = v.sections("sufficient", list)
			} else {
				spec.Sufficient = v.references("sufficient", list)
			}
		}
	}

	spec.Advisory = v.referenceField(obj, "advisory")
	spec.Failure = v.referenceField(obj, "failure")

	return spec
}

func (v *validator) referenceField(obj map[string]any, key string) []Reference {
	rawList, present := obj[key]
	if !present {
		return nil
	}

	list, ok := v.list(key, rawList)
	if !ok {
		return nil
	}

	return v.references(key, list)
}

// isSectionList reports whether a sufficient list is authored as sections:
// its first element carries a "techniques" field.
func isSectionList(list []any) bool {
	if len(list) == 0 {
		return false
	}

	obj, ok := asObject(list[0])
	if !ok {
		return false
	}

	_, has := obj["techniques"]

	return has
}

func (v *validator) sections(path string, list []any) []Section {
	out := make([]Section, 0, len(list))

	for i, raw := range list {
		p := fmt.Sprintf("%s[%d]", path, i)

		obj, ok := asObject(raw)
		if !ok {
			v.fail(p, CodeInvalidSection, raw, "sections cannot be mixed with plain references, got %s", shapeOf(raw))
			continue
		}

		if _, has := obj["techniques"]; !has {
			v.fail(p, CodeInvalidSection, raw, "section is missing its techniques list")
			continue
		}

		v.checkFields(p, obj, sectionFields)

		sec := Section{
			Title:      v.optionalString(p, obj, "title"),
			Note:       v.optionalString(p, obj, "note"),
			Techniques: v.requiredReferences(p, obj, "techniques"),
		}

		if rawGroups, present := obj["groups"]; present {
			if groups, ok := v.list(p+".groups", rawGroups); ok {
				sec.Groups = v.groups(p+".groups", groups)
			}
		}

		out = append(out, sec)
	}

	return out
}

func (v *validator) groups(path string, list []any) []Group {
	out := make([]Group, 0, len(list))

	for i, raw := range list {
		p := fmt.Sprintf("%s[%d]", path, i)

		obj, ok := asObject(raw)
		if !ok {
			v.fail(p, CodeWrongShape, raw, "group must be a mapping, got %s", shapeOf(raw))
			continue
		}

		v.checkFields(p, obj, groupFields)

		out = append(out, Group{
			ID:         v.requiredString(p, obj, "id"),
			Title:      v.requiredString(p, obj, "title"),
			Techniques: v.requiredReferences(p, obj, "techniques"),
		})
	}

	return out
}

func (v *validator) requiredReferences(path string, obj map[string]any, key string) []Reference {
	rawList, present := obj[key]
	if !present {
		v.fail(path, CodeMissingField, obj, "missing required field %q", key)
		return nil
	}

	list, ok := v.list(path+"."+key, rawList)
	if !ok {
		return nil
	}

	return v.references(path+"."+key, list)
}

// references validates every element of list. The result is never nil.
func (v *validator) references(path string, list []any) []Reference {
	out := make([]Reference, 0, len(list))

	for i, raw := range list {
		if ref, ok := v.reference(fmt.Sprintf("%s[%d]", path, i), raw); ok {
			out = append(out, ref)
		}
	}

	return out
}

func (v *validator) reference(path string, raw any) (Reference, bool) {
	if s, isString := raw.(string); isString {
		return v.shorthand(path, s)
	}

	obj, ok := asObject(raw)
	if !ok {
		v.fail(path, CodeWrongShape, raw, "reference must be a string or a mapping, got %s", shapeOf(raw))
		return Reference{}, false
	}

	if _, isAnd := obj["and"]; isAnd {
		return v.conjunction(path, obj)
	}

	before := len(v.errs)

	v.checkFields(path, obj, extendedFields)

	ref := Reference{
		Kind:  KindSimple,
		ID:    v.optionalString(path, obj, "id"),
		Title: v.optionalString(path, obj, "title"),
	}

	if v.usingFields(path, obj, &ref) {
		ref.Kind = KindExtended
	}

	return ref, len(v.errs) == before
}

func (v *validator) shorthand(path, s string) (Reference, bool) {
	if strings.TrimSpace(s) == "" {
		v.fail(path, CodeWrongShape, s, "reference string is empty")
		return Reference{}, false
	}

	return Shorthand(s), true
}

func (v *validator) conjunction(path string, obj map[string]any) (Reference, bool) {
	before := len(v.errs)

	if _, hasID := obj["id"]; hasID {
		v.fail(path, CodeAndWithID, obj, "and cannot be combined with id")
	}

	v.checkFields(path, obj, conjunctionFields.with("id"))

	ref := Reference{Kind: KindConjunction}

	if list, ok := v.list(path+".and", obj["and"]); ok {
		if len(list) == 0 {
			v.fail(path+".and", CodeMissingField, obj, "and must list at least one technique")
		}

		ref.And = make([]Reference, 0, len(list))

		for i, raw := range list {
			if m, ok := v.member(fmt.Sprintf("%s.and[%d]", path, i), raw); ok {
				ref.And = append(ref.And, m)
			}
		}
	}

	ref.AndConjunction = v.optionalString(path, obj, "andConjunction")
	v.usingFields(path, obj, &ref)

	return ref, len(v.errs) == before
}

// member validates a conjunction member: a shorthand string or a simple reference.
func (v *validator) member(path string, raw any) (Reference, bool) {
	if s, isString := raw.(string); isString {
		return v.shorthand(path, s)
	}

	obj, ok := asObject(raw)
	if !ok {
		v.fail(path, CodeWrongShape, raw, "conjunction member must be a string or {id, title}, got %s", shapeOf(raw))
		return Reference{}, false
	}

	before := len(v.errs)

	v.checkFields(path, obj, simpleFields)

	ref := Reference{
		Kind:  KindSimple,
		ID:    v.optionalString(path, obj, "id"),
		Title: v.optionalString(path, obj, "title"),
	}

	return ref, len(v.errs) == before
}

// usingFields reads the using list and phrasing qualifiers into ref and
// reports whether any of them was present.
func (v *validator) usingFields(path string, obj map[string]any, ref *Reference) bool {
	present := false

	if rawUsing, has := obj["using"]; has {
		present = true
		ref.Using = []Reference{}

		if list, ok := v.list(path+".using", rawUsing); ok {
			ref.Using = v.references(path+".using", list)
		}
	}

	if _, has := obj["skipUsingText"]; has {
		present = true
		ref.SkipUsingText = v.optionalBool(path, obj, "skipUsingText")
	}

	for _, field := range []struct {
		key string
		dst *string
	}{
		{"usingConjunction", &ref.UsingConjunction},
		{"usingPrefix", &ref.UsingPrefix},
		{"usingQuantity", &ref.UsingQuantity},
	} {
		if _, has := obj[field.key]; has {
			present = true
			*field.dst = v.optionalString(path, obj, field.key)
		}
	}

	return present
}

func (v *validator) checkFields(path string, obj map[string]any, allowed fieldSet) {
	var unknown []string

	for k := range obj {
		if _, ok := allowed[k]; !ok {
			unknown = append(unknown, k)
		}
	}

	sort.Strings(unknown)

	for _, k := range unknown {
		if hint := match.Suggest(k, allowed.names()); hint != "" {
			v.fail(path, CodeUnknownField, obj, "unrecognized field %q (did you mean %q?)", k, hint)
			continue
		}

		v.fail(path, CodeUnknownField, obj, "unrecognized field %q", k)
	}
}

func (v *validator) list(path string, raw any) ([]any, bool) {
	switch l := raw.(type) {
	case nil:
		return nil, true
	case []any:
		return l, true
	default:
		v.fail(path, CodeWrongShape, raw, "expected a list, got %s", shapeOf(raw))
		return nil, false
	}
}

func (v *validator) optionalString(path string, obj map[string]any, key string) string {
	raw, present := obj[key]
	if !present || raw == nil {
		return ""
	}

	s, ok := raw.(string)
	if !ok {
		v.fail(path, CodeWrongShape, obj, "field %q must be a string, got %s", key, shapeOf(raw))
		return ""
	}

	return s
}

func (v *validator) requiredString(path string, obj map[string]any, key string) string {
	if _, present := obj[key]; !present {
		v.fail(path, CodeMissingField, obj, "missing required field %q", key)
		return ""
	}

	return v.optionalString(path, obj, key)
}

func (v *validator) optionalBool(path string, obj map[string]any, key string) bool {
	raw, present := obj[key]
	if !present || raw == nil {
		return false
	}

	b, ok := raw.(bool)
	if !ok {
		v.fail(path, CodeWrongShape, obj, "field %q must be a boolean, got %s", key, shapeOf(raw))
		return false
	}

	return b
}

// asObject accepts the two map shapes YAML and JSON decoders produce.
func asObject(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}

		return out, true
	default:
		return nil, false
	}
}

func shapeOf(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any, map[any]any:
		return "mapping"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
