package resolve

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"techmap/internal/association"
)

const (
	usedForPrefix       = "when used for "
	fallbackDescription = "when combined with other techniques"
)

// DescribeParent derives the "when used for ..." text that qualifies a
// technique completing parent. It returns "" when parent is nil or
// declares no using list.
//
// Singular quantities (absent, or one of Config.SingularQuantities) use the
// parent's title, or the titles of its conjunction members joined with
// " and ". Anything else falls back to a generic phrase.
func (r *Resolver) DescribeParent(parent *association.Reference) string {
	if parent == nil || !parent.DeclaresUsing() {
		return ""
	}

	if r.isSingular(parent.UsingQuantity) {
		if parent.Title != "" {
			return usedForPrefix + lowerFirst(parent.Title)
		}

		if parent.IsConjunction() {
			if titles := memberTitles(*parent); len(titles) > 0 {
				return usedForPrefix + strings.Join(titles, " and ")
			}
		}
	}

	return fallbackDescription
}

func (r *Resolver) isSingular(quantity string) bool {
	if quantity == "" {
		return true
	}

	_, ok := r.singular[normalizeQuantity(quantity)]

	return ok
}

func memberTitles(conj association.Reference) []string {
	var titles []string

	for _, m := range association.NormalizeAll(conj.And) {
		if m.Title != "" {
			titles = append(titles, lowerFirst(m.Title))
		}
	}

	return titles
}

// lowerFirst lowercases only the first rune: "Providing HTML" -> "providing HTML".
func lowerFirst(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}

	return string(unicode.ToLower(first)) + s[size:]
}
