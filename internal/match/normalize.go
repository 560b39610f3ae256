package match

import (
	"strings"
	"unicode"
)

// NormalizeKey folds a field name or technique id for fuzzy comparison:
// lowercase, without separators or surrounding space.
//
//	"usingQuantity"  -> "usingquantity"
//	"using_quantity" -> "usingquantity"
//	"scr-20"         -> "scr20"
func NormalizeKey(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range strings.TrimSpace(s) {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}
