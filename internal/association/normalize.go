package association

import "regexp"

// techniqueIDPattern matches technique ids such as "G90", "SCR20" or "ARIA1".
var techniqueIDPattern = regexp.MustCompile(`^[A-Z]+\d+$`)

// IsTechniqueID reports whether s has the shape of a technique id.
func IsTechniqueID(s string) bool {
	return techniqueIDPattern.MatchString(s)
}

// Normalize expands a shorthand reference into its canonical form.
// Any other reference is returned unchanged.
//
//   - "G90"                  -> {id: G90}
//   - "Providing a caption"  -> {title: Providing a caption}
func Normalize(ref Reference) Reference {
	if ref.Kind != KindShorthand {
		return ref
	}

	if IsTechniqueID(ref.Text) {
		return Reference{Kind: KindSimple, ID: ref.Text}
	}

	return Reference{Kind: KindSimple, Title: ref.Text}
}

// NormalizeAll normalizes every reference in refs into a new slice.
func NormalizeAll(refs []Reference) []Reference {
	out := make([]Reference, len(refs))
	for i := range refs {
		out[i] = Normalize(refs[i])
	}

	return out
}
