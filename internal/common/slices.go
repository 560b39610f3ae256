package common

import "slices"

// UnknownStr is returned by String methods for values outside their enum range.
const UnknownStr = "unknown"

// Without returns the distinct elements of s other than skip, in first-seen order.
// The result is never nil, so callers can rely on an empty (not absent) list.
func Without[S ~[]E, E comparable](s S, skip E) S {
	out := make(S, 0, len(s))

	for _, e := range s {
		if e != skip && !slices.Contains(out, e) {
			out = append(out, e)
		}
	}

	return out
}

// Clone returns a non-nil copy of s.
func Clone[S ~[]E, E any](s S) S {
	out := make(S, len(s))
	copy(out, s)

	return out
}
