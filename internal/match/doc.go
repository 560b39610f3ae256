// Package match ranks known names by similarity to a misspelled one.
//
// It backs the "did you mean" hints attached to unrecognized specification
// fields and to technique ids missing from the registry.
//
// Key functions:
//   - NormalizeKey: folds case and strips separators before comparison
//   - Levenshtein: computes edit distance between strings
//   - Rank: scores every known name against a query
//   - Suggest: returns the single confident suggestion, if any
package match
