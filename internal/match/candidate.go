package match

import "sort"

// Candidate is one known name scored against a query.
type Candidate struct {
	Name string
	// Score is the normalized similarity (0-1, higher is closer).
	Score float64
}

// CandidateList is a list of candidates ordered best first.
type CandidateList []Candidate

// Confidence thresholds for offering a suggestion.
const (
	// DefaultMinScore is the minimum similarity for a suggestion.
	DefaultMinScore = 0.6
	// DefaultMinGap is the minimum score gap between the two best candidates.
	DefaultMinGap = 0.1
)

// Rank scores every known name against query. Names are compared after
// NormalizeKey; ties are broken alphabetically.
func Rank(query string, known []string) CandidateList {
	norm := NormalizeKey(query)

	candidates := make(CandidateList, 0, len(known))
	for _, name := range known {
		candidates = append(candidates, Candidate{
			Name:  name,
			Score: Similarity(norm, NormalizeKey(name)),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns the known name query most likely meant, or "" when no
// candidate is both close enough and clearly ahead of the runner-up.
func Suggest(query string, known []string) string {
	best := Rank(query, known).HighConfidence(DefaultMinScore, DefaultMinGap)
	if best == nil || best.Name == query {
		return ""
	}

	return best.Name
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Best returns the best candidate, or nil if there are none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// HighConfidence returns the best candidate if it reaches minScore and leads
// the runner-up by at least minGap. Returns nil if no clear winner exists.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	best := c.Best()
	if best == nil || best.Score < minScore {
		return nil
	}

	if len(c) > 1 && c[0].Score-c[1].Score < minGap {
		return nil
	}

	return best
}
