package criteria

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// NodeType discriminates guideline document nodes.
type NodeType string

const (
	// TypeSuccessCriterion marks genuine success criteria; only these take part in associations.
	TypeSuccessCriterion NodeType = "SC"
	TypeGuideline        NodeType = "guideline"
	TypePrinciple        NodeType = "principle"
)

// Criterion is one guideline document node.
type Criterion struct {
	ID string `yaml:"id" json:"id"`
	// Name is the human label, e.g. "Captions (Live)".
	Name   string   `yaml:"name" json:"name"`
	Number Number   `yaml:"number" json:"number"`
	Type   NodeType `yaml:"type" json:"type"`
	// Versions lists the guideline versions the node applies to; empty means all.
	Versions []string `yaml:"versions,omitempty" json:"versions,omitempty"`
}

// IsSuccessCriterion reports whether the node is a success criterion.
func (c Criterion) IsSuccessCriterion() bool {
	return c.Type == TypeSuccessCriterion
}

// AppliesTo reports whether the node is part of the given guideline version.
func (c Criterion) AppliesTo(version string) bool {
	return len(c.Versions) == 0 || slices.Contains(c.Versions, version)
}

// Set maps criterion ids to criteria.
type Set map[string]Criterion

// NewSet builds a Set from a list of criteria.
func NewSet(list ...Criterion) Set {
	s := make(Set, len(list))
	for _, c := range list {
		s[c.ID] = c
	}

	return s
}

// ForVersion returns the nodes applicable to version.
func (s Set) ForVersion(version string) Set {
	out := make(Set, len(s))

	for id, c := range s {
		if c.AppliesTo(version) {
			out[id] = c
		}
	}

	return out
}

// Sorted returns the criteria ordered by number, then id.
func (s Set) Sorted() []Criterion {
	out := make([]Criterion, 0, len(s))
	for _, c := range s {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if cmp := Compare(out[i].Number, out[j].Number); cmp != 0 {
			return cmp < 0
		}

		return out[i].ID < out[j].ID
	})

	return out
}

// file is the on-disk shape of a criteria file.
type file struct {
	Criteria []Criterion `yaml:"criteria"`
}

// Parse parses and checks a criteria document.
func Parse(data []byte) (Set, error) {
	var f file

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse criteria: %w", err)
	}

	set := make(Set, len(f.Criteria))

	var errs []error

	for i, c := range f.Criteria {
		switch {
		case c.ID == "":
			errs = append(errs, fmt.Errorf("criteria[%d]: missing id", i))
			continue
		case len(c.Number) == 0:
			errs = append(errs, fmt.Errorf("criterion %q: missing number", c.ID))
		case c.Type == "":
			errs = append(errs, fmt.Errorf("criterion %q: missing type", c.ID))
		}

		if _, dup := set[c.ID]; dup {
			errs = append(errs, fmt.Errorf("criterion %q: declared more than once", c.ID))
			continue
		}

		set[c.ID] = c
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return set, nil
}

// LoadFile loads a criteria file from path.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria file %s: %w", path, err)
	}

	return Parse(data)
}
