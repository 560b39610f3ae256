package association

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Type -output=type_string.go
//go:generate go tool stringer -type=Kind -output=kind_string.go

// Type is the relationship a technique has to a criterion.
type Type int

const (
	Sufficient Type = iota
	Advisory
	Failure
)

// Types lists every association type in traversal order.
var Types = []Type{Sufficient, Advisory, Failure}

// Key returns the lowercase document key for the type ("sufficient", ...).
func (t Type) Key() string {
	return strings.ToLower(t.String())
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	for _, candidate := range Types {
		if candidate.Key() == strings.ToLower(string(text)) {
			*t = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown association type %q", text)
}

// Kind discriminates the shapes a Reference can take.
type Kind int

const (
	_ Kind = iota // zero value is an invalid Kind

	KindShorthand
	KindSimple
	KindExtended
	KindConjunction
)

// Phrasing holds the qualifiers controlling how a "using" relationship is
// worded in rendered pages.
type Phrasing struct {
	SkipUsingText    bool
	UsingConjunction string
	UsingPrefix      string
	// UsingQuantity is a free-text quantity word: "one", "any", "two or more".
	UsingQuantity string
}

// Reference is the atomic unit of a specification.
type Reference struct {
	Kind Kind
	// Text is the raw string of a shorthand reference.
	Text  string
	ID    string
	Title string
	// And holds conjunction members, each KindShorthand or KindSimple.
	And            []Reference
	AndConjunction string
	// Using is nil when the entry does not declare children.
	Using []Reference
	Phrasing
}

// Shorthand returns a shorthand reference for s.
func Shorthand(s string) Reference {
	return Reference{Kind: KindShorthand, Text: s}
}

// IsConjunction reports whether the reference is an "and" set.
func (r Reference) IsConjunction() bool {
	return r.Kind == KindConjunction
}

// HasID reports whether the reference can be indexed by a technique id.
func (r Reference) HasID() bool {
	return r.ID != ""
}

// DeclaresUsing reports whether the reference declares a using list.
func (r Reference) DeclaresUsing() bool {
	return r.Using != nil
}

// String renders the reference compactly for logs and error messages.
func (r Reference) String() string {
	switch r.Kind {
	case KindShorthand:
		return r.Text
	case KindConjunction:
		parts := make([]string, len(r.And))
		for i, m := range r.And {
			parts[i] = m.String()
		}

		return "and(" + strings.Join(parts, ", ") + ")"
	default:
		if r.ID != "" {
			return r.ID
		}

		return fmt.Sprintf("%q", r.Title)
	}
}

// Group is a titled sub-list of techniques inside a Section.
type Group struct {
	ID         string
	Title      string
	Techniques []Reference
}

// Section groups sufficient techniques for presentation of the source
// document. Titles carry no meaning in the inverted index.
type Section struct {
	Title      string
	Techniques []Reference
	Groups     []Group
	Note       string
}

// Specification is the validated technique specification of one criterion.
type Specification struct {
	Intro string
	Note  string
	// Sufficient is the flat list form; empty when SufficientSections is used.
	Sufficient []Reference
	// SufficientSections is non-nil only when the document used sections.
	SufficientSections []Section
	Advisory           []Reference
	Failure            []Reference
}

// HasSections reports whether the sufficient list was authored as sections.
func (s *Specification) HasSections() bool {
	return s.SufficientSections != nil
}

// List returns the flat reference list for t. For sectioned sufficient
// lists it returns nil; use Sections instead.
func (s *Specification) List(t Type) []Reference {
	switch t {
	case Sufficient:
		return s.Sufficient
	case Advisory:
		return s.Advisory
	case Failure:
		return s.Failure
	default:
		return nil
	}
}

// Specifications maps criterion ids to their specification.
type Specifications map[string]*Specification
