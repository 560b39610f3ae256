package criteria

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Number is a hierarchical criterion number such as 1.2.4.
type Number []int

// ParseNumber parses a dotted number. Every segment must be a non-negative integer.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty criterion number")
	}

	parts := strings.Split(s, ".")
	n := make(Number, len(parts))

	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid criterion number %q: segment %q is not a number", s, p)
		}

		n[i] = v
	}

	return n, nil
}

// MustParseNumber is like ParseNumber but panics on error. For tests and literals.
func MustParseNumber(s string) Number {
	n, err := ParseNumber(s)
	if err != nil {
		panic(err)
	}

	return n
}

// String returns the dotted form.
func (n Number) String() string {
	parts := make([]string, len(n))
	for i, v := range n {
		parts[i] = strconv.Itoa(v)
	}

	return strings.Join(parts, ".")
}

// Compare orders numbers segment by segment, numerically, so 1.9.1 sorts
// before 1.10.1. A number sorts before any longer number it prefixes.
func Compare(a, b Number) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}

			return 1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// UnmarshalYAML reads the raw scalar so unquoted numbers like 1.10 keep their segments.
func (n *Number) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: criterion number must be a scalar", node.Line)
	}

	parsed, err := ParseNumber(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	*n = parsed

	return nil
}

// MarshalYAML writes the dotted form.
func (n Number) MarshalYAML() (any, error) {
	return n.String(), nil
}

// MarshalText implements encoding.TextMarshaler.
func (n Number) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Number) UnmarshalText(text []byte) error {
	parsed, err := ParseNumber(string(text))
	if err != nil {
		return err
	}

	*n = parsed

	return nil
}
