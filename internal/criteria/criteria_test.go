package criteria

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCriteria = `
criteria:
  - id: time-based-media
    name: Time-based Media
    number: "1.2"
    type: guideline
  - id: captions-live
    name: Captions (Live)
    number: 1.2.4
    type: SC
    versions: ["2.0", "2.1", "2.2"]
  - id: parsing
    name: Parsing
    number: 4.1.1
    type: SC
    versions: ["2.0", "2.1"]
  - id: keyboard
    name: Keyboard
    number: 2.1.1
    type: SC
`

func TestParse(t *testing.T) {
	set, err := Parse([]byte(sampleCriteria))
	require.NoError(t, err)
	require.Len(t, set, 4)

	live := set["captions-live"]
	assert.Equal(t, "Captions (Live)", live.Name)
	assert.Equal(t, Number{1, 2, 4}, live.Number)
	assert.True(t, live.IsSuccessCriterion())
	assert.False(t, set["time-based-media"].IsSuccessCriterion())
}

func TestSet_ForVersion(t *testing.T) {
	set, err := Parse([]byte(sampleCriteria))
	require.NoError(t, err)

	v22 := set.ForVersion("2.2")
	assert.NotContains(t, v22, "parsing")
	assert.Contains(t, v22, "captions-live")
	assert.Contains(t, v22, "keyboard", "nodes without versions apply everywhere")

	v21 := set.ForVersion("2.1")
	assert.Contains(t, v21, "parsing")
	assert.Len(t, set, 4, "filtering must not mutate the source set")
}

func TestSet_Sorted(t *testing.T) {
	set := NewSet(
		Criterion{ID: "b", Number: MustParseNumber("1.10.1")},
		Criterion{ID: "a", Number: MustParseNumber("1.9.1")},
		Criterion{ID: "z", Number: MustParseNumber("1.2")},
		Criterion{ID: "y", Number: MustParseNumber("1.2")},
	)

	var ids []string
	for _, c := range set.Sorted() {
		ids = append(ids, c.ID)
	}

	assert.Equal(t, []string{"y", "z", "a", "b"}, ids)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown field", "criteria:\n  - id: a\n    number: 1\n    type: SC\n    level: AA\n", "level"},
		{"missing id", "criteria:\n  - number: 1\n    type: SC\n", "missing id"},
		{"missing number", "criteria:\n  - id: a\n    type: SC\n", "missing number"},
		{"missing type", "criteria:\n  - id: a\n    number: 1.1\n", "missing type"},
		{"bad number", "criteria:\n  - id: a\n    number: one\n    type: SC\n", "invalid criterion number"},
		{"duplicate", "criteria:\n  - {id: a, number: 1, type: SC}\n  - {id: a, number: 2, type: SC}\n", "more than once"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "criteria.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCriteria), 0o644))

	set, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, set, 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
