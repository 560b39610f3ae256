package association

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSpec(t *testing.T, doc string) (*Specification, error) {
	t.Helper()

	return Parse("captions-live", []byte(doc))
}

func requireSchemaError(t *testing.T, err error, code, path string) *SchemaError {
	t.Helper()

	require.Error(t, err)
	require.ErrorIs(t, err, ErrSchema)

	for _, se := range SchemaErrors(err) {
		if se.Code == code && se.Path == path {
			return se
		}
	}

	require.Failf(t, "schema error not found", "want [%s] at %q, got: %v", code, path, err)

	return nil
}

func TestValidate_FlatLists(t *testing.T) {
	spec, err := parseSpec(t, `
intro: Each item below is sufficient.
sufficient:
  - G9X
  - and: [G9, G93]
advisory:
  - Providing a transcript
failure:
  - id: F8
    title: Captions omitting dialogue
`)
	require.NoError(t, err)

	assert.Equal(t, "Each item below is sufficient.", spec.Intro)
	assert.False(t, spec.HasSections())
	require.Len(t, spec.Sufficient, 2)
	assert.Equal(t, Shorthand("G9X"), spec.Sufficient[0])

	conj := spec.Sufficient[1]
	assert.True(t, conj.IsConjunction())
	assert.Equal(t, []Reference{Shorthand("G9"), Shorthand("G93")}, conj.And)
	assert.False(t, conj.DeclaresUsing())

	require.Len(t, spec.Advisory, 1)
	assert.Equal(t, KindShorthand, spec.Advisory[0].Kind)

	require.Len(t, spec.Failure, 1)
	assert.Equal(t, Reference{Kind: KindSimple, ID: "F8", Title: "Captions omitting dialogue"}, spec.Failure[0])
	assert.Equal(t, spec.Failure, spec.List(Failure))
}

func TestValidate_ExtendedNesting(t *testing.T) {
	spec, err := parseSpec(t, `
sufficient:
  - id: G90
    title: Providing keyboard-triggered event handlers
    usingQuantity: one
    usingPrefix: using
    usingConjunction: or
    skipUsingText: true
    using:
      - SCR20
      - id: SCR35
        using:
          - title: Deeper title only
            using: [C1, C2]
`)
	require.NoError(t, err)
	require.Len(t, spec.Sufficient, 1)

	g90 := spec.Sufficient[0]
	assert.Equal(t, KindExtended, g90.Kind)
	assert.Equal(t, Phrasing{SkipUsingText: true, UsingConjunction: "or", UsingPrefix: "using", UsingQuantity: "one"}, g90.Phrasing)
	require.Len(t, g90.Using, 2)

	scr35 := g90.Using[1]
	assert.Equal(t, "SCR35", scr35.ID)
	require.Len(t, scr35.Using, 1)

	deep := scr35.Using[0]
	assert.Equal(t, "Deeper title only", deep.Title)
	assert.Equal(t, []Reference{Shorthand("C1"), Shorthand("C2")}, deep.Using)
}

func TestValidate_EmptyUsingIsDeclared(t *testing.T) {
	spec, err := parseSpec(t, `
advisory:
  - id: G90
    using: []
`)
	require.NoError(t, err)
	assert.True(t, spec.Advisory[0].DeclaresUsing())
	assert.Equal(t, KindExtended, spec.Advisory[0].Kind)
}

func TestValidate_Sections(t *testing.T) {
	spec, err := parseSpec(t, `
sufficient:
  - title: Situation A
    techniques: [G158]
    groups:
      - id: text-alternatives
        title: Text alternatives
        techniques:
          - G94
          - and: [G95, G96]
    note: Only prerecorded media.
  - techniques:
      - H37
`)
	require.NoError(t, err)
	assert.True(t, spec.HasSections())
	assert.Nil(t, spec.Sufficient)
	require.Len(t, spec.SufficientSections, 2)

	a := spec.SufficientSections[0]
	assert.Equal(t, "Situation A", a.Title)
	assert.Equal(t, "Only prerecorded media.", a.Note)
	require.Len(t, a.Groups, 1)
	assert.Equal(t, "text-alternatives", a.Groups[0].ID)
	require.Len(t, a.Groups[0].Techniques, 2)
	assert.True(t, a.Groups[0].Techniques[1].IsConjunction())

	assert.Equal(t, []Reference{Shorthand("H37")}, spec.SufficientSections[1].Techniques)
}

func TestValidate_EmptyDocument(t *testing.T) {
	spec, err := parseSpec(t, "")
	require.NoError(t, err)
	assert.Empty(t, spec.Sufficient)
	assert.Empty(t, spec.Advisory)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code string
		path string
	}{
		{
			name: "unknown top-level field",
			doc:  "sufficient: [G9]\nsituations: []\n",
			code: CodeUnknownField,
			path: "",
		},
		{
			name: "unknown reference field",
			doc:  "sufficient:\n  - id: G90\n    usingQty: one\n",
			code: CodeUnknownField,
			path: "sufficient[0]",
		},
		{
			name: "and with id",
			doc:  "sufficient:\n  - id: G1\n    and: [G9, G93]\n",
			code: CodeAndWithID,
			path: "sufficient[0]",
		},
		{
			name: "conjunction member with using",
			doc:  "sufficient:\n  - and:\n      - id: G9\n        using: [G93]\n",
			code: CodeUnknownField,
			path: "sufficient[0].and[0]",
		},
		{
			name: "empty conjunction",
			doc:  "failure:\n  - and: []\n",
			code: CodeMissingField,
			path: "failure[0].and",
		},
		{
			name: "number as reference",
			doc:  "advisory:\n  - 42\n",
			code: CodeWrongShape,
			path: "advisory[0]",
		},
		{
			name: "id must be a string",
			doc:  "advisory:\n  - id: [G9]\n",
			code: CodeWrongShape,
			path: "advisory[0]",
		},
		{
			name: "skipUsingText must be a boolean",
			doc:  "advisory:\n  - id: G9\n    skipUsingText: yes please\n",
			code: CodeWrongShape,
			path: "advisory[0]",
		},
		{
			name: "list expected",
			doc:  "failure: F8\n",
			code: CodeWrongShape,
			path: "failure",
		},
		{
			name: "sections outside sufficient",
			doc:  "advisory:\n  - techniques: [G9]\n",
			code: CodeUnknownField,
			path: "advisory[0]",
		},
		{
			name: "section mixed with references",
			doc:  "sufficient:\n  - techniques: [G9]\n  - G93\n",
			code: CodeInvalidSection,
			path: "sufficient[1]",
		},
		{
			name: "group missing title",
			doc:  "sufficient:\n  - techniques: [G9]\n    groups:\n      - id: a\n        techniques: [G93]\n",
			code: CodeMissingField,
			path: "sufficient[0].groups[0]",
		},
		{
			name: "deeply nested unknown field",
			doc:  "sufficient:\n  - id: G90\n    using:\n      - id: SCR20\n        using:\n          - id: C1\n            colour: red\n",
			code: CodeUnknownField,
			path: "sufficient[0].using[0].using[0]",
		},
		{
			name: "document not a mapping",
			doc:  "- G9\n",
			code: CodeWrongShape,
			path: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := parseSpec(t, tt.doc)
			assert.Nil(t, spec)

			se := requireSchemaError(t, err, tt.code, tt.path)
			assert.Equal(t, "captions-live", se.Criterion)
			assert.Contains(t, se.Error(), "captions-live")
		})
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	_, err := parseSpec(t, `
sufficient:
  - id: G1
    and: [G9]
advisory:
  - id: G90
    bogus: true
failure:
  - 3.5
`)
	require.Error(t, err)

	errs := SchemaErrors(err)
	require.Len(t, errs, 3)
	assert.Equal(t, CodeAndWithID, errs[0].Code)
	assert.Equal(t, CodeUnknownField, errs[1].Code)
	assert.Equal(t, CodeWrongShape, errs[2].Code)
}

func TestValidate_AcceptsJSON(t *testing.T) {
	spec, err := Parse("keyboard", []byte(`{"sufficient": [{"id": "G202"}, {"and": ["G90", {"id": "SCR20"}]}]}`))
	require.NoError(t, err)
	require.Len(t, spec.Sufficient, 2)
	assert.Equal(t, Reference{Kind: KindSimple, ID: "SCR20"}, spec.Sufficient[1].And[1])
}

func TestValidate_UntypedInput(t *testing.T) {
	raw := map[any]any{
		"failure": []any{map[string]any{"id": "F54"}},
	}

	spec, err := Validate("keyboard", raw)
	require.NoError(t, err)
	assert.Equal(t, "F54", spec.Failure[0].ID)
}

func TestSchemaErrors_NonSchema(t *testing.T) {
	assert.Nil(t, SchemaErrors(nil))
	assert.Nil(t, SchemaErrors(errors.New("boom")))

	d := Diagnose(errors.New("boom"))
	require.Len(t, d.Errors, 1)
	assert.Equal(t, "load_failed", d.Errors[0].Code)
}

func TestDiagnose(t *testing.T) {
	_, err := parseSpec(t, "advisory:\n  - id: G90\n    bogus: true\n")
	d := Diagnose(err)

	require.Len(t, d.Errors, 1)
	assert.Equal(t, CodeUnknownField, d.Errors[0].Code)
	assert.Equal(t, "captions-live", d.Errors[0].Subject)
	assert.Equal(t, "advisory[0]", d.Errors[0].Path)
}

func TestValidate_UnknownFieldHint(t *testing.T) {
	_, err := parseSpec(t, "sufficient:\n  - title: Scripting\n    using: [SCR20]\n    usingQuanity: one\n")

	errs := SchemaErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, CodeUnknownField, errs[0].Code)
	assert.Contains(t, errs[0].Message, `did you mean "usingQuantity"?`)

	_, err = parseSpec(t, "sufficient: [G9]\nsituations: []\n")
	errs = SchemaErrors(err)
	require.Len(t, errs, 1)
	assert.NotContains(t, errs[0].Message, "did you mean")
}

func TestValidate_ReferenceWithoutIDOrTitle(t *testing.T) {
	spec, err := parseSpec(t, `
sufficient:
  - using: [X1]
advisory:
  - usingQuantity: one
    using: [X2]
  - and: [G9, {}]
`)
	require.NoError(t, err)

	require.Len(t, spec.Sufficient, 1)
	assert.Equal(t, Reference{
		Kind:  KindExtended,
		Using: []Reference{Shorthand("X1")},
	}, spec.Sufficient[0])

	require.Len(t, spec.Advisory, 2)
	assert.Equal(t, KindExtended, spec.Advisory[0].Kind)
	assert.Equal(t, "one", spec.Advisory[0].UsingQuantity)
	assert.Equal(t, []Reference{Shorthand("G9"), {Kind: KindSimple}}, spec.Advisory[1].And)
}
