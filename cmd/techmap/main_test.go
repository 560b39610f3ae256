package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techmap/internal/resolve"
)

const criteriaYAML = `
criteria:
  - id: captions-live
    name: Captions (Live)
    number: 1.2.4
    type: SC
  - id: keyboard
    name: Keyboard
    number: 2.1.1
    type: SC
  - id: new-in-22
    name: Focus Not Obscured
    number: 2.4.11
    type: SC
    versions: ["2.2"]
`

const techniquesYAML = `
techniques:
  - id: G9
    title: Creating captions for live synchronized media
  - id: G93
    title: Providing open captions
  - id: G90
    title: Providing keyboard-triggered event handlers
  - id: SCR20
    title: Using both keyboard and other device-specific functions
`

type fixture struct {
	dir        string
	specs      string
	criteria   string
	techniques string
}

func newFixture(t *testing.T, specs map[string]string) fixture {
	t.Helper()

	dir := t.TempDir()
	f := fixture{
		dir:        dir,
		specs:      filepath.Join(dir, "specs"),
		criteria:   filepath.Join(dir, "criteria.yaml"),
		techniques: filepath.Join(dir, "techniques.yaml"),
	}

	require.NoError(t, os.MkdirAll(f.specs, 0o755))
	require.NoError(t, os.WriteFile(f.criteria, []byte(criteriaYAML), 0o644))
	require.NoError(t, os.WriteFile(f.techniques, []byte(techniquesYAML), 0o644))

	for name, doc := range specs {
		require.NoError(t, os.WriteFile(filepath.Join(f.specs, name), []byte(doc), 0o644))
	}

	return f
}

func (f fixture) args(extra ...string) []string {
	return append([]string{
		"--specs", f.specs,
		"--criteria", f.criteria,
		"--techniques", f.techniques,
		"--log-level", "error",
	}, extra...)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

var goodSpecs = map[string]string{
	"captions-live.yaml": "sufficient:\n  - and: [G9, G93]\n",
	"keyboard.yaml":      "sufficient:\n  - id: G90\n    using: [SCR20, SCR200]\n",
	"new-in-22.json":     `{"advisory": ["G90"]}`,
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "techmap v"+version+" ("+commit+")\n", out)
}

func TestValidate(t *testing.T) {
	f := newFixture(t, goodSpecs)

	out, err := run(t, append([]string{"validate"}, f.args()...)...)
	require.NoError(t, err)
	assert.Equal(t, "ok: 3 specification(s)\n", out)
}

func TestValidate_ReportsSchemaErrors(t *testing.T) {
	f := newFixture(t, map[string]string{
		"keyboard.yaml": "sufficient:\n  - id: G1\n    and: [G2]\nadvisory:\n  - id: G3\n    usingPrefx: x\n",
	})

	out, err := run(t, append([]string{"validate"}, f.args()...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 problem(s)")
	assert.Contains(t, out, "error: [keyboard] sufficient[0]: [and_with_id]")
	assert.Contains(t, out, `did you mean "usingPrefix"?`)
}

func TestValidate_MissingSpecsDir(t *testing.T) {
	_, err := run(t, "validate", "--specs", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "specs_dir")
}

func TestResolve_Stdout(t *testing.T) {
	f := newFixture(t, goodSpecs)

	out, err := run(t, append([]string{"resolve"}, f.args()...)...)
	require.NoError(t, err)

	index, err := resolve.ParseExport([]byte(out))
	require.NoError(t, err)

	assert.Equal(t, []string{"G9", "G90", "G93", "SCR20", "SCR200"}, index.Techniques())
	require.Len(t, index["G90"], 2, "2.2 includes the advisory entry")
	assert.Equal(t, "keyboard", index["G90"][0].Criterion.ID)
	assert.Equal(t, "new-in-22", index["G90"][1].Criterion.ID)
	assert.Equal(t, []string{"G90"}, index["SCR20"][0].UsageParentIDs)
	assert.Equal(t, []string{"G93"}, index["G9"][0].With)
}

func TestResolve_OlderVersion(t *testing.T) {
	f := newFixture(t, goodSpecs)

	out, err := run(t, append([]string{"resolve"}, f.args("--wcag-version", "2.1")...)...)
	require.NoError(t, err)

	index, err := resolve.ParseExport([]byte(out))
	require.NoError(t, err)
	assert.Len(t, index["G90"], 1)
}

func TestResolve_FileAndStoreThenShow(t *testing.T) {
	f := newFixture(t, goodSpecs)
	outFile := filepath.Join(f.dir, "index.yaml")
	storeDir := filepath.Join(f.dir, "db")

	out, err := run(t, append([]string{"resolve"}, f.args("--out", outFile, "--store", storeDir)...)...)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SCR20:")

	out, err = run(t, append([]string{"show", "SCR20"}, f.args("--store", storeDir)...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "# SCR20: Using both keyboard and other device-specific functions (client-side-script)")
	assert.Contains(t, out, "usageParentIds:\n")
	assert.Contains(t, out, "- G90")

	_, err = run(t, append([]string{"show", "H37"}, f.args("--store", storeDir)...)...)
	assert.ErrorContains(t, err, "not found")
}

func TestResolve_UsesConfigFile(t *testing.T) {
	f := newFixture(t, goodSpecs)
	cfgPath := filepath.Join(f.dir, "techmap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"specs_dir: specs\ncriteria_file: criteria.yaml\nversion: \"2.1\"\noutput: out.yaml\nlog_level: error\n",
	), 0o644))

	_, err := run(t, "resolve", "--config", cfgPath)
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(f.dir, "out.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(index), "new-in-22")
}

func TestCheck(t *testing.T) {
	f := newFixture(t, goodSpecs)

	out, err := run(t, append([]string{"check"}, f.args()...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `warning: [SCR200] keyboard: [phantom_technique] technique is not in the registry`)
	assert.Contains(t, out, "5 technique(s), 1 phantom, 0 unused\n")
}

func TestCheck_RequiresRegistry(t *testing.T) {
	f := newFixture(t, goodSpecs)

	_, err := run(t, "check", "--specs", f.specs, "--criteria", f.criteria)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "techniques_file: is required")
}

func TestShow_ListsStoredTechniques(t *testing.T) {
	f := newFixture(t, goodSpecs)
	storeDir := filepath.Join(f.dir, "db")

	_, err := run(t, append([]string{"resolve"}, f.args("--out", filepath.Join(f.dir, "index.yaml"), "--store", storeDir)...)...)
	require.NoError(t, err)

	out, err := run(t, append([]string{"show"}, f.args("--store", storeDir)...)...)
	require.NoError(t, err)
	assert.Equal(t, "G9\tCreating captions for live synchronized media\n"+
		"G90\tProviding keyboard-triggered event handlers\n"+
		"G93\tProviding open captions\n"+
		"SCR20\tUsing both keyboard and other device-specific functions\n"+
		"SCR200\n", out)
}

func TestVersions(t *testing.T) {
	f := newFixture(t, goodSpecs)
	storeDir := filepath.Join(f.dir, "db")

	for _, v := range []string{"2.2", "2.1"} {
		_, err := run(t, append([]string{"resolve"}, f.args("--wcag-version", v, "--out", filepath.Join(f.dir, v+".yaml"), "--store", storeDir)...)...)
		require.NoError(t, err)
	}

	out, err := run(t, "versions", "--store", storeDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "2.1\n2.2\n", out)
}

func TestCheck_ReadsIndexFile(t *testing.T) {
	f := newFixture(t, goodSpecs)
	indexFile := filepath.Join(f.dir, "index.yaml")

	_, err := run(t, append([]string{"resolve"}, f.args("--out", indexFile)...)...)
	require.NoError(t, err)

	// The specifications are no longer needed once the index exists.
	require.NoError(t, os.RemoveAll(f.specs))

	out, err := run(t, "check", "--index", indexFile, "--techniques", f.techniques, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "warning: [SCR200] keyboard: [phantom_technique]")
	assert.Contains(t, out, "5 technique(s), 1 phantom, 0 unused\n")
}

func TestCheck_ReadsStore(t *testing.T) {
	f := newFixture(t, goodSpecs)
	storeDir := filepath.Join(f.dir, "db")

	_, err := run(t, append([]string{"resolve"}, f.args("--out", filepath.Join(f.dir, "index.yaml"), "--store", storeDir)...)...)
	require.NoError(t, err)

	out, err := run(t, "check", "--store", storeDir, "--techniques", f.techniques, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "5 technique(s), 1 phantom, 0 unused\n")
}
