package techniques

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"techmap/internal/common"
)

// Technology groups techniques by the platform they apply to.
type Technology string

const (
	TechGeneral          Technology = "general"
	TechHTML             Technology = "html"
	TechCSS              Technology = "css"
	TechARIA             Technology = "aria"
	TechClientSideScript Technology = "client-side-script"
	TechServerSideScript Technology = "server-side-script"
	TechSMIL             Technology = "smil"
	TechPDF              Technology = "pdf"
	TechFailures         Technology = "failures"
	TechText             Technology = "text"
	TechFlash            Technology = "flash"
	TechSilverlight      Technology = "silverlight"
	TechUnknown          Technology = common.UnknownStr
)

var technologies = map[string]Technology{
	"G":     TechGeneral,
	"H":     TechHTML,
	"C":     TechCSS,
	"ARIA":  TechARIA,
	"SCR":   TechClientSideScript,
	"SVR":   TechServerSideScript,
	"SM":    TechSMIL,
	"PDF":   TechPDF,
	"F":     TechFailures,
	"T":     TechText,
	"FLASH": TechFlash,
	"SL":    TechSilverlight,
}

var idPattern = regexp.MustCompile(`^([A-Z]+)\d+$`)

// TechnologyFor derives a technique's technology from its id prefix:
// "SCR20" is client-side script, "F54" a failure.
func TechnologyFor(id string) Technology {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return TechUnknown
	}

	if tech, ok := technologies[m[1]]; ok {
		return tech
	}

	return TechUnknown
}

// Technique is one registry entry.
type Technique struct {
	ID         string     `yaml:"id" json:"id"`
	Title      string     `yaml:"title" json:"title"`
	Technology Technology `yaml:"-" json:"technology"`
}

// Registry maps technique ids to techniques.
type Registry map[string]Technique

// NewRegistry builds a Registry, filling in each technique's technology.
func NewRegistry(list ...Technique) Registry {
	r := make(Registry, len(list))
	for _, t := range list {
		t.Technology = TechnologyFor(t.ID)
		r[t.ID] = t
	}

	return r
}

// Has reports whether id is registered.
func (r Registry) Has(id string) bool {
	_, ok := r[id]
	return ok
}

// IDs returns the registered ids in lexical order.
func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// file is the on-disk shape of a technique registry.
type file struct {
	Techniques []Technique `yaml:"techniques"`
}

// Parse parses and checks a technique registry document.
func Parse(data []byte) (Registry, error) {
	var f file

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse techniques: %w", err)
	}

	var errs []error

	seen := make(map[string]struct{}, len(f.Techniques))

	for i, t := range f.Techniques {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("techniques[%d]: missing id", i))
			continue
		}

		if _, dup := seen[t.ID]; dup {
			errs = append(errs, fmt.Errorf("technique %q: declared more than once", t.ID))
		}

		seen[t.ID] = struct{}{}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return NewRegistry(f.Techniques...), nil
}

// LoadFile loads a technique registry from path.
func LoadFile(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read techniques file %s: %w", path, err)
	}

	return Parse(data)
}
