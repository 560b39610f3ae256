package association

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// specExtensions are the file extensions LoadDir picks up. JSON documents
// are read by the YAML decoder.
var specExtensions = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// Decode parses a YAML or JSON document into untyped values suitable for Validate.
func Decode(data []byte) (any, error) {
	var raw any

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("multiple YAML documents are not supported")
		}

		return nil, err
	}

	return raw, nil
}

// Parse decodes and validates the specification document of one criterion.
func Parse(criterionID string, data []byte) (*Specification, error) {
	raw, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse specification for %s: %w", criterionID, err)
	}

	return Validate(criterionID, raw)
}

// CriterionIDFromPath derives the criterion id from a file name:
// "understanding/captions-live.yaml" -> "captions-live".
func CriterionIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFile loads and validates one specification file.
func LoadFile(path string) (*Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification file %s: %w", path, err)
	}

	return Parse(CriterionIDFromPath(path), data)
}

// LoadDir loads every specification file in dir (non-recursive). All schema
// errors across all files are returned together.
func LoadDir(dir string) (Specifications, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification directory %s: %w", dir, err)
	}

	specs := make(Specifications)
	sources := make(map[string]string)

	var errs []error

	for _, entry := range entries {
		if entry.IsDir() || !specExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		id := CriterionIDFromPath(path)

		if prev, dup := sources[id]; dup {
			errs = append(errs, &SchemaError{
				Criterion: id,
				Code:      CodeDuplicate,
				Message:   fmt.Sprintf("specified by both %s and %s", prev, entry.Name()),
			})

			continue
		}

		sources[id] = entry.Name()

		spec, err := LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		specs[id] = spec
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return specs, nil
}
