package resolve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExportYAML serializes an index as a YAML document keyed by technique id.
// Keys are written in lexical order.
func ExportYAML(index Index) ([]byte, error) {
	if index == nil {
		index = Index{}
	}

	return yaml.Marshal(index)
}

// WriteFile writes the YAML export of index to path.
func WriteFile(index Index, path string) error {
	data, err := ExportYAML(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index file %s: %w", path, err)
	}

	return nil
}

// ParseExport reads an index previously written by ExportYAML.
func ParseExport(data []byte) (Index, error) {
	index := Index{}

	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse index YAML: %w", err)
	}

	return index, nil
}
