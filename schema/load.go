package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a catalog document. format is "json", "yaml" or "" to
// sniff: a document whose first non-space byte is '{' is JSON, anything
// else is YAML. The result is validated.
func Parse(data []byte, format string) (*Catalog, error) {
	if format == "" {
		format = sniffFormat(data)
	}

	cat := &Catalog{}
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, cat); err != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cat); err != nil {
			return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown catalog format %q", format)
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// LoadFile reads a catalog from disk; the extension picks the format.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	format := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = "json"
	case ".yaml", ".yml":
		format = "yaml"
	}
	return Parse(data, format)
}

// Marshal encodes a catalog in the given format ("json" or "yaml").
func Marshal(cat *Catalog, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(cat)
	default:
		return json.MarshalIndent(cat, "", "  ")
	}
}

func sniffFormat(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return "json"
	}
	return "yaml"
}
