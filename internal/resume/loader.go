package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a resume from path. The format is chosen by extension:
// .yaml and .yml are parsed as YAML, anything else as JSON.
func Load(path string) (*Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	r, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse resume %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes data as YAML when ext is .yaml/.yml and as JSON otherwise.
func Parse(data []byte, ext string) (*Resume, error) {
	var r Resume
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&r); err != nil {
			return nil, err
		}
	}
	return &r, nil
}
