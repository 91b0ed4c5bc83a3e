package envdata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/greenloop-ai/ecoscan/internal/model"
)

// FileSource loads the catalog from a YAML file mapping item keys to facts.
type FileSource struct {
	Path string
}

// Load reads and parses the YAML catalog file.
func (s FileSource) Load() (map[string]model.EnvironmentalFact, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("envdata: read %s: %w", s.Path, err)
	}
	var facts map[string]model.EnvironmentalFact
	if err := yaml.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("envdata: parse %s: %w", s.Path, err)
	}
	if len(facts) == 0 {
		return nil, fmt.Errorf("envdata: %s contains no entries", s.Path)
	}
	return facts, nil
}
