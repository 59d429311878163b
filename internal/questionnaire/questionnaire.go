// Package questionnaire loads question sets from YAML definitions.
package questionnaire

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"syntexapply/internal/model"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the built-in application questionnaire
func Default() (*model.Questionnaire, error) {
	return Parse(defaultYAML)
}

// Parse decodes and validates a YAML questionnaire
func Parse(data []byte) (*model.Questionnaire, error) {
	var q model.Questionnaire
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to parse questionnaire: %w", err)
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid questionnaire: %w", err)
	}
	return &q, nil
}

// LoadFile reads a questionnaire from a YAML file
func LoadFile(path string) (*model.Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire %s: %w", path, err)
	}
	return Parse(data)
}
