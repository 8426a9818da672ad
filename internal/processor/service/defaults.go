package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fitit-backend/internal/processor/geometry"
	"fitit-backend/internal/processor/models"
)

// ============================================================
// Processing defaults
// ============================================================

// ProcessingDefaults bundles the operator tunables loaded from
// config/processing.yaml: tessellation options for the normalizer
// and fallback extrusion parameters for requests that carry none.
type ProcessingDefaults struct {
	Geometry   geometry.Options       `yaml:"geometry"`
	Parameters models.AgentParameters `yaml:"parameters"`
}

// LoadDefaults reads and parses the processing defaults file.
// Partial files are fine, missing parameter fields fall back to
// the built-in values.
func LoadDefaults(path string) (*ProcessingDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read processing defaults: %w", err)
	}
	defaults := ProcessingDefaults{
		Geometry: geometry.DefaultOptions(),
	}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("parse processing defaults: %w", err)
	}
	defaults.Parameters = defaults.Parameters.Sanitized()
	return &defaults, nil
}

// BuiltinDefaults returns the compiled-in tunables, used when no
// defaults file is deployed.
func BuiltinDefaults() *ProcessingDefaults {
	return &ProcessingDefaults{
		Geometry:   geometry.DefaultOptions(),
		Parameters: models.DefaultParameters(),
	}
}
