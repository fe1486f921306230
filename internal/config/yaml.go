package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// parseYAML overlays the keys present in the file onto config.
// Durations are written as Go duration strings ("24h", "90m").
func parseYAML(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}
