package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfigYAML reads a Config from a YAML file, filling in defaults for
// any field left unset.
func LoadConfigYAML(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read world config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse world config: %w", err)
	}

	return cfg, nil
}
