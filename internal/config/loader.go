package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"foreman/pkg/logging"
)

// Load reads configuration from path, layered over the defaults. A missing
// file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Info("Config", "no config file at %s, using defaults", path)
			return config, nil
		}
		return config, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := validate(config); err != nil {
		return config, err
	}

	logging.Debug("Config", "loaded configuration from %s", path)
	return config, nil
}

func validate(config Config) error {
	if config.Namespace == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	if config.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("checkIntervalSeconds must be positive, got %d", config.CheckIntervalSeconds)
	}
	if config.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be positive, got %d", config.TimeoutSeconds)
	}
	return nil
}
