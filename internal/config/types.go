package config

import "time"

// Config is the top-level configuration for foreman.
type Config struct {
	// Namespace all controllers created by this process are scoped to.
	Namespace string `yaml:"namespace,omitempty"`

	// LogDir is where retrieved job logs are stored.
	LogDir string `yaml:"logDir,omitempty"`

	// CheckIntervalSeconds is the completion poll interval.
	CheckIntervalSeconds int `yaml:"checkIntervalSeconds,omitempty"`

	// TimeoutSeconds bounds every completion wait.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`

	Session SessionConfig `yaml:"session"`
}

// SessionConfig carries the defaults for CLI execution sessions.
type SessionConfig struct {
	Image          string `yaml:"image,omitempty"`
	ServiceAccount string `yaml:"serviceAccount,omitempty"`
	Binary         string `yaml:"binary,omitempty"`
	AccountID      string `yaml:"accountId,omitempty"`
	Region         string `yaml:"region,omitempty"`
	OrgID          string `yaml:"orgId,omitempty"`

	// TokenEnv names the environment variable the access token is read
	// from at startup.
	TokenEnv string `yaml:"tokenEnv,omitempty"`
}

// CheckInterval returns the poll interval as a duration.
func (c Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// Timeout returns the wait timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Namespace:            "default",
		CheckIntervalSeconds: 10,
		TimeoutSeconds:       1800,
		Session: SessionConfig{
			TokenEnv: "FOREMAN_ACCESS_TOKEN",
		},
	}
}
