package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Namespace)
	assert.Equal(t, 10*time.Second, cfg.CheckInterval())
	assert.Equal(t, 30*time.Minute, cfg.Timeout())
	assert.Equal(t, "FOREMAN_ACCESS_TOKEN", cfg.Session.TokenEnv)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
namespace: batch
checkIntervalSeconds: 5
session:
  image: registry.example.com/cluster-cli:1.2.3
  region: eu-west-1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "batch", cfg.Namespace)
	assert.Equal(t, 5*time.Second, cfg.CheckInterval())
	// Unset fields keep their defaults.
	assert.Equal(t, 1800, cfg.TimeoutSeconds)
	assert.Equal(t, "registry.example.com/cluster-cli:1.2.3", cfg.Session.Image)
	assert.Equal(t, "eu-west-1", cfg.Session.Region)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "namespace: [broken")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty namespace", "namespace: \"\""},
		{"negative interval", "checkIntervalSeconds: -1"},
		{"zero timeout", "timeoutSeconds: -5"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, test.content))
			assert.Error(t, err)
		})
	}
}
