package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"device_name":      "Test device",
		"poll_interval":    "10s",
		"relay_bucket":     "test-bucket",
		"relay_endpoint":   "http://127.0.0.1:9000",
		"relay_access_key": "ak",
		"relay_secret_key": "sk",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "Test device", cfg.DeviceName)
		assert.Equal(t, 10*time.Second, cfg.PollInterval)
		assert.Equal(t, "test-bucket", cfg.RelayBucket)
		assert.Equal(t, "http://127.0.0.1:9000", cfg.RelayEndpoint)
		assert.Equal(t, "ak", cfg.RelayAccessKey)
		assert.Equal(t, "sk", cfg.RelaySecretKey)
	})

	t.Run("integer seconds accepted", func(t *testing.T) {
		path := writeTempJSON(t, dir, "seconds.json", map[string]any{
			"poll_interval": 30,
		})
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, 30*time.Second, cfg.PollInterval)
	})

	t.Run("empty values keep defaults", func(t *testing.T) {
		path := writeTempJSON(t, dir, "partial.json", map[string]any{
			"relay_bucket": "only-bucket",
		})
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "jotkeeper device", cfg.DeviceName)
		assert.Equal(t, 5*time.Second, cfg.PollInterval)
		assert.Equal(t, "only-bucket", cfg.RelayBucket)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			DeviceName:   "untouched",
			PollInterval: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "untouched", cfg.DeviceName)
		assert.Equal(t, 42*time.Second, cfg.PollInterval)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
