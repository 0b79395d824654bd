package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "jotkeeper device", c.DeviceName)
	assert.Equal(t, "jotkeeper.db", c.DatabasePath)
	assert.Equal(t, 5*time.Second, c.PollInterval)
	assert.Equal(t, "us-east-1", c.RelayRegion)
	assert.Empty(t, c.RelayBucket)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "jotkeeper device", cfg.DeviceName)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
}
