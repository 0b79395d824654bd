package config

import "time"

// Config holds runtime settings for the jotkeeper CLI.
//
// Fields:
//   - DeviceName: human-readable name shown to paired devices.
//   - DatabasePath: path to the local sqlite database file.
//   - PollInterval: how often the relay mailbox is polled.
//   - RelayBucket/RelayRegion/RelayEndpoint: the relay object store.
//     An empty bucket disables the relay; sync then needs a direct channel.
//   - RelayAccessKey/RelaySecretKey: static credentials for the relay.
//
// Units: PollInterval is a time.Duration (e.g., 5*time.Second).
type Config struct {
	DeviceName     string
	DatabasePath   string
	PollInterval   time.Duration
	RelayBucket    string
	RelayRegion    string
	RelayEndpoint  string
	RelayAccessKey string
	RelaySecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DeviceName = "jotkeeper device"
	c.DatabasePath = "jotkeeper.db"
	c.PollInterval = 5 * time.Second
	c.RelayRegion = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
