// Package config loads runtime configuration for the jotkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-n string   device name shown to paired devices
//	-f string   path to the local database file
//	-i int      relay poll interval (seconds)
//	-b string   relay bucket name
//	-e string   relay endpoint URL
//
// # JSON schema
//
// Intervals can be either strings like "5s" or integer seconds:
//
//	{
//	  "device_name": "Alice's laptop",
//	  "database_path": "/home/alice/.jotkeeper/jotkeeper.db",
//	  "poll_interval": "5s",
//	  "relay_bucket": "jotkeeper-relay",
//	  "relay_region": "us-east-1",
//	  "relay_endpoint": "http://127.0.0.1:9000",
//	  "relay_access_key": "...",
//	  "relay_secret_key": "..."
//	}
//
// Primary API
//
//   - type Config                     — holds device, database and relay settings
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
