package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/jotkeeper/internal/flagx"
)

// jsonDuration lets JSON specify intervals either as strings like "5s" or as
// plain integer seconds.
type jsonDuration struct {
	time.Duration
}

func (d *jsonDuration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		d.Duration = time.Duration(val) * time.Second
		return nil
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration value %q", string(b))
	}
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling. After parsing,
// values are copied into the runtime Config.
type JsonConfig struct {
	DeviceName     string       `json:"device_name"`
	DatabasePath   string       `json:"database_path"`
	PollInterval   jsonDuration `json:"poll_interval"`
	RelayBucket    string       `json:"relay_bucket"`
	RelayRegion    string       `json:"relay_region"`
	RelayEndpoint  string       `json:"relay_endpoint"`
	RelayAccessKey string       `json:"relay_access_key"`
	RelaySecretKey string       `json:"relay_secret_key"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies set fields into the provided Config; empty JSON values keep
//     the defaults.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DeviceName != "" {
		cfg.DeviceName = jc.DeviceName
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.RelayBucket != "" {
		cfg.RelayBucket = jc.RelayBucket
	}
	if jc.RelayRegion != "" {
		cfg.RelayRegion = jc.RelayRegion
	}
	if jc.RelayEndpoint != "" {
		cfg.RelayEndpoint = jc.RelayEndpoint
	}
	if jc.RelayAccessKey != "" {
		cfg.RelayAccessKey = jc.RelayAccessKey
	}
	if jc.RelaySecretKey != "" {
		cfg.RelaySecretKey = jc.RelaySecretKey
	}
}
