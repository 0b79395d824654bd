package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/jotkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-n string   device name shown to paired devices
//	-f string   path to the local database file
//	-i int      relay poll interval in seconds (default from Config)
//	-b string   relay bucket name
//	-e string   relay endpoint URL (for self-hosted object stores)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-n", "-f", "-i", "-b", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DeviceName, "n", cfg.DeviceName, "device name shown to paired devices")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "path to the local database file")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "relay poll interval (in seconds)")
	fs.StringVar(&cfg.RelayBucket, "b", cfg.RelayBucket, "relay bucket name")
	fs.StringVar(&cfg.RelayEndpoint, "e", cfg.RelayEndpoint, "relay endpoint URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
