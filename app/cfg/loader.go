package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server configuration
	Host string `long:"host" env:"HOST" default:"localhost" description:"Address to listen on"`
	Port string `long:"port" env:"PORT" default:"8000" description:"HTTP server port"`

	// Storage configuration
	StoragePath string `long:"storage-path" env:"STORAGE_PATH" required:"true" description:"Path to the SQLite database file"`

	// Synchronization configuration
	UpdateInterval int    `long:"update-seconds" env:"UPDATE_SECONDS" default:"3600" description:"Interval between feed update batches in seconds"`
	FetchTimeout   int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Per-fetch HTTP timeout in seconds"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"tagrss/1.0" description:"User agent string for feed fetches"`
	SeedFile       string `long:"seed-file" env:"SEED_FILE" description:"YAML file of feeds to register at startup (optional)"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Host:           raw.Host,
		Port:           raw.Port,
		StoragePath:    raw.StoragePath,
		UpdateInterval: raw.UpdateInterval,
		FetchTimeout:   raw.FetchTimeout,
		UserAgent:      raw.UserAgent,
		SeedFile:       raw.SeedFile,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
