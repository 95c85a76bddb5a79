package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./eventsync.db" description:"Path to the sqlite database file"`

	// Application configuration
	VendorsDir        string `long:"vendors-dir" env:"VENDORS_DIR" default:"./vendors" description:"Directory containing vendor configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for import processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler tick interval in seconds"`
	ImportInterval    int    `long:"import-interval" env:"IMPORT_INTERVAL" default:"3600" description:"Seconds between import passes for a credential"`
	ImportStartDate   string `long:"import-start-date" env:"IMPORT_START_DATE" default:"2016-01-01" description:"Events starting before this date (YYYY-MM-DD) are skipped for RSVP import"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"EventSync/1.0" description:"User agent string for vendor API requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
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

	if _, err := time.Parse("2006-01-02", raw.ImportStartDate); err != nil {
		return nil, fmt.Errorf("invalid import start date %q: %w", raw.ImportStartDate, err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		VendorsDir:        raw.VendorsDir,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		ImportInterval:    raw.ImportInterval,
		ImportStartDate:   raw.ImportStartDate,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
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

// ImportStartTime returns the configured import start date as a UTC time.
func (c *Cfg) ImportStartTime() time.Time {
	t, err := time.Parse("2006-01-02", c.ImportStartDate)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
