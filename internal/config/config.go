package config

import (
	"time"
)

// Version defines the gpstime version.
var Version string

// Config defines the configuration structure.
type Config struct {
	General struct {
		LogLevel int `mapstructure:"log_level"`
	} `mapstructure:"general"`

	LeapData struct {
		// File overrides the source resolution order with a single
		// explicit leap-second table file.
		File string `mapstructure:"file"`

		URL            string        `mapstructure:"url"`
		CacheFile      string        `mapstructure:"cache_file"`
		SystemFiles    []string      `mapstructure:"system_files"`
		Update         string        `mapstructure:"update"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"leap_data"`
}

// Update policy values for LeapData.Update.
const (
	UpdateAuto  = "auto"
	UpdateForce = "force"
	UpdateNever = "never"
)

// C holds the global configuration.
var C Config
