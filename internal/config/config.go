package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rxops/checklist/internal/env"
)

// Config holds the worker configuration. All variables carry the RX_ prefix.
type Config struct {
	// Storage
	DBDriver string `env:"RX_DB_DRIVER" default:"postgres"` // postgres, sqlite
	DBDSN    string `env:"RX_DB_DSN"`

	// Scheduling
	HorizonDays      int           `env:"RX_HORIZON_DAYS" default:"14"`
	GenerateInterval time.Duration `env:"RX_GENERATE_INTERVAL" default:"1h"`
	StatusInterval   time.Duration `env:"RX_STATUS_INTERVAL" default:"5m"`
	OperationTimeout time.Duration `env:"RX_OPERATION_TIMEOUT" default:"30s"`

	// Business calendar
	Timezone string `env:"RX_TIMEZONE" default:"Australia/Sydney"`
	RestDays string `env:"RX_REST_DAYS" default:"sunday"` // comma-separated weekday names

	// Observability
	OTelEnabled bool `env:"RX_OTEL_ENABLED" default:"false"`
}

// Load parses environment variables into a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown RX_DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("RX_DB_DSN is required")
	}
	if c.HorizonDays < 1 {
		return fmt.Errorf("RX_HORIZON_DAYS must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.RestWeekdays(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured business timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid RX_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// RestWeekdays parses the configured rest days.
func (c *Config) RestWeekdays() ([]time.Weekday, error) {
	var days []time.Weekday
	for _, name := range strings.Split(c.RestDays, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("invalid RX_REST_DAYS entry %q", name)
		}
		days = append(days, day)
	}
	return days, nil
}
