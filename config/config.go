package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Poller     PollerConfig     `yaml:"poller"`
	Database   DatabaseConfig   `yaml:"database"`
	Cabinets   CabinetsConfig   `yaml:"cabinets"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// PollerConfig holds the refresh loop configuration. The interval is
// user-adjustable at runtime; this is only the starting value.
type PollerConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

// DatabaseConfig holds the SQL Server connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// TabGroup declares one cupboard view tab: a display name plus the physical
// cupboard numbers (Cupboard.No) combined on that tab. Columns bounds the
// data-column count; 0 derives it from the door numbers in each snapshot.
type TabGroup struct {
	Name        string `yaml:"name"`
	CupboardNos []int  `yaml:"cupboard_nos"`
	Columns     int    `yaml:"columns"`
}

// CabinetsConfig maps device ids to cabinet roles and declares the fixed
// dispenser geometry. Empty device-id lists are tolerated: classification
// then falls back to the device-name filter in the store queries.
type CabinetsConfig struct {
	MaleShoeDeviceIDs   []string `yaml:"male_shoe_device_ids"`
	FemaleShoeDeviceIDs []string `yaml:"female_shoe_device_ids"`

	// Dispenser blocks are addressed consecutively starting here.
	AddressStart     int `yaml:"address_start"`
	MaleAddressCount int `yaml:"male_address_count"`
	FemAddressCount  int `yaml:"female_address_count"`

	ShoeCupboardTabs []TabGroup `yaml:"shoe_cupboard_tabs"`
	WardrobeTabs     []TabGroup `yaml:"wardrobe_tabs"`
}

// PushConfig holds the VAPID keys for web push lock alerts.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// MinIntervalSeconds and MaxIntervalSeconds bound the poll interval, both in
// the config file and when adjusted at runtime through the API.
const (
	MinIntervalSeconds = 1
	MaxIntervalSeconds = 60
)

// ClampInterval forces an interval into the allowed 1..60s range.
func ClampInterval(seconds int) int {
	if seconds < MinIntervalSeconds {
		return MinIntervalSeconds
	}
	if seconds > MaxIntervalSeconds {
		return MaxIntervalSeconds
	}
	return seconds
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn must be set")
	}

	if cfg.Poller.IntervalSeconds <= 0 {
		cfg.Poller.IntervalSeconds = 3
	}
	cfg.Poller.IntervalSeconds = ClampInterval(cfg.Poller.IntervalSeconds)

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Cabinets.AddressStart <= 0 {
		cfg.Cabinets.AddressStart = 64
	}
	if cfg.Cabinets.MaleAddressCount <= 0 {
		cfg.Cabinets.MaleAddressCount = 5
	}
	if cfg.Cabinets.FemAddressCount <= 0 {
		cfg.Cabinets.FemAddressCount = 4
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
