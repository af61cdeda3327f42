package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Timeline   TimelineConfig   `yaml:"timeline"`
	Holiday    HolidayConfig    `yaml:"holiday"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// TimelineConfig holds the defaults of the timeline view: where a
// logical day starts and how wide the default window is.
type TimelineConfig struct {
	DayStartHour int    `yaml:"day_start_hour"`
	DaysBefore   int    `yaml:"days_before"`
	DaysAfter    int    `yaml:"days_after"`
	Region       string `yaml:"region"`
}

// HolidayConfig holds the holiday data source configuration.
type HolidayConfig struct {
	BaseURL         string        `yaml:"base_url"`
	TimeoutSeconds  int           `yaml:"timeout_seconds"`
	Timeout         time.Duration `yaml:"-"` // Ignored by YAML parser
	CacheTTLMinutes int           `yaml:"cache_ttl_minutes"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
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

	if cfg.Timeline.DayStartHour <= 0 || cfg.Timeline.DayStartHour > 23 {
		cfg.Timeline.DayStartHour = 7
	}
	if cfg.Timeline.DaysBefore <= 0 {
		cfg.Timeline.DaysBefore = 7
	}
	if cfg.Timeline.DaysAfter <= 0 {
		cfg.Timeline.DaysAfter = 21
	}
	if cfg.Timeline.Region == "" {
		cfg.Timeline.Region = "CN"
	}

	if cfg.Holiday.TimeoutSeconds <= 0 {
		cfg.Holiday.TimeoutSeconds = 10
	}
	cfg.Holiday.Timeout = time.Duration(cfg.Holiday.TimeoutSeconds) * time.Second

	if cfg.Holiday.CacheTTLMinutes <= 0 {
		cfg.Holiday.CacheTTLMinutes = 12 * 60
	}
	cfg.Holiday.CacheTTL = time.Duration(cfg.Holiday.CacheTTLMinutes) * time.Minute

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
