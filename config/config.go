package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Location LocationConfig `yaml:"location"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Search   SearchConfig   `yaml:"search"`
	Session  SessionConfig  `yaml:"session"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// BackendConfig points at the parking REST API the dashboard consumes.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GeocoderConfig holds settings for the Nominatim free-text geocoder.
type GeocoderConfig struct {
	BaseURL         string `yaml:"base_url"`
	UserAgent       string `yaml:"user_agent"`
	RequestsPerSec  int    `yaml:"requests_per_sec"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
}

// LocationConfig tunes device position acquisition and its fallback.
type LocationConfig struct {
	SingleShotTimeoutSeconds int     `yaml:"single_shot_timeout_seconds"`
	WatchTimeoutSeconds      int     `yaml:"watch_timeout_seconds"`
	FallbackLatitude         float64 `yaml:"fallback_latitude"`
	FallbackLongitude        float64 `yaml:"fallback_longitude"`
}

// RefreshConfig controls the background nearby-lot refresh.
type RefreshConfig struct {
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// SearchConfig tunes the search-as-you-type suggestion cycle.
type SearchConfig struct {
	DebounceMillis int           `yaml:"debounce_millis"`
	Debounce       time.Duration `yaml:"-"`
	MinQueryChars  int           `yaml:"min_query_chars"`
	MaxSuggestions int           `yaml:"max_suggestions"`
}

// SessionConfig controls dashboard session lifetime.
type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes"`
}

// DatabaseConfig holds the preference store connection configuration.
// A sqlite file path or a postgres DSN are both accepted.
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
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in zero values with working defaults. Exported so tests
// can build configs without a YAML file.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}

	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = 15
	}

	if cfg.Geocoder.BaseURL == "" {
		cfg.Geocoder.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Geocoder.UserAgent == "" {
		cfg.Geocoder.UserAgent = "parkview-dashboard/1.0"
	}
	if cfg.Geocoder.RequestsPerSec <= 0 {
		cfg.Geocoder.RequestsPerSec = 1
	}
	if cfg.Geocoder.TimeoutSeconds <= 0 {
		cfg.Geocoder.TimeoutSeconds = 10
	}
	if cfg.Geocoder.CacheTTLMinutes <= 0 {
		cfg.Geocoder.CacheTTLMinutes = 60
	}

	if cfg.Location.SingleShotTimeoutSeconds <= 0 {
		cfg.Location.SingleShotTimeoutSeconds = 10
	}
	if cfg.Location.WatchTimeoutSeconds <= 0 {
		cfg.Location.WatchTimeoutSeconds = 8
	}

	if cfg.Refresh.IntervalSeconds <= 0 {
		cfg.Refresh.IntervalSeconds = 15
	}
	cfg.Refresh.Interval = time.Duration(cfg.Refresh.IntervalSeconds) * time.Second

	if cfg.Search.DebounceMillis <= 0 {
		cfg.Search.DebounceMillis = 400
	}
	cfg.Search.Debounce = time.Duration(cfg.Search.DebounceMillis) * time.Millisecond
	if cfg.Search.MinQueryChars <= 0 {
		cfg.Search.MinQueryChars = 2
	}
	if cfg.Search.MaxSuggestions <= 0 {
		cfg.Search.MaxSuggestions = 5
	}

	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 30
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "parkview.db"
	}
}
