package config

import "time"

// Config holds runtime settings for the lexmail CLI.
//
// Fields:
//   - PortalBaseURL: scheme://host:port of the portal backend.
//   - RequestTimeout: per-request timeout on the HTTP transport.
//   - DatabasePath: sqlite file holding the persisted session.
type Config struct {
	PortalBaseURL  string
	RequestTimeout time.Duration
	DatabasePath   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.PortalBaseURL = "http://localhost:8000"
	c.RequestTimeout = 15 * time.Second
	c.DatabasePath = "lexmail.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
