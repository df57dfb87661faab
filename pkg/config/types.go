package config

import "time"

// Config is the root configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Valuation ValuationConfig `yaml:"valuation"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Feeds     []FeedConfig    `yaml:"feeds"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the API server component
type ServerConfig struct {
	HTTP      HTTPConfig `yaml:"http"`
	WebSocket WSConfig   `yaml:"websocket"`
}

// HTTPConfig configures the HTTP server
type HTTPConfig struct {
	Addr string    `yaml:"addr"`
	TLS  TLSConfig `yaml:"tls"`
}

// WSConfig configures the WebSocket server
type WSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TLSConfig holds TLS certificate configuration
type TLSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
}

// RefreshConfig configures the refresh cycle
type RefreshConfig struct {
	Interval Duration `yaml:"interval"` // Time between automatic refreshes
	Timeout  Duration `yaml:"timeout"`  // Deadline for a single refresh cycle
	Policy   string   `yaml:"policy"`   // Rate aggregation policy: min, mean or median
}

// ValuationConfig configures the valuation engine
type ValuationConfig struct {
	BlockSize int64   `yaml:"block_size"` // ISK per displayed block (default one billion)
	Epsilon   float64 `yaml:"epsilon"`    // Tie tolerance for best-row selection
}

// CatalogConfig configures where offer and plan documents are loaded from.
// URLs may be http(s) or local file paths. An empty plans_url disables plans.
type CatalogConfig struct {
	OffersURL string   `yaml:"offers_url"`
	PlansURL  string   `yaml:"plans_url"`
	Timeout   Duration `yaml:"timeout"`
}

// FeedConfig configures a rate feed
type FeedConfig struct {
	Type     string                 `yaml:"type"`
	Name     string                 `yaml:"name"`
	Enabled  bool                   `yaml:"enabled"`
	Priority int                    `yaml:"priority"`
	Config   map[string]interface{} `yaml:"config"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
