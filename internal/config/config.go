package config

import "time"

// Config is the top-level application configuration
type Config struct {
	DataDir string        `mapstructure:"data_dir" json:"data_dir"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging"`
	History HistoryConfig `mapstructure:"history" json:"history"`
	Metrics MetricsConfig `mapstructure:"metrics" json:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
	Tools   ToolsConfig   `mapstructure:"tools" json:"tools"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level   string `mapstructure:"level" json:"level"`
	File    string `mapstructure:"file" json:"file"`
	Console bool   `mapstructure:"console" json:"console"`
	Pretty  bool   `mapstructure:"pretty" json:"pretty"`
}

// HistoryConfig configures the execution history backend
type HistoryConfig struct {
	Driver string `mapstructure:"driver" json:"driver"` // memory or sqlite
	Path   string `mapstructure:"path" json:"path"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Listen  string `mapstructure:"listen" json:"listen"`
}

// TracingConfig configures OpenTelemetry tracing
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled" json:"enabled"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}

// ToolsConfig configures tool execution defaults
type ToolsConfig struct {
	DefaultTimeout time.Duration `mapstructure:"default_timeout" json:"default_timeout"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
		History: HistoryConfig{
			Driver: "sqlite",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9464",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "armory",
		},
		Tools: ToolsConfig{
			DefaultTimeout: 30 * time.Second,
		},
	}
}
