package config

import (
	"fmt"
	"net"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogLevel validates a logging level
func (v *Validator) ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", level)
	}
}

// ValidateHistoryDriver validates the history backend driver
func (v *Validator) ValidateHistoryDriver(driver string) error {
	switch driver {
	case "memory", "sqlite":
		return nil
	default:
		return fmt.Errorf("invalid history driver %q (must be memory or sqlite)", driver)
	}
}

// ValidateListenAddr validates a host:port listen address
func (v *Validator) ValidateListenAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	return nil
}

// Validate checks the full configuration
func (v *Validator) Validate(cfg *Config) error {
	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		return err
	}
	if err := v.ValidateHistoryDriver(cfg.History.Driver); err != nil {
		return err
	}
	if cfg.History.Driver == "sqlite" && cfg.History.Path == "" {
		return fmt.Errorf("history path is required for the sqlite driver")
	}
	if cfg.Metrics.Enabled {
		if err := v.ValidateListenAddr(cfg.Metrics.Listen); err != nil {
			return err
		}
	}
	if cfg.Tracing.Enabled && cfg.Tracing.ServiceName == "" {
		return fmt.Errorf("tracing service name cannot be empty")
	}
	return nil
}
