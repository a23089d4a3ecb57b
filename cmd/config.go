package cmd

import (
	"fmt"

	"trade-sync/internal/config"
	"trade-sync/internal/logging"
	"trade-sync/internal/store"

	"github.com/spf13/viper"
)

// loadConfig reads the validated run configuration from viper.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// openOutput builds the run logger from cfg.
func openOutput(cfg config.Config) (*logging.Output, error) {
	return logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
}

// newConnector assembles both connection strings.
func newConnector(cfg config.Config) (*store.Connector, error) {
	src, err := cfg.Source.ConnString()
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	tgt, err := cfg.Target.ConnString()
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	return &store.Connector{
		Source:         store.Endpoint{Driver: cfg.Source.Driver, DSN: src},
		Target:         store.Endpoint{Driver: cfg.Target.Driver, DSN: tgt},
		ConnectTimeout: cfg.ConnectTimeout,
		ParamLimit:     cfg.ParamLimit,
	}, nil
}

// describe renders an endpoint for logs without credentials.
func describe(d config.Database) string {
	if d.DSN != "" {
		return d.Driver + " (dsn)"
	}
	if d.Host == "" {
		return fmt.Sprintf("%s %s", d.Driver, d.Name)
	}
	return fmt.Sprintf("%s %s/%s", d.Driver, d.Host, d.Name)
}
