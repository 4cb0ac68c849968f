package main

import (
	"fmt"
	"os"

	"canvashost/pkg/config"
	"canvashost/pkg/logging"
	"canvashost/pkg/ops"
)

// Globals contains flags shared by every command.
type Globals struct {
	// Config is the configuration file. The XDG location is used when empty.
	Config string `short:"c" type:"path" help:"Configuration file. Defaults to $XDG_CONFIG_HOME/canvashost/config.yaml."`
	// LogLevel overrides log.level from the configuration file.
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error)."`
}

// setup loads the configuration, installs the logger, and builds a
// dispatcher over a fresh registry.
func (g Globals) setup() (*ops.Dispatcher, error) {
	cfg, err := config.LoadOptional(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}

	logger, err := logging.NewTextLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logging.SetLogger(logger)

	return ops.FromConfig(cfg)
}
