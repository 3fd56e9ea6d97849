package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/patchc/internal/output"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PatchPath        string   // YAML patch document
	AbstractionPaths []string // directories searched for abstractions
	ManifestPaths    []string // hcl node type manifests

	// OutputPath receives the compiled graph. Empty or "-" means the
	// app's output writer.
	OutputPath   string
	OutputFormat string
	// EmitResolvedPath, when set, receives the patch document after
	// abstraction instantiation.
	EmitResolvedPath string

	LogFormat string
	LogLevel  string
	// Validate rejects graphs with signal feedback loops.
	Validate bool
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json", "auto"}
)

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PatchPath == "" {
		return nil, errors.New("PatchPath is a required configuration field and cannot be empty")
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = string(output.JSON)
	}
	if _, err := output.ParseFormat(cfg.OutputFormat); err != nil {
		return nil, err
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log level '%s'", cfg.LogLevel)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "auto"
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log format '%s'", cfg.LogFormat)
	}
	return &cfg, nil
}
