package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/vk/patchc/internal/abstraction"
	"github.com/vk/patchc/internal/compiler"
	"github.com/vk/patchc/internal/ctxlog"
	"github.com/vk/patchc/internal/manifest"
	"github.com/vk/patchc/internal/output"
	"github.com/vk/patchc/internal/patchfile"
	"github.com/vk/patchc/internal/pd"
	"github.com/vk/patchc/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	loader   abstraction.Loader
}

// NewApp is the constructor for the main application. Compiled output goes
// to outW unless the config names a file, logs go to logW.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	reg, err := manifest.BuildRegistry(ctx, cfg.ManifestPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load node types: %w", err)
	}
	logger.Debug("Node type registry built.", "count", len(reg.Types()))

	loader, err := patchfile.NewDirLoader(ctx, cfg.AbstractionPaths...)
	if err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loader:   loader,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run compiles the configured patch and writes the result.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "patch", a.config.PatchPath)

	doc, warnings, err := patchfile.Load(a.config.PatchPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		a.logger.Warn("Patch document warning.", "warning", w)
	}

	res, err := abstraction.Instantiate(ctx, doc, a.registry, a.loader)
	if err != nil {
		return fmt.Errorf("failed to instantiate abstractions: %w", err)
	}
	for nodeType, ws := range res.Warnings {
		for _, w := range ws {
			a.logger.Warn("Abstraction warning.", "type", nodeType, "warning", w)
		}
	}
	if !res.OK() {
		return res.Err()
	}
	a.logger.Debug("Abstractions instantiated.", "count", len(res.Abstractions))

	if a.config.EmitResolvedPath != "" {
		if err := a.emitResolved(res.Pd); err != nil {
			return err
		}
	}

	compilation, err := compiler.Compile(ctx, res.Pd, a.registry)
	if err != nil {
		return fmt.Errorf("failed to compile patch: %w", err)
	}

	if a.config.Validate {
		if err := compilation.Graph.SignalCycles(); err != nil {
			return fmt.Errorf("error validating graph: %w", err)
		}
		a.logger.Debug("Signal loop check passed.")
	}

	if err := a.write(compilation); err != nil {
		return err
	}

	a.logger.Info("Compilation finished.",
		"nodes", len(compilation.Graph.Nodes), "arrays", len(compilation.Arrays))
	return nil
}

func (a *App) write(c *compiler.Compilation) error {
	format, err := output.ParseFormat(a.config.OutputFormat)
	if err != nil {
		return err
	}
	if a.config.OutputPath == "" || a.config.OutputPath == "-" {
		return output.Write(a.outW, c, format)
	}

	f, err := os.Create(a.config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := output.Write(f, c, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *App) emitResolved(doc *pd.Pd) error {
	f, err := os.Create(a.config.EmitResolvedPath)
	if err != nil {
		return fmt.Errorf("failed to create resolved patch file: %w", err)
	}
	if err := patchfile.Encode(f, doc); err != nil {
		f.Close()
		return err
	}
	a.logger.Debug("Resolved patch written.", "path", a.config.EmitResolvedPath)
	return f.Close()
}
