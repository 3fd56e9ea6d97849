package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/patchc/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// pathList collects a repeatable path flag.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, ",")
}

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("patchc", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
patchc - Compiles Pd patch documents into flat DSP graphs.

Usage:
  patchc [options] PATCH_PATH

Arguments:
  PATCH_PATH
    Path to a YAML patch document.

Options:
`)
		flagSet.PrintDefaults()
	}

	var abstractions, manifests pathList
	flagSet.Var(&abstractions, "abstractions", "Directory searched for abstraction documents. Repeatable.")
	flagSet.Var(&manifests, "manifest", "HCL node type manifest file or directory. Repeatable.")
	outFlag := flagSet.String("o", "-", "Output file. '-' writes to stdout.")
	formatFlag := flagSet.String("format", "json", "Output format. Options: 'json', 'yaml', 'msgpack'.")
	resolvedFlag := flagSet.String("emit-resolved", "", "Write the patch with abstractions expanded to this YAML file.")
	validateFlag := flagSet.Bool("validate", false, "Fail when the graph contains a signal loop.")
	logFormatFlag := flagSet.String("log-format", "auto", "Log output format. Options: 'text', 'json' or 'auto'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := flagSet.Arg(0)
	if path == "" {
		slog.Debug("No patch path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %v", flagSet.Args()[1:])}
	}

	config, err := app.NewConfig(app.Config{
		PatchPath:        path,
		AbstractionPaths: abstractions,
		ManifestPaths:    manifests,
		OutputPath:       *outFlag,
		OutputFormat:     strings.ToLower(*formatFlag),
		EmitResolvedPath: *resolvedFlag,
		LogFormat:        strings.ToLower(*logFormatFlag),
		LogLevel:         strings.ToLower(*logLevelFlag),
		Validate:         *validateFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
