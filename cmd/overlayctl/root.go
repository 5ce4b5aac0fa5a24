package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joshuapare/overlaykit/internal/logger"
	"github.com/joshuapare/overlaykit/overlay/manifest"
	"github.com/joshuapare/overlaykit/pkg/types"
)

var (
	// Global flags
	verbose      bool
	quiet        bool
	jsonOut      bool
	logDir       string
	manifestName string
	maxPayload   string
	strict       bool
	noColor      bool

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "overlayctl",
	Short: "Load, inspect and export sparse memory dumps",
	Long: `overlayctl works with memory dump directories: a segments.json manifest
listing compressed payload files and the address each one belongs at. It can
report what loads, list the resulting regions, read a composed window as a
hexdump, and re-export the regions as a clean dump.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write JSON logs to dated files in this directory")
	rootCmd.PersistentFlags().
		StringVar(&manifestName, "manifest", types.DefaultManifestName, "Manifest file name inside dump directories")
	rootCmd.PersistentFlags().
		StringVar(&maxPayload, "max-payload", "", "Largest decompressed segment to accept, e.g. 256MiB (default 1GiB)")
	rootCmd.PersistentFlags().
		BoolVar(&strict, "strict", false, "Cap decompressed segments at 64MiB")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	if noColor || jsonOut {
		color.NoColor = true
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	closeFn, err := logger.Init(logger.Options{
		Enabled: verbose || logDir != "",
		LogDir:  logDir,
		Level:   level,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	closeLog = closeFn
	return nil
}

// manifestOptions maps the global flags onto loader options.
func manifestOptions() (*manifest.Options, error) {
	opts := manifest.DefaultOptions()
	opts.ManifestName = manifestName
	if strict {
		opts.MaxPayloadSize = types.StrictMaxPayloadSize
	}
	if maxPayload != "" {
		n, err := humanize.ParseBytes(maxPayload)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-payload: %w", err)
		}
		if n > 1<<62 {
			return nil, fmt.Errorf("invalid --max-payload: %s is too large", maxPayload)
		}
		opts.MaxPayloadSize = int64(n)
	}
	return &opts, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func hexAddr(v uint64) string {
	return fmt.Sprintf("%#x", v)
}
