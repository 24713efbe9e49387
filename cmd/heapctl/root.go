package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap/sizeclass"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logFile string

	logCloser io.Closer

	numbers = message.NewPrinter(language.English)
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay allocator traces and inspect segregated-fit heaps",
	Long: `heapctl drives the segregated-fit allocator with allocation traces.
It replays traces against an in-memory or file-backed arena, runs the heap
consistency checker, dumps the resulting block map and free lists, and prints
the size-class directory.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser == nil {
			return nil
		}
		err := logCloser.Close()
		logCloser = nil
		return err
	},
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging enables the process logger when --log-file is given, or at
// debug level on stderr with --verbose.
func setupLogging() error {
	opts := logger.Options{
		Enabled: logFile != "" || verbose,
		File:    logFile,
		Level:   slog.LevelDebug,
	}
	closer, err := logger.Init(opts)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logCloser = closer
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		numbers.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		numbers.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// resolveConfig looks up a predefined size-class configuration by name.
func resolveConfig(name string) (sizeclass.Config, error) {
	cfg, ok := sizeclass.ConfigByName(name)
	if !ok {
		return sizeclass.Config{}, fmt.Errorf(
			"unknown config: %s (must be default, compact, or wide)", name)
	}
	return cfg, nil
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatNumber renders n with grouped digits.
func formatNumber(n int64) string {
	return numbers.Sprintf("%d", n)
}
