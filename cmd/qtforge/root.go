package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/qtforge/internal/adapters/logging"
	"github.com/felixgeelhaar/qtforge/internal/app"
	"github.com/felixgeelhaar/qtforge/internal/domain/config"
	"github.com/felixgeelhaar/qtforge/internal/domain/stage"
	"github.com/felixgeelhaar/qtforge/internal/ports"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "qtforge",
	Short: "Build Qt from a source archive",
	Long: `qtforge unpacks a Qt source archive, sets up the compiler SDK for the
target architecture and runs Qt's configure with a fixed feature flag set:
  Validate → Unpack → Environment → Configure → Build`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and prints any error it returns.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "build config file (YAML or TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// exitCode maps an error returned by Execute to the process exit code.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

// newLogger creates the console logger selected by the global flags.
func newLogger(w io.Writer) (ports.Logger, error) {
	level, err := ports.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = ports.LevelDebug
	}

	var jsonFormat bool
	switch strings.ToLower(logFormat) {
	case "text", "":
	case "json":
		jsonFormat = true
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text or json)", logFormat)
	}

	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonFormat),
		logging.WithColor(!jsonFormat && isTerminal(w)),
	), nil
}

// newForge creates the application with logs on stderr and child process
// output on out.
func newForge(out io.Writer) (*app.Forge, error) {
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	return app.New(out, logger), nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	var list *config.ErrorList
	if errors.As(err, &list) {
		return list.Report()
	}

	var stageErr *stage.Error
	if errors.As(err, &stageErr) {
		msg := stageErr.Error()
		if stageErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", stageErr.Suggestion)
		}
		if verbose {
			msg = stageErr.Report()
			if stageErr.Underlying != nil {
				msg += fmt.Sprintf("\n\nTechnical details: %v", stageErr.Underlying)
			}
		}
		return msg
	}

	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"text\tHuman-readable lines",
			"json\tOne JSON object per line",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
