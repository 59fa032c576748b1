package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/domkit/internal/config"
	"github.com/vango-dev/domkit/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌┬┐┌─┐┌┬┐┬┌─┬┌┬┐
   │││ ││││├┴┐│ │
  ─┴┘└─┘┴ ┴┴ ┴┴ ┴
`

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "domkit",
		Short: "Build DOM trees, show toasts, and normalize request failures",
		Long: `domkit builds element trees from JSON descriptions, renders them to
HTML, and talks to HTTP endpoints with failures normalized into
problem details.

  • render   turn a description into markup
  • fetch    send a request and print the body or the problem
  • serve    run the demo page with live toasts`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to domkit.json (default: nearest one above the working directory)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides domkit.json)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(),
		renderCmd(flags),
		fetchCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the configuration named by --config, or the nearest
// domkit.json, and installs the default logger at the configured level.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromFile(flags.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	return cfg, nil
}

func printError(w io.Writer, err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "\033[31mError:\033[0m %s\n", err)
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
