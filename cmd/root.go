package cmd

import (
	"github.com/spf13/cobra"

	"fotosite/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fotosite",
	Short: "An incremental static site generator for photo portfolios",
	Long: `Fotosite turns a directory tree of photographs into a static gallery
site. Scans are incremental: unchanged files cost a stat call, and
already-encoded variants are never re-encoded until the source file or
the processing configuration changes.

Quick Start:
  fotosite generate               Build the site into the output directory
  fotosite serve                  Preview locally and rebuild on change
  fotosite clean                  Start over from an empty cache`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(applyLogLevel)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is fotosite.yml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
}

// applyLogLevel maps the --log-level flag onto the logging package. An
// empty flag leaves the LOG_LEVEL/DEBUG environment resolution in place.
func applyLogLevel() {
	switch logLevel {
	case "":
	case "debug":
		logging.SetLevel(logging.LevelDebug)
	case "info":
		logging.SetLevel(logging.LevelInfo)
	case "warn", "warning":
		logging.SetLevel(logging.LevelWarn)
	case "error":
		logging.SetLevel(logging.LevelError)
	default:
		logging.Warn("Unknown log level %q, keeping default", logLevel)
	}
}
