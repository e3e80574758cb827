package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set at link time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func goVersion() string { return runtime.Version() }

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fotosite %s (commit %s, %s)\n", version, commit, goVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
