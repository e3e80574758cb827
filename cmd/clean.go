package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fotosite/internal/config"
	"fotosite/internal/logging"
)

var cleanOutput bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the build cache",
	Long: `Clean removes the cache directory, including the content manifest.
The next generate run starts from scratch and re-encodes everything.
With --output, the generated site is removed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if err := os.RemoveAll(cfg.CacheDir); err != nil {
			return fmt.Errorf("removing cache %s: %w", cfg.CacheDir, err)
		}
		logging.Info("Removed cache directory %s", cfg.CacheDir)

		if cleanOutput {
			if err := os.RemoveAll(cfg.OutputDir); err != nil {
				return fmt.Errorf("removing output %s: %w", cfg.OutputDir, err)
			}
			logging.Info("Removed output directory %s", cfg.OutputDir)
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanOutput, "output", false, "also remove the generated output directory")
	rootCmd.AddCommand(cleanCmd)
}
