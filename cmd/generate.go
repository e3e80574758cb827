package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fotosite/internal/config"
	"fotosite/internal/encoder"
	"fotosite/internal/logging"
	"fotosite/internal/manifest"
)

var generateFallbackEncoder bool

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen", "build"},
	Short:   "Scan the source tree and encode image variants",
	Long: `Generate scans the source tree, refreshes the content manifest, and
encodes every missing or outdated image variant into the output
directory. Interrupting with Ctrl-C is safe: completed items are saved
and the next run picks up where this one stopped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var enc encoder.Encoder
		if generateFallbackEncoder {
			logging.Info("Using pure-Go fallback encoder")
			enc = encoder.NewFallback()
		} else {
			encoder.InitVips(cfg.EncoderThreads)
			defer encoder.ShutdownVips()
			enc = encoder.NewVips()
		}

		store := manifest.NewStore(cfg.CacheDir)
		result, err := runBuild(ctx, cfg, store, enc, true)
		if err != nil {
			return err
		}
		if result.HardFailed() {
			return fmt.Errorf("%d items failed to encode", result.Failed)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&generateFallbackEncoder, "fallback-encoder", false,
		"use the pure-Go encoder instead of libvips (jpg and png only)")
	rootCmd.AddCommand(generateCmd)
}
