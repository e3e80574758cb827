package cmd

import (
	"context"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fotosite/internal/config"
	"fotosite/internal/encoder"
	"fotosite/internal/manifest"
	"fotosite/internal/metrics"
	"fotosite/internal/preview"
)

var (
	serveNoWatch bool
	serveSkipGen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the generated site locally",
	Long: `Serve builds the site, then serves the output directory on a local
HTTP server. Unless --no-watch is given, the source tree is watched and
changes trigger an incremental rebuild.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		encoder.InitVips(cfg.EncoderThreads)
		defer encoder.ShutdownVips()
		enc := encoder.NewVips()

		metrics.InitializeMetrics(formatNames(cfg))
		metrics.SetAppInfo(version, commit, goVersion())

		store := manifest.NewStore(cfg.CacheDir)
		rebuild := func(ctx context.Context) error {
			_, err := runBuild(ctx, cfg, store, enc, false)
			return err
		}

		if !serveSkipGen {
			if _, err := runBuild(ctx, cfg, store, enc, true); err != nil {
				return err
			}
		}

		srv := preview.New(preview.Config{
			Host:      cfg.Preview.Host,
			Port:      cfg.Preview.Port,
			OutputDir: cfg.OutputDir,
			SourceDir: cfg.AbsSourceDir(),
			Watch:     !serveNoWatch,
			Version:   version,
		}, store, rebuild)

		collector := metrics.NewCollector(srv, time.Minute)
		collector.Start()
		defer collector.Stop()

		return srv.Run(ctx)
	},
}

func formatNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Formats))
	for format := range cfg.Formats {
		names = append(names, format)
	}
	sort.Strings(names)
	return names
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "serve without watching the source tree")
	serveCmd.Flags().BoolVar(&serveSkipGen, "skip-generate", false, "serve existing output without an initial build")
	rootCmd.AddCommand(serveCmd)
}
