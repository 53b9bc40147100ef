package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"airport_codes/internal/adapters/observability"
	"airport_codes/internal/app"
	"airport_codes/internal/catalog"
	"airport_codes/internal/shared"
	"airport_codes/internal/storage/dataset"
	"airport_codes/internal/storage/files"
)

var (
	cfg      = shared.Load()
	dataDir  string
	outDir   string
	siteURL  string
	workers  int
	logLevel string
	pushURL  string
)

var rootCmd = &cobra.Command{
	Use:          "exporter",
	Short:        "Static export of the airport code pages",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = observability.NewLogger(cfg.AppEnv, logLevel)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render every page as JSON plus search index, sitemap and manifest",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the static route parameters as JSON",
	Args:  cobra.NoArgs,
	RunE:  runRoutes,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", cfg.DataDir, "Directory overriding the embedded airports.json/countries.json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")
	buildCmd.Flags().StringVarP(&outDir, "out", "o", cfg.ExportDir, "Output directory")
	buildCmd.Flags().StringVar(&siteURL, "site-url", cfg.SiteURL, "Absolute site URL used in the sitemap")
	buildCmd.Flags().IntVarP(&workers, "workers", "w", cfg.Workers, "Concurrent page writers")
	buildCmd.Flags().StringVar(&pushURL, "pushgateway", cfg.PushURL, "Pushgateway URL for build metrics (empty: no push)")
	rootCmd.AddCommand(buildCmd, routesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func loadPages() (*app.PageService, *dataset.Dataset, error) {
	ds, err := dataset.Load(dataset.WithDir(dataDir))
	if err != nil {
		return nil, nil, err
	}
	return app.NewPageService(catalog.New(ds.Airports, ds.Countries), nil, 0), ds, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	pages, ds, err := loadPages()
	if err != nil {
		return err
	}
	sink, err := files.New(outDir)
	if err != nil {
		return err
	}

	log.Info().Str("out", sink.Root()).Str("dataset", ds.Version).Int("workers", workers).Msg("exporter starting")
	m, err := app.NewExportService(pages, sink).Build(cmd.Context(), app.ExportOptions{
		SiteURL:        siteURL,
		Workers:        workers,
		DatasetVersion: ds.Version,
	})
	pushMetrics(cmd, ds, m)
	if err != nil {
		log.Error().Err(err).Msg("export failed")
		return err
	}
	cmd.Printf("wrote %d files to %s (build %s)\n", len(m.Files)+1, sink.Root(), m.BuildID)
	return nil
}

// pushMetrics reports the build to the Pushgateway. A failed push is logged,
// never fatal.
func pushMetrics(cmd *cobra.Command, ds *dataset.Dataset, m app.Manifest) {
	if pushURL == "" {
		return
	}
	reg := observability.InitRegistry()
	observability.SetDatasetSize(len(ds.Airports), len(ds.Countries))
	for kind, n := range m.Pages {
		observability.ObserveExport(kind, n)
	}
	if err := observability.Push(cmd.Context(), pushURL, "airports_exporter", reg); err != nil {
		log.Warn().Err(err).Msg("metrics push failed")
		return
	}
	log.Info().Str("url", pushURL).Msg("metrics pushed")
}

func runRoutes(cmd *cobra.Command, args []string) error {
	pages, _, err := loadPages()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(pages.Routes())
}
