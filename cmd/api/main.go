package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "airport_codes/internal/adapters/http_server"
	"airport_codes/internal/adapters/observability"
	redisad "airport_codes/internal/adapters/redis"
	"airport_codes/internal/app"
	"airport_codes/internal/catalog"
	"airport_codes/internal/domain"
	"airport_codes/internal/shared"
	"airport_codes/internal/storage/dataset"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	metricsSrv, err := observability.Serve(cfg.MetricsAddr, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("metrics server failed")
	}

	// dataset is loaded once; any failure here is fatal
	ds, err := dataset.Load(dataset.WithDir(cfg.DataDir))
	if err != nil {
		log.Fatal().Err(err).Msg("dataset load failed")
	}
	observability.SetDatasetSize(len(ds.Airports), len(ds.Countries))
	cat := catalog.New(ds.Airports, ds.Countries)

	// optional redis page cache
	var cache domain.Cache
	var closers []func() error
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "airports:"+ds.Version)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, serving uncached")
			_ = rc.Close()
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache ok")
			cache = rc
			closers = append(closers, rc.Close)
		}
		cancel()
	}
	pages := app.NewPageService(cat, cache, cfg.CacheTTL)

	// http
	srv := server.New(server.Options{
		CORSOrigins: cfg.CORSOrigins,
		SearchRPS:   cfg.SearchRPS,
		SearchBurst: cfg.SearchBurst,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{P: pages, SiteURL: cfg.SiteURL, BuiltAt: time.Now()})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("dataset", ds.Version).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("metrics shutdown failed")
		}
	}
	for _, c := range closers {
		if err := c(); err != nil {
			log.Error().Err(err).Msg("close failed")
		}
	}
	log.Info().Msg("api stopped")
}
