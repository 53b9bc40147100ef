package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	PushURL     string
	DataDir     string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration
	SiteURL     string
	ExportDir   string
	Workers     int
	SearchRPS   float64
	SearchBurst int
	CORSOrigins []string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: os.Getenv("METRICS_ADDR"),    // empty: served on HTTP_ADDR only
		PushURL:     os.Getenv("PUSHGATEWAY_URL"), // empty: exporter keeps metrics local
		DataDir:     os.Getenv("DATA_DIR"),        // empty: embedded dataset
		RedisAddr:   os.Getenv("REDIS_ADDR"),      // empty: no cache
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 3600)) * time.Second,
		SiteURL:     env("SITE_URL", "https://airport-codes.example.com"),
		ExportDir:   env("EXPORT_DIR", "./out"),
		Workers:     atoi("EXPORT_WORKERS", 8),
		SearchRPS:   atof("SEARCH_RPS", 20),
		SearchBurst: atoi("SEARCH_BURST", 40),
		CORSOrigins: list(env("CORS_ORIGINS", "*")),
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
