package shared_test

import (
	"testing"
	"time"

	"airport_codes/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_ADDR", "DATA_DIR", "REDIS_ADDR", "CACHE_TTL_SECONDS", "EXPORT_WORKERS", "CORS_ORIGINS", "SEARCH_RPS", "PUSHGATEWAY_URL"} {
		t.Setenv(k, "")
	}
	c := shared.Load()
	if c.AppEnv != "prod" || c.HTTPAddr != ":8080" || c.DataDir != "" || c.RedisAddr != "" || c.PushURL != "" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.CacheTTL != time.Hour || c.Workers != 8 || c.SearchRPS != 20 {
		t.Fatalf("unexpected numeric defaults: %+v", c)
	}
	if len(c.CORSOrigins) != 1 || c.CORSOrigins[0] != "*" {
		t.Fatalf("cors: %v", c.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("EXPORT_WORKERS", "0")
	t.Setenv("SEARCH_RPS", "2.5")
	t.Setenv("REDIS_DB", "oops")
	t.Setenv("CORS_ORIGINS", "https://a.test, ,https://b.test")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgw:9091")

	c := shared.Load()
	if c.CacheTTL != time.Minute {
		t.Fatalf("ttl = %v", c.CacheTTL)
	}
	if c.Workers != 1 {
		t.Fatalf("workers = %d", c.Workers)
	}
	if c.SearchRPS != 2.5 || c.RedisDB != 0 {
		t.Fatalf("rps=%v db=%d", c.SearchRPS, c.RedisDB)
	}
	if len(c.CORSOrigins) != 2 || c.CORSOrigins[1] != "https://b.test" {
		t.Fatalf("cors: %v", c.CORSOrigins)
	}
	if c.PushURL != "http://pushgw:9091" {
		t.Fatalf("push url = %q", c.PushURL)
	}
}
