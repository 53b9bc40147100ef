//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	server "airport_codes/internal/adapters/http_server"
	redisad "airport_codes/internal/adapters/redis"
	"airport_codes/internal/app"
	"airport_codes/internal/catalog"
	"airport_codes/internal/storage/dataset"
	"airport_codes/internal/storage/files"
)

// ---------- helpers ----------

const airportsJSON = `[
  {"iata":"AAA","icao":"ZAAA","name":"Alpha International","city":"Alphaville","country":"Alphaland","countryCode":"XA","latitude":10.0,"longitude":20.0,"timezone":"Etc/UTC"},
  {"iata":"AAB","icao":"ZAAB","name":"Alpha Regional","city":"Betatown","country":"Alphaland","countryCode":"XA","latitude":10.5,"longitude":20.5,"timezone":"Etc/UTC"},
  {"iata":"BBB","icao":"ZBBB","name":"Bravo Field","city":"Bravo City","country":"Bravonia","countryCode":"XB","latitude":-5.0,"longitude":40.0,"timezone":"Etc/UTC"}
]`

const countriesJSON = `[
  {"code":"XA","name":"Alphaland","continent":"Europe"},
  {"code":"XB","name":"Bravonia","continent":"Africa"},
  {"code":"XC","name":"Charlia","continent":"Asia"}
]`

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		dataset.AirportsFile:  airportsJSON,
		dataset.CountriesFile: countriesJSON,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func getJSON(t *testing.T, url string, dst any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK && dst != nil {
		if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

// ---------- the tests ----------

func TestHTTP_EndToEnd_CachedPages(t *testing.T) {
	ds, err := dataset.Load(dataset.WithDir(writeDataset(t)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0, "airports:"+ds.Version)
	t.Cleanup(func() { _ = cache.Close() })

	pages := app.NewPageService(catalog.New(ds.Airports, ds.Countries), cache, time.Hour)
	srv := server.New(server.Options{})
	srv.MountHandlers(&server.Handlers{P: pages, SiteURL: "https://e2e.test", BuiltAt: time.Now()})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	var ap app.AirportPage
	if code := getJSON(t, ts.URL+"/v1/airports/zaaa", &ap); code != http.StatusOK {
		t.Fatalf("airport status %d", code)
	}
	if ap.Airport.IATA != "AAA" || len(ap.Nearby) != 1 || ap.Nearby[0].IATA != "AAB" {
		t.Fatalf("unexpected airport page: %+v", ap)
	}
	if ap.Nearby[0].DistanceKm <= 0 {
		t.Fatalf("distance not computed: %+v", ap.Nearby[0])
	}

	key := fmt.Sprintf("airports:%s:page:airport:ZAAA", ds.Version)
	if !mr.Exists(key) {
		t.Fatalf("expected %s in redis, have %v", key, mr.Keys())
	}

	// a second request is served from redis
	var again app.AirportPage
	getJSON(t, ts.URL+"/v1/airports/ZAAA", &again)
	if again.Airport != ap.Airport || again.Geohash != ap.Geohash {
		t.Fatalf("cached page differs: %+v", again)
	}

	if code := getJSON(t, ts.URL+"/v1/countries/xc", nil); code != http.StatusNotFound {
		t.Fatalf("country without airports: %d", code)
	}
	if code := getJSON(t, ts.URL+"/v1/airports/nope", nil); code != http.StatusNotFound {
		t.Fatalf("unknown airport: %d", code)
	}
	for _, k := range mr.Keys() {
		if k == fmt.Sprintf("airports:%s:page:airport:NOPE", ds.Version) {
			t.Fatal("not-found page was cached")
		}
	}

	var sr app.SearchResult
	getJSON(t, ts.URL+"/v1/search?q=ALPHA", &sr)
	if sr.Total != 2 || sr.Query != "ALPHA" {
		t.Fatalf("search = %+v", sr)
	}
}

func TestExport_EndToEnd_Files(t *testing.T) {
	ds, err := dataset.Load(dataset.WithDir(writeDataset(t)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	pages := app.NewPageService(catalog.New(ds.Airports, ds.Countries), nil, 0)
	out := filepath.Join(t.TempDir(), "site")
	sink, err := files.New(out)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}

	m, err := app.NewExportService(pages, sink).Build(context.Background(), app.ExportOptions{
		SiteURL: "https://e2e.test", Workers: 2, DatasetVersion: ds.Version,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []string{
		"index.json", "search-index.json", "sitemap.xml", "manifest.json",
		"airport/aaa.json", "airport/aab.json", "airport/bbb.json",
		"country/xa.json", "country/xb.json",
	}
	for _, f := range want {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(f))); err != nil {
			t.Fatalf("missing %s: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "country", "xc.json")); !os.IsNotExist(err) {
		t.Fatalf("country without airports exported (err=%v)", err)
	}
	if len(m.Files) != len(want)-1 {
		t.Fatalf("manifest files = %v", m.Files)
	}

	raw, err := os.ReadFile(filepath.Join(out, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var got app.Manifest
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if got.DatasetVersion != ds.Version || got.Pages["airport"] != 3 || got.Pages["country"] != 2 {
		t.Fatalf("manifest = %+v", got)
	}
}
