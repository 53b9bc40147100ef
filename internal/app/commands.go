package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"airport_codes/internal/domain"
)

// Files written by a static build, relative to the output root.
const (
	IndexFile       = "index.json"
	SearchIndexFile = "search-index.json"
	SitemapFile     = "sitemap.xml"
	ManifestFile    = "manifest.json"
)

type ExportOptions struct {
	SiteURL        string
	Workers        int
	DatasetVersion string
	Now            time.Time // zero: time.Now()
}

// ExportService renders every page through PageService and hands the bytes
// to a PageSink. It is the write-side counterpart of the HTTP API.
type ExportService struct {
	pages *PageService
	sink  domain.PageSink
}

func NewExportService(p *PageService, sink domain.PageSink) *ExportService {
	return &ExportService{pages: p, sink: sink}
}

// Build writes the full static site. The manifest goes last so a present
// manifest.json means a complete build.
func (s *ExportService) Build(ctx context.Context, o ExportOptions) (Manifest, error) {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	m := Manifest{
		BuildID:        uuid.NewString(),
		DatasetVersion: o.DatasetVersion,
		GeneratedAt:    o.Now.UTC(),
		Pages:          map[string]int{},
	}
	log.Info().Str("build_id", m.BuildID).Int("workers", o.Workers).Msg("export starting")

	if err := s.ExportHome(ctx); err != nil {
		return m, err
	}
	m.Pages["home"] = 1

	routes := s.pages.Routes()
	var jobs []exportJob
	for _, code := range routes.Airports {
		jobs = append(jobs, exportJob{kind: "airport", code: code, run: s.ExportAirport})
	}
	for _, code := range routes.Countries {
		jobs = append(jobs, exportJob{kind: "country", code: code, run: s.ExportCountry})
	}
	done, err := s.fanOut(ctx, o.Workers, jobs)
	for k, n := range done {
		m.Pages[k] = n
	}
	if err != nil {
		return m, err
	}

	if err := s.ExportSearchIndex(ctx); err != nil {
		return m, err
	}
	m.Pages["search-index"] = 1
	if err := s.ExportSitemap(ctx, o.SiteURL, o.Now); err != nil {
		return m, err
	}
	m.Pages["sitemap"] = 1

	m.Files = manifestFiles(routes)
	if err := s.writeJSON(ctx, ManifestFile, m); err != nil {
		return m, err
	}
	log.Info().
		Str("build_id", m.BuildID).
		Int("files", len(m.Files)).
		Interface("pages", m.Pages).
		Msg("export completed")
	return m, nil
}

type exportJob struct {
	kind string
	code string
	run  func(ctx context.Context, code string) error
}

// fanOut runs jobs on a bounded pool. The first failure cancels the rest.
func (s *ExportService) fanOut(ctx context.Context, workers int, jobs []exportJob) (map[string]int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     = map[string]int{}
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for _, j := range jobs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			fail(err)
			break
		}
		wg.Add(1)
		go func(j exportJob) {
			defer wg.Done()
			defer sem.Release(1)

			if err := j.run(ctx, j.code); err != nil {
				log.Warn().Str("kind", j.kind).Str("code", j.code).Err(err).Msg("export failed")
				fail(err)
				return
			}
			mu.Lock()
			done[j.kind]++
			mu.Unlock()
		}(j)
	}
	wg.Wait()
	return done, firstErr
}

func (s *ExportService) ExportHome(ctx context.Context) error {
	hp, err := s.pages.Home(ctx)
	if err != nil {
		return err
	}
	return s.writeJSON(ctx, IndexFile, hp)
}

func (s *ExportService) ExportAirport(ctx context.Context, code string) error {
	ap, err := s.pages.Airport(ctx, code)
	if err != nil {
		return err
	}
	return s.writeJSON(ctx, airportFile(ap.Airport.IATA), ap)
}

func (s *ExportService) ExportCountry(ctx context.Context, code string) error {
	cp, err := s.pages.Country(ctx, code)
	if err != nil {
		return err
	}
	return s.writeJSON(ctx, countryFile(cp.Country.Code), cp)
}

// ExportSearchIndex writes every airport in the compact form a client-side
// search box filters over.
func (s *ExportService) ExportSearchIndex(ctx context.Context) error {
	airports := s.pages.Catalog().Airports()
	entries := make([]SearchEntry, 0, len(airports))
	for _, a := range airports {
		entries = append(entries, mapSearchEntry(a))
	}
	return s.writeJSON(ctx, SearchIndexFile, entries)
}

func (s *ExportService) ExportSitemap(ctx context.Context, siteURL string, lastMod time.Time) error {
	var buf bytes.Buffer
	if err := WriteSitemap(&buf, s.pages.Sitemap(siteURL, lastMod)); err != nil {
		return fmt.Errorf("render sitemap: %w", err)
	}
	return s.write(ctx, SitemapFile, buf.Bytes())
}

func (s *ExportService) writeJSON(ctx context.Context, path string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return s.write(ctx, path, append(body, '\n'))
}

func (s *ExportService) write(ctx context.Context, path string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sink.Write(ctx, path, body); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func manifestFiles(r Routes) []string {
	files := []string{IndexFile, SearchIndexFile, SitemapFile}
	for _, code := range r.Airports {
		files = append(files, airportFile(code))
	}
	for _, code := range r.Countries {
		files = append(files, countryFile(code))
	}
	sort.Strings(files)
	return files
}
