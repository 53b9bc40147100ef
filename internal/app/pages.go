package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"airport_codes/internal/catalog"
	"airport_codes/internal/domain"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// PageService turns catalog lookups into page view models. Found pages are
// cached read-through; not-found results are never cached.
type PageService struct {
	cat      *catalog.Catalog
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewPageService(cat *catalog.Catalog, c domain.Cache, ttl time.Duration) *PageService {
	if c == nil {
		c = NopCache{}
	}
	return &PageService{cat: cat, cache: c, cacheTTL: ttl}
}

func (s *PageService) Catalog() *catalog.Catalog { return s.cat }

func (s *PageService) Home(ctx context.Context) (HomePage, error) {
	const key = "page:home"
	var hp HomePage
	if s.load(ctx, key, &hp) {
		return hp, nil
	}

	hp = HomePage{
		Featured:  links(s.cat.FeaturedAirports(catalog.DefaultFeaturedLimit)),
		Countries: []CountryEntry{},
	}
	for _, co := range s.cat.CountriesWithAirports() {
		hp.Countries = append(hp.Countries, CountryEntry{
			Country:      co,
			Path:         CountryPath(co.Code),
			AirportCount: s.cat.AirportCount(co.Code),
			Flag:         FlagEmoji(co.Code),
		})
	}
	s.store(ctx, key, hp)
	return hp, nil
}

// Airport builds the detail page for an IATA or ICAO code.
func (s *PageService) Airport(ctx context.Context, code string) (AirportPage, error) {
	key := "page:airport:" + strings.ToUpper(code)
	var ap AirportPage
	if s.load(ctx, key, &ap) {
		return ap, nil
	}

	a, ok := s.cat.AirportByCode(code)
	if !ok {
		return AirportPage{}, fmt.Errorf("airport %q: %w", code, domain.ErrNotFound)
	}

	ap = AirportPage{
		Airport:     a,
		CountryPath: CountryPath(a.CountryCode),
		Coordinates: FormatCoordinates(a),
		Geohash:     catalog.Geohash(a),
		Nearby:      []NearbyAirport{},
	}
	for _, n := range s.cat.NearbyAirports(a, catalog.DefaultNearbyLimit) {
		ap.Nearby = append(ap.Nearby, NearbyAirport{
			AirportLink: link(n),
			DistanceKm:  roundKm(catalog.DistanceKm(a, n)),
		})
	}
	s.store(ctx, key, ap)
	return ap, nil
}

// Country builds the listing page. A country with no airports is not found,
// same as an unknown code.
func (s *PageService) Country(ctx context.Context, code string) (CountryPage, error) {
	key := "page:country:" + strings.ToUpper(code)
	var cp CountryPage
	if s.load(ctx, key, &cp) {
		return cp, nil
	}

	co, ok := s.cat.CountryByCode(code)
	if !ok {
		return CountryPage{}, fmt.Errorf("country %q: %w", code, domain.ErrNotFound)
	}
	airports := s.cat.AirportsByCountry(code)
	if len(airports) == 0 {
		return CountryPage{}, fmt.Errorf("country %q has no airports: %w", code, domain.ErrNotFound)
	}

	cp = CountryPage{
		Country:      co,
		Flag:         FlagEmoji(co.Code),
		AirportCount: len(airports),
		Airports:     links(airports),
	}
	s.store(ctx, key, cp)
	return cp, nil
}

// Search runs a free-text query and truncates to limit for display.
// Total is the untruncated match count.
func (s *PageService) Search(ctx context.Context, query string, limit int) (SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	key := fmt.Sprintf("search:%d:%s", limit, strings.ToLower(query))
	var sr SearchResult
	if s.load(ctx, key, &sr) {
		sr.Query = query
		return sr, nil
	}

	all := s.cat.SearchAirports(query)
	shown := all
	if len(shown) > limit {
		shown = shown[:limit]
	}
	sr = SearchResult{Query: query, Total: len(all), Results: links(shown)}
	s.store(ctx, key, sr)
	return sr, nil
}

// Routes returns the lower-case path parameters of every pre-rendered page.
func (s *PageService) Routes() Routes {
	r := Routes{Airports: []string{}, Countries: []string{}}
	for _, a := range s.cat.Airports() {
		r.Airports = append(r.Airports, strings.ToLower(a.IATA))
	}
	for _, co := range s.cat.CountriesWithAirports() {
		r.Countries = append(r.Countries, strings.ToLower(co.Code))
	}
	return r
}

// load reports a cache hit. Entries that no longer decode are purged so the
// next request rebuilds them; other cache errors count as a miss.
func (s *PageService) load(ctx context.Context, key string, dst any) bool {
	ok, err := s.cache.Get(ctx, key, dst)
	if errors.Is(err, domain.ErrCacheCorrupt) {
		log.Warn().Err(err).Str("key", key).Msg("purging corrupt cache entry")
		_ = s.cache.Del(ctx, key)
		return false
	}
	return ok && err == nil
}

func (s *PageService) store(ctx context.Context, key string, v any) {
	_ = s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds()))
}
