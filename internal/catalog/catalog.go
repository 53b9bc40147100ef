// Package catalog implements the airport lookups every page is built from.
//
// A Catalog is a read-only view over the loaded dataset. All methods are linear
// scans in dataset order, never mutate the underlying slices, and are safe for
// concurrent use.
package catalog

import (
	"strings"
	"unicode/utf8"

	"airport_codes/internal/domain"
)

const (
	DefaultNearbyLimit   = 5
	DefaultFeaturedLimit = 10

	// MinSearchLen is the shortest query SearchAirports will match.
	MinSearchLen = 2
)

// FeaturedCodes is the curated list of major hubs shown on the home page, in display order.
var FeaturedCodes = []string{
	"ATL", "DXB", "LAX", "ORD", "LHR",
	"HND", "CDG", "ICN", "SIN", "JFK",
}

type Catalog struct {
	airports  []domain.Airport
	countries []domain.Country
	featured  []string
}

func New(airports []domain.Airport, countries []domain.Country) *Catalog {
	return &Catalog{airports: airports, countries: countries, featured: FeaturedCodes}
}

// WithFeatured returns a copy of c that resolves codes instead of FeaturedCodes.
func (c *Catalog) WithFeatured(codes []string) *Catalog {
	cp := *c
	cp.featured = append([]string(nil), codes...)
	return &cp
}

// Airports returns a copy of every airport in dataset order.
func (c *Catalog) Airports() []domain.Airport {
	return append([]domain.Airport{}, c.airports...)
}

// Countries returns a copy of every country in dataset order.
func (c *Catalog) Countries() []domain.Country {
	return append([]domain.Country{}, c.countries...)
}

// AirportByCode matches code against both IATA and ICAO, ignoring case.
// The first match in dataset order wins.
func (c *Catalog) AirportByCode(code string) (domain.Airport, bool) {
	for _, a := range c.airports {
		if strings.EqualFold(a.IATA, code) || strings.EqualFold(a.ICAO, code) {
			return a, true
		}
	}
	return domain.Airport{}, false
}

func (c *Catalog) CountryByCode(code string) (domain.Country, bool) {
	for _, co := range c.countries {
		if strings.EqualFold(co.Code, code) {
			return co, true
		}
	}
	return domain.Country{}, false
}

// AirportsByCountry lists airports whose country code matches, ignoring case.
func (c *Catalog) AirportsByCountry(countryCode string) []domain.Airport {
	out := []domain.Airport{}
	for _, a := range c.airports {
		if strings.EqualFold(a.CountryCode, countryCode) {
			out = append(out, a)
		}
	}
	return out
}

// AirportCount counts airports per country code. Unlike AirportsByCountry the
// comparison is case-sensitive: pass canonical upper-case codes.
func (c *Catalog) AirportCount(countryCode string) int {
	n := 0
	for _, a := range c.airports {
		if a.CountryCode == countryCode {
			n++
		}
	}
	return n
}

// SearchAirports returns every airport whose IATA, ICAO, name, city or country
// contains query, ignoring case. Queries shorter than MinSearchLen match nothing.
// The result is not capped.
func (c *Catalog) SearchAirports(query string) []domain.Airport {
	out := []domain.Airport{}
	if utf8.RuneCountInString(query) < MinSearchLen {
		return out
	}
	q := strings.ToLower(query)
	for _, a := range c.airports {
		if matches(a, q) {
			out = append(out, a)
		}
	}
	return out
}

func matches(a domain.Airport, lowerQuery string) bool {
	for _, field := range [...]string{a.IATA, a.ICAO, a.Name, a.City, a.Country} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

// NearbyAirports lists up to limit other airports in the same country as a.
// This is a same-country co-listing in dataset order, not a distance ranking.
func (c *Catalog) NearbyAirports(a domain.Airport, limit int) []domain.Airport {
	out := []domain.Airport{}
	if limit <= 0 {
		return out
	}
	for _, o := range c.airports {
		if o.CountryCode != a.CountryCode || o.IATA == a.IATA {
			continue
		}
		out = append(out, o)
		if len(out) == limit {
			break
		}
	}
	return out
}

// FeaturedAirports resolves the curated codes in their listed order, silently
// skipping codes missing from the dataset, then truncates to limit.
func (c *Catalog) FeaturedAirports(limit int) []domain.Airport {
	out := []domain.Airport{}
	for _, code := range c.featured {
		if len(out) >= limit {
			break
		}
		if a, ok := c.AirportByCode(code); ok {
			out = append(out, a)
		}
	}
	return out
}

// CountriesWithAirports keeps the countries referenced by at least one airport,
// in country-collection order.
func (c *Catalog) CountriesWithAirports() []domain.Country {
	used := make(map[string]struct{}, len(c.countries))
	for _, a := range c.airports {
		used[a.CountryCode] = struct{}{}
	}
	out := []domain.Country{}
	for _, co := range c.countries {
		if _, ok := used[co.Code]; ok {
			out = append(out, co)
		}
	}
	return out
}
