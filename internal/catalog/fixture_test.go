package catalog_test

import (
	. "gopkg.in/check.v1"

	"airport_codes/internal/catalog"
	"airport_codes/internal/domain"
)

// Small hand-built datasets for edge cases the shipped data does not exercise.
type FixtureSuite struct{}

var _ = Suite(&FixtureSuite{})

func (s *FixtureSuite) TestFirstMatchWinsAcrossCodeTypes(c *C) {
	// an IATA code that collides with another airport's ICAO resolves to the earlier record
	cat := catalog.New([]domain.Airport{
		{IATA: "ABC", ICAO: "XABC", CountryCode: "AA"},
		{IATA: "XYZ", ICAO: "ABC", CountryCode: "AA"},
	}, nil)
	got, ok := cat.AirportByCode("abc")
	c.Assert(ok, Equals, true)
	c.Assert(got.IATA, Equals, "ABC")
}

func (s *FixtureSuite) TestMixedCaseCountryCodes(c *C) {
	cat := catalog.New([]domain.Airport{
		{IATA: "AAA", ICAO: "AAAA", CountryCode: "XA"},
		{IATA: "BBB", ICAO: "BBBB", CountryCode: "xa"},
	}, []domain.Country{{Code: "XA", Name: "Xland"}})

	c.Assert(cat.AirportsByCountry("XA"), HasLen, 2)
	c.Assert(cat.AirportCount("XA"), Equals, 1)
	c.Assert(cat.AirportCount("xa"), Equals, 1)

	a, _ := cat.AirportByCode("AAA")
	c.Assert(cat.NearbyAirports(a, 5), HasLen, 0)
}

func (s *FixtureSuite) TestCountryWithoutAirportsExcluded(c *C) {
	cat := catalog.New(
		[]domain.Airport{{IATA: "AAA", ICAO: "AAAA", CountryCode: "XB"}},
		[]domain.Country{{Code: "XA"}, {Code: "XB"}, {Code: "XC"}},
	)
	got := cat.CountriesWithAirports()
	c.Assert(got, DeepEquals, []domain.Country{{Code: "XB"}})
}

func (s *FixtureSuite) TestEmptyCatalog(c *C) {
	cat := catalog.New(nil, nil)
	_, ok := cat.AirportByCode("ATL")
	c.Assert(ok, Equals, false)
	c.Assert(cat.FeaturedAirports(10), HasLen, 0)
	c.Assert(cat.CountriesWithAirports(), HasLen, 0)
	c.Assert(cat.SearchAirports("atlanta"), HasLen, 0)
}

func (s *FixtureSuite) TestDistanceAndGeohash(c *C) {
	lhr := domain.Airport{Latitude: 51.47, Longitude: -0.4543}
	cdg := domain.Airport{Latitude: 49.0097, Longitude: 2.5479}

	d := catalog.DistanceKm(lhr, cdg)
	c.Assert(d > 330 && d < 360, Equals, true, Commentf("LHR-CDG %.1f km", d))
	c.Assert(catalog.DistanceKm(lhr, lhr) < 0.001, Equals, true)

	h := catalog.Geohash(lhr)
	c.Assert(len(h) > 5, Equals, true)
	c.Assert(h[:3], Equals, "gcp")
}
