package app

import "airport_codes/internal/domain"

// View models handed to the presentation layer.

type AirportLink struct {
	domain.Airport
	Path string `json:"path"`
}

type NearbyAirport struct {
	AirportLink
	DistanceKm float64 `json:"distanceKm"`
}

type CountryEntry struct {
	domain.Country
	Path         string `json:"path"`
	AirportCount int    `json:"airportCount"`
	Flag         string `json:"flag"`
}

type HomePage struct {
	Featured  []AirportLink  `json:"featured"`
	Countries []CountryEntry `json:"countries"`
}

type AirportPage struct {
	Airport     domain.Airport  `json:"airport"`
	CountryPath string          `json:"countryPath"`
	Coordinates string          `json:"coordinates"`
	Geohash     string          `json:"geohash"`
	Nearby      []NearbyAirport `json:"nearby"`
}

type CountryPage struct {
	Country      domain.Country `json:"country"`
	Flag         string         `json:"flag"`
	AirportCount int            `json:"airportCount"`
	Airports     []AirportLink  `json:"airports"`
}

type SearchResult struct {
	Query   string        `json:"query"`
	Total   int           `json:"total"`
	Results []AirportLink `json:"results"`
}

// Routes lists the path parameters a static build pre-renders.
type Routes struct {
	Airports  []string `json:"airports"`
	Countries []string `json:"countries"`
}
