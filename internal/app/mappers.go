package app

import (
	"strings"
	"time"

	"airport_codes/internal/domain"
)

// SearchEntry is one row of search-index.json.
type SearchEntry struct {
	IATA    string `json:"iata"`
	ICAO    string `json:"icao"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
	Path    string `json:"path"`
}

// Manifest describes one static build.
type Manifest struct {
	BuildID        string         `json:"buildId"`
	DatasetVersion string         `json:"datasetVersion"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	Pages          map[string]int `json:"pages"`
	Files          []string       `json:"files"`
}

func mapSearchEntry(a domain.Airport) SearchEntry {
	return SearchEntry{
		IATA:    a.IATA,
		ICAO:    a.ICAO,
		Name:    a.Name,
		City:    a.City,
		Country: a.Country,
		Path:    AirportPath(a.IATA),
	}
}

func airportFile(iata string) string { return "airport/" + strings.ToLower(iata) + ".json" }
func countryFile(code string) string { return "country/" + strings.ToLower(code) + ".json" }
