package app

import (
	"fmt"
	"math"
	"strings"

	"airport_codes/internal/domain"
)

func AirportPath(iata string) string { return "/airport/" + strings.ToLower(iata) }
func CountryPath(code string) string { return "/country/" + strings.ToLower(code) }

func link(a domain.Airport) AirportLink {
	return AirportLink{Airport: a, Path: AirportPath(a.IATA)}
}

func links(as []domain.Airport) []AirportLink {
	out := make([]AirportLink, 0, len(as))
	for _, a := range as {
		out = append(out, link(a))
	}
	return out
}

// FormatCoordinates renders "lat°, lon°" at four decimals.
func FormatCoordinates(a domain.Airport) string {
	return fmt.Sprintf("%.4f°, %.4f°", a.Latitude, a.Longitude)
}

// FlagEmoji maps a two-letter country code to its regional-indicator pair.
// Anything else gets a globe.
func FlagEmoji(code string) string {
	if len(code) != 2 {
		return "🌍"
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		if r < 'A' || r > 'Z' {
			return "🌍"
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}

func roundKm(km float64) float64 { return math.Round(km*10) / 10 }
