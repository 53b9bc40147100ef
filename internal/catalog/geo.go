package catalog

import (
	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"

	"airport_codes/internal/domain"
)

const earthRadiusKm = 6371.0088

// DistanceKm is the great-circle distance between two airports.
func DistanceKm(a, b domain.Airport) float64 {
	la := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	lb := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return la.Distance(lb).Radians() * earthRadiusKm
}

// Geohash encodes the airport position at full precision.
func Geohash(a domain.Airport) string {
	return geohash.Encode(a.Latitude, a.Longitude)
}
