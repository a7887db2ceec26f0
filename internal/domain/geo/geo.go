// Package geo implements great-circle distance and radius filtering used to
// match quote requests with nearby businesses.
package geo

import (
	"math"
	"slices"

	"github.com/teolgogo/quote-engine/internal/domain"
)

// EarthRadiusKm is the mean earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DefaultRadiusKm is the discovery radius when the caller gives none.
const DefaultRadiusKm = 5.0

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b domain.Location) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// Match is a candidate that fell inside the radius.
type Match[T any] struct {
	Item       T
	DistanceKm float64
}

// WithinRadius returns the candidates whose location is at most radiusKm from
// origin, nearest first. Candidates for which locate returns nil are skipped.
// Equal distances keep their input order.
func WithinRadius[T any](origin domain.Location, radiusKm float64, candidates []T, locate func(T) *domain.Location) []Match[T] {
	matches := make([]Match[T], 0, len(candidates))
	for _, c := range candidates {
		loc := locate(c)
		if loc == nil {
			continue
		}
		d := Distance(origin, *loc)
		if d <= radiusKm {
			matches = append(matches, Match[T]{Item: c, DistanceKm: d})
		}
	}

	slices.SortStableFunc(matches, func(a, b Match[T]) int {
		switch {
		case a.DistanceKm < b.DistanceKm:
			return -1
		case a.DistanceKm > b.DistanceKm:
			return 1
		}
		return 0
	})

	return matches
}

// Items strips the distances from matches.
func Items[T any](matches []Match[T]) []T {
	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = m.Item
	}
	return out
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
