// Package geo holds the coordinate types and the longitude-wrapping
// math used when relating a guess to a target location.
package geo

import "math"

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// WrapNear re-expresses point in the copy of the world nearest to
// target: the longitude is mapped into the 360°-wide interval
// [target.Lng-180, target.Lng+180) and the latitude into [-90, 90].
// Distance lines drawn between target and the result never cross the
// antimeridian the wrong way round.
//
// Values exactly on the upper bound pass through unchanged, so a
// legitimate boundary guess is not flipped to the opposite side.
func WrapNear(target, point LatLng) LatLng {
	maxLng := target.Lng + 180
	minLng := target.Lng - 180
	const (
		maxLat = 90.0
		minLat = -90.0
	)

	return LatLng{
		Lat: wrap(point.Lat, minLat, maxLat),
		Lng: wrap(point.Lng, minLng, maxLng),
	}
}

// wrap maps x into [min, max) by floored modulo. math.Mod truncates
// toward zero, so the remainder is re-shifted once to keep negative
// inputs on the correct side before the final offset.
func wrap(x, min, max float64) float64 {
	if x == max {
		return x
	}
	span := max - min
	return math.Mod(math.Mod(x-min, span)+span, span) + min
}

// BoundsOf returns the south-west and north-east corners of the
// smallest box containing all points. Used to fit the result view
// around the target and every guess. ok is false for an empty input.
func BoundsOf(points []LatLng) (sw, ne LatLng, ok bool) {
	if len(points) == 0 {
		return LatLng{}, LatLng{}, false
	}
	sw, ne = points[0], points[0]
	for _, p := range points[1:] {
		sw.Lat = math.Min(sw.Lat, p.Lat)
		sw.Lng = math.Min(sw.Lng, p.Lng)
		ne.Lat = math.Max(ne.Lat, p.Lat)
		ne.Lng = math.Max(ne.Lng, p.Lng)
	}
	return sw, ne, true
}
