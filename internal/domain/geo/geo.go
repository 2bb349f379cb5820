// Package geo provides coordinates and great-circle distance.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius of the sphere used by DistanceMeters.
const EarthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPoint validates the coordinate ranges.
func NewPoint(lat, lng float64) (Point, error) {
	p := Point{Lat: lat, Lng: lng}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate checks lat in [-90,90] and lng in [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude out of range: %v", p.Lat)
	}
	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude out of range: %v", p.Lng)
	}
	return nil
}

func (p Point) String() string {
	return fmt.Sprintf("(%.6f,%.6f)", p.Lat, p.Lng)
}

// DistanceMeters returns the haversine distance between a and b.
func DistanceMeters(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sinLng*sinLng

	// floating point drift can push h just outside [0,1]
	h = math.Max(0, math.Min(1, h))

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// DistanceKm is DistanceMeters in kilometres.
func DistanceKm(a, b Point) float64 {
	return DistanceMeters(a, b) / 1000
}

// Centroid returns the arithmetic mean of points. ok is false for an empty slice.
func Centroid(points []Point) (c Point, ok bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	for _, p := range points {
		c.Lat += p.Lat
		c.Lng += p.Lng
	}
	c.Lat /= float64(len(points))
	c.Lng /= float64(len(points))
	return c, true
}

// Bounds returns the south-west and north-east corners enclosing points.
func Bounds(points []Point) (sw, ne Point) {
	if len(points) == 0 {
		return Point{}, Point{}
	}
	sw, ne = points[0], points[0]
	for _, p := range points[1:] {
		sw.Lat = math.Min(sw.Lat, p.Lat)
		sw.Lng = math.Min(sw.Lng, p.Lng)
		ne.Lat = math.Max(ne.Lat, p.Lat)
		ne.Lng = math.Max(ne.Lng, p.Lng)
	}
	return sw, ne
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
