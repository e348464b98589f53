package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidPolygon = errors.New("invalid polygon")
var ErrInvalidPosition = errors.New("invalid position")
var ErrDuplicateZone = errors.New("zone already exists")
var ErrUnknownZone = errors.New("zone not found")

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat" bson:"lat" yaml:"lat"`
	Lng float64 `json:"lng" bson:"lng" yaml:"lng"`
}

// Valid reports whether both coordinates are finite and inside the
// latitude/longitude ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Polygon is an implicitly closed ring: the last vertex connects back to the first.
type Polygon []Point

// Validate checks that the polygon has at least three vertices and that every
// vertex is a valid coordinate.
func (poly Polygon) Validate() error {
	if len(poly) < 3 {
		return fmt.Errorf("%w: %d vertices, need at least 3", ErrInvalidPolygon, len(poly))
	}
	for i, v := range poly {
		if !v.Valid() {
			return fmt.Errorf("%w: vertex %d (%v, %v) out of range", ErrInvalidPolygon, i, v.Lat, v.Lng)
		}
	}
	return nil
}

// Bounds returns the polygon's bounding box.
func (poly Polygon) Bounds() BBox {
	if len(poly) == 0 {
		return BBox{}
	}
	b := BBox{MinLat: poly[0].Lat, MaxLat: poly[0].Lat, MinLng: poly[0].Lng, MaxLng: poly[0].Lng}
	for _, v := range poly[1:] {
		b.MinLat = math.Min(b.MinLat, v.Lat)
		b.MaxLat = math.Max(b.MaxLat, v.Lat)
		b.MinLng = math.Min(b.MinLng, v.Lng)
		b.MaxLng = math.Max(b.MaxLng, v.Lng)
	}
	return b
}

// Clone returns a copy that shares no backing array with poly.
func (poly Polygon) Clone() Polygon {
	out := make(Polygon, len(poly))
	copy(out, poly)
	return out
}

// BBox is an axis-aligned latitude/longitude rectangle. Edges are inclusive.
type BBox struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// Pad returns the box grown by d degrees on every side.
func (b BBox) Pad(d float64) BBox {
	return BBox{MinLat: b.MinLat - d, MinLng: b.MinLng - d, MaxLat: b.MaxLat + d, MaxLng: b.MaxLng + d}
}

// Contains reports whether p lies inside or on the box.
func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Zone is a named authorized operating area.
type Zone struct {
	Name    string  `json:"name" bson:"name" yaml:"name"`
	Polygon Polygon `json:"polygon" bson:"polygon" yaml:"polygon"`
}
