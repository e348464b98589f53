// Package geometry implements the point-in-polygon test used for geofencing.
//
// Coordinates are treated as planar (longitude on the x axis, latitude on the
// y axis), which is accurate enough for operating areas the size of a city.
package geometry

import (
	"fmt"
	"math"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

// BoundaryEpsilon is the tolerance, in degrees, for treating a point as lying on
// an edge. Roughly 0.1 micrometre at the equator.
const BoundaryEpsilon = 1e-12

// PointInPolygon reports whether p lies inside poly using the even-odd rule.
// Points on an edge or vertex are inside. Polygons with fewer than three
// vertices are rejected with domain.ErrInvalidPolygon.
func PointInPolygon(p domain.Point, poly domain.Polygon) (bool, error) {
	n := len(poly)
	if n < 3 {
		return false, fmt.Errorf("point in polygon: %w: %d vertices", domain.ErrInvalidPolygon, n)
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[j], poly[i]
		if onSegment(p, a, b) {
			return true, nil
		}
		// Half-open in latitude so a ray through a shared vertex counts once.
		// Zero-length and horizontal edges never satisfy this.
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			lngAtLat := a.Lng + (p.Lat-a.Lat)*(b.Lng-a.Lng)/(b.Lat-a.Lat)
			if lngAtLat > p.Lng {
				inside = !inside
			}
		}
	}
	return inside, nil
}

// onSegment reports whether p lies on the closed segment a-b.
func onSegment(p, a, b domain.Point) bool {
	if p.Lat < math.Min(a.Lat, b.Lat)-BoundaryEpsilon || p.Lat > math.Max(a.Lat, b.Lat)+BoundaryEpsilon {
		return false
	}
	if p.Lng < math.Min(a.Lng, b.Lng)-BoundaryEpsilon || p.Lng > math.Max(a.Lng, b.Lng)+BoundaryEpsilon {
		return false
	}
	dLat, dLng := b.Lat-a.Lat, b.Lng-a.Lng
	cross := dLng*(p.Lat-a.Lat) - dLat*(p.Lng-a.Lng)
	return math.Abs(cross) <= BoundaryEpsilon*(math.Abs(dLat)+math.Abs(dLng))
}
