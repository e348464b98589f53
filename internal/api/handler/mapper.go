package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/ports"
)

// toPositionInput validates req and maps it to the service DTO. Requests
// without a source are tagged as coming from the API.
func toPositionInput(c echo.Context, req positionRequest) (ports.PositionInput, error) {
	if err := c.Validate(&req); err != nil {
		return ports.PositionInput{}, err
	}
	if req.Timestamp.IsZero() {
		return ports.PositionInput{}, errors.New("source_timestamp is required")
	}
	source := req.Source
	if source == "" {
		source = apiSource
	}
	return ports.PositionInput{
		EntityID:  req.EntityID,
		Lat:       *req.Lat,
		Lng:       *req.Lng,
		Status:    req.Status,
		Timestamp: req.Timestamp.Time,
		Source:    source,
	}, nil
}

func toPositionResponse(v ports.EntityView) positionResponse {
	zones := v.Zones
	if zones == nil {
		zones = []string{}
	}
	return positionResponse{
		EntityID:        v.Position.EntityID,
		Lat:             v.Position.Point.Lat,
		Lng:             v.Position.Point.Lng,
		Status:          v.Position.Status,
		Source:          v.Position.Source,
		SourceTimestamp: v.Position.SourceTimestamp,
		FirstSeen:       v.Position.FirstSeen,
		Revision:        v.Position.Revision,
		State:           string(v.State),
		Zones:           zones,
	}
}

func toStatsResponse(s ports.TrackingStats) statsResponse {
	return statsResponse{
		Tracked:   s.Tracked,
		OutOfZone: s.OutOfZone,
		Added:     s.Added,
		Updated:   s.Updated,
		Removed:   s.Removed,
		Stale:     s.Stale,
		Invalid:   s.Invalid,
	}
}

func toPolygon(points []pointRequest) domain.Polygon {
	poly := make(domain.Polygon, 0, len(points))
	for _, p := range points {
		poly = append(poly, domain.Point{Lat: *p.Lat, Lng: *p.Lng})
	}
	return poly
}

func toPointResponse(p domain.Point) pointResponse {
	return pointResponse{Lat: p.Lat, Lng: p.Lng}
}

func toZoneResponse(z domain.Zone) zoneResponse {
	pts := make([]pointResponse, 0, len(z.Polygon))
	for _, p := range z.Polygon {
		pts = append(pts, toPointResponse(p))
	}
	return zoneResponse{Name: z.Name, Polygon: pts, Vertices: len(pts)}
}

func toViolationResponse(ev *domain.ViolationEvent) violationResponse {
	return violationResponse{
		ID:              ev.ID,
		Kind:            string(ev.Kind),
		EntityID:        ev.EntityID,
		Point:           toPointResponse(ev.Point),
		Status:          ev.Status,
		Source:          ev.Source,
		SourceTimestamp: ev.SourceTimestamp,
		DetectedAt:      ev.DetectedAt,
	}
}
