package zone

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

// DefaultZones is the operating area used when no zones file is configured.
func DefaultZones() []domain.Zone {
	return []domain.Zone{{
		Name: "chennai",
		Polygon: domain.Polygon{
			{Lat: 13.2367, Lng: 80.1849},
			{Lat: 13.2367, Lng: 80.3327},
			{Lat: 12.9343, Lng: 80.3327},
			{Lat: 12.9343, Lng: 80.1849},
		},
	}}
}

// fileDoc is the native zones file layout:
//
//	zones:
//	  - name: chennai
//	    polygon:
//	      - {lat: 13.2367, lng: 80.1849}
//	      - ...
type fileDoc struct {
	Type     string        `yaml:"type"`
	Zones    []domain.Zone `yaml:"zones"`
	Features []geoFeature  `yaml:"features"`
}

// GeoJSON is a YAML subset, so FeatureCollections decode through the same
// parser. Only Polygon geometries are read; the outer ring becomes the zone.
type geoFeature struct {
	Properties map[string]any `yaml:"properties"`
	Geometry   struct {
		Type        string         `yaml:"type"`
		Coordinates [][][2]float64 `yaml:"coordinates"`
	} `yaml:"geometry"`
}

// LoadFile reads zones from a YAML or GeoJSON file.
func LoadFile(path string) ([]domain.Zone, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zones file: %w", err)
	}
	return Decode(bytes.NewReader(b))
}

// Decode parses a zones document. Polygons are not validated here; the
// registry does that when the zones are added.
func Decode(r io.Reader) ([]domain.Zone, error) {
	var doc fileDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode zones: %w", err)
	}

	if !strings.EqualFold(doc.Type, "FeatureCollection") {
		return doc.Zones, nil
	}

	zones := make([]domain.Zone, 0, len(doc.Features))
	for i, f := range doc.Features {
		if !strings.EqualFold(f.Geometry.Type, "Polygon") {
			return nil, fmt.Errorf("decode zones: feature %d: unsupported geometry %q", i, f.Geometry.Type)
		}
		if len(f.Geometry.Coordinates) == 0 {
			return nil, fmt.Errorf("decode zones: feature %d: %w", i, domain.ErrInvalidPolygon)
		}
		name, _ := f.Properties["name"].(string)
		if name == "" {
			name = fmt.Sprintf("zone-%d", i+1)
		}
		zones = append(zones, domain.Zone{Name: name, Polygon: ringToPolygon(f.Geometry.Coordinates[0])})
	}
	return zones, nil
}

// ringToPolygon converts a GeoJSON [lng, lat] ring, dropping the repeated
// closing vertex.
func ringToPolygon(ring [][2]float64) domain.Polygon {
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}
	poly := make(domain.Polygon, len(ring))
	for i, c := range ring {
		poly[i] = domain.Point{Lat: c[1], Lng: c[0]}
	}
	return poly
}
