package ports

import "github.com/bandobast/zone-monitor/internal/core/domain"

// ZoneCatalog is the read/write zone surface exposed to transports.
type ZoneCatalog interface {
	AddZone(name string, poly domain.Polygon) error
	RemoveZone(name string) error
	Zones() []domain.Zone
	ZonesContaining(p domain.Point) []string
	IsInBounds(p domain.Point) bool
}
