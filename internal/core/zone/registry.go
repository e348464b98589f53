// Package zone holds the set of authorized operating areas and answers
// containment queries against it.
package zone

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/geometry"
)

// MatchMode selects how multiple zones combine in IsInBounds.
type MatchMode string

const (
	// MatchAny puts a point in bounds when it is inside at least one zone.
	MatchAny MatchMode = "any"
	// MatchAll puts a point in bounds only when it is inside every zone.
	MatchAll MatchMode = "all"
)

// ParseMatchMode converts a configuration string into a MatchMode.
// Empty input yields MatchAny.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchAny:
		return MatchAny, nil
	case MatchAll:
		return MatchAll, nil
	default:
		return "", fmt.Errorf("unknown zone match mode %q", s)
	}
}

type entry struct {
	polygon domain.Polygon
	bounds  domain.BBox
}

// Registry maps zone names to polygons. It is safe for concurrent use:
// readers share a lock, mutations take it exclusively.
type Registry struct {
	mu    sync.RWMutex
	zones map[string]entry
	mode  MatchMode
}

// NewRegistry returns an empty registry. An empty mode defaults to MatchAny.
func NewRegistry(mode MatchMode) *Registry {
	if mode == "" {
		mode = MatchAny
	}
	return &Registry{zones: make(map[string]entry), mode: mode}
}

// Mode returns the configured match mode.
func (r *Registry) Mode() MatchMode {
	return r.mode
}

// AddZone registers polygon under name.
func (r *Registry) AddZone(name string, polygon domain.Polygon) error {
	e, err := newEntry(name, polygon)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.zones[name]; ok {
		return fmt.Errorf("add zone %q: %w", name, domain.ErrDuplicateZone)
	}
	r.zones[name] = e
	return nil
}

// RemoveZone deletes the zone called name.
func (r *Registry) RemoveZone(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.zones[name]; !ok {
		return fmt.Errorf("remove zone %q: %w", name, domain.ErrUnknownZone)
	}
	delete(r.zones, name)
	return nil
}

// Replace swaps the whole zone set. Every zone is validated first; on any
// error the registry is left unchanged.
func (r *Registry) Replace(zones []domain.Zone) error {
	next := make(map[string]entry, len(zones))
	for _, z := range zones {
		e, err := newEntry(z.Name, z.Polygon)
		if err != nil {
			return err
		}
		if _, ok := next[z.Name]; ok {
			return fmt.Errorf("replace zones %q: %w", z.Name, domain.ErrDuplicateZone)
		}
		next[z.Name] = e
	}

	r.mu.Lock()
	r.zones = next
	r.mu.Unlock()
	return nil
}

// IsInBounds reports whether p is authorized under the registry's match mode.
// An empty registry authorizes nothing.
func (r *Registry) IsInBounds(p domain.Point) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.zones) == 0 {
		return false
	}
	for _, e := range r.zones {
		in := e.contains(p)
		if r.mode == MatchAll && !in {
			return false
		}
		if r.mode != MatchAll && in {
			return true
		}
	}
	return r.mode == MatchAll
}

// ZonesContaining returns the sorted names of every zone that contains p.
func (r *Registry) ZonesContaining(p domain.Point) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.zones))
	for name, e := range r.zones {
		if e.contains(p) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Zones returns a copy of all registered zones sorted by name.
func (r *Registry) Zones() []domain.Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Zone, 0, len(r.zones))
	for name, e := range r.zones {
		out = append(out, domain.Zone{Name: name, Polygon: e.polygon.Clone()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered zones.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.zones)
}

func newEntry(name string, polygon domain.Polygon) (entry, error) {
	if strings.TrimSpace(name) == "" {
		return entry{}, fmt.Errorf("zone name is empty: %w", domain.ErrInvalidPolygon)
	}
	if err := polygon.Validate(); err != nil {
		return entry{}, fmt.Errorf("zone %q: %w", name, err)
	}
	poly := polygon.Clone()
	// Padded so the prefilter never rejects a point the edge tolerance accepts.
	return entry{polygon: poly, bounds: poly.Bounds().Pad(geometry.BoundaryEpsilon)}, nil
}

func (e entry) contains(p domain.Point) bool {
	if !e.bounds.Contains(p) {
		return false
	}
	// Polygons are validated on insert, so the error path is unreachable.
	in, _ := geometry.PointInPolygon(p, e.polygon)
	return in
}
