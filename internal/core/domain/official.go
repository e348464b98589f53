package domain

import "time"

// Official is the document shape upstream sources store for a field official.
// Location follows GeoJSON ordering: [lng, lat].
type Official struct {
	ID          string     `json:"id" bson:"_id" yaml:"id"`
	Name        string     `json:"name" bson:"name" yaml:"name"`
	Status      string     `json:"status" bson:"status" yaml:"status"`
	Location    [2]float64 `json:"current_location" bson:"current_location" yaml:"current_location"`
	LastUpdated time.Time  `json:"last_updated" bson:"last_updated" yaml:"last_updated"`
	Removed     bool       `json:"removed,omitempty" bson:"removed,omitempty" yaml:"removed,omitempty"`
}

// HasLocation reports whether the document carries a position. Apps that have
// not reported yet leave current_location as [0, 0].
func (o Official) HasLocation() bool {
	return o.Location != [2]float64{}
}
