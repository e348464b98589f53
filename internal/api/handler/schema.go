package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// sourceTime accepts either an RFC 3339 string or a number of milliseconds
// since the Unix epoch, the two shapes upstream apps send.
type sourceTime struct {
	time.Time
}

func (t *sourceTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			t.Time = time.UnixMilli(ms).UTC()
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("source_timestamp: %q is neither RFC 3339 nor unix milliseconds", s)
		}
		t.Time = parsed.UTC()
		return nil
	}
	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("source_timestamp: %s is not a number", b)
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// --- positions ---

type positionRequest struct {
	EntityID  string     `json:"entity_id"        validate:"required,max=128"`
	Lat       *float64   `json:"lat"              validate:"required,latitude"`
	Lng       *float64   `json:"lng"              validate:"required,longitude"`
	Status    string     `json:"status"           validate:"omitempty,max=64"`
	Source    string     `json:"source"           validate:"omitempty,max=64"`
	Timestamp sourceTime `json:"source_timestamp" swaggertype:"string" example:"2024-05-01T09:00:00Z"`
}

type positionResponse struct {
	EntityID        string    `json:"entity_id"`
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
	Status          string    `json:"status,omitempty"`
	Source          string    `json:"source,omitempty"`
	SourceTimestamp time.Time `json:"source_timestamp"`
	FirstSeen       time.Time `json:"first_seen"`
	Revision        int       `json:"revision"`
	State           string    `json:"state"`
	Zones           []string  `json:"zones"`
}

type positionListResponse struct {
	Items []positionResponse `json:"items"`
	Count int                `json:"count"`
	Stats statsResponse      `json:"stats"`
}

type statsResponse struct {
	Tracked   int `json:"tracked"`
	OutOfZone int `json:"out_of_zone"`
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
	Stale     int `json:"stale"`
	Invalid   int `json:"invalid"`
}

// --- zones ---

type pointRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

type zoneRequest struct {
	Name    string         `json:"name"    validate:"required,max=128"`
	Polygon []pointRequest `json:"polygon" validate:"required,min=3,dive"`
}

type pointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type zoneResponse struct {
	Name     string          `json:"name"`
	Polygon  []pointResponse `json:"polygon"`
	Vertices int             `json:"vertices"`
}

type zoneChangeResponse struct {
	Zone        string `json:"zone"`
	Transitions int    `json:"transitions"`
}

type containsQuery struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type containsResponse struct {
	Point    pointResponse `json:"point"`
	InBounds bool          `json:"in_bounds"`
	Zones    []string      `json:"zones"`
}

// --- violations ---

type violationQuery struct {
	EntityID string `json:"entity_id" validate:"omitempty,max=128"`
	Limit    int    `json:"limit"     validate:"omitempty,min=1,max=500"`
}

type violationResponse struct {
	ID              string        `json:"id"`
	Kind            string        `json:"kind"`
	EntityID        string        `json:"entity_id"`
	Point           pointResponse `json:"point"`
	Status          string        `json:"status,omitempty"`
	Source          string        `json:"source,omitempty"`
	SourceTimestamp time.Time     `json:"source_timestamp"`
	DetectedAt      time.Time     `json:"detected_at"`
}

type violationListResponse struct {
	Items []violationResponse `json:"items"`
	Count int                 `json:"count"`
}

// --- shared ---

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
