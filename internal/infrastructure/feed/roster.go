package feed

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

// rosterFile is the on-disk fallback roster:
//
//	officials:
//	  - id: off-1
//	    name: R. Kumar
//	    status: on-duty
//	    current_location: [80.2707, 13.0827]
//	    last_updated: 2024-05-01T09:00:00Z
type rosterFile struct {
	Officials []domain.Official `yaml:"officials"`
}

// LoadRoster reads a fallback roster from path.
func LoadRoster(path string) ([]domain.Official, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return DecodeRoster(f)
}

// DecodeRoster parses a fallback roster. Every entry needs an id.
func DecodeRoster(r io.Reader) ([]domain.Official, error) {
	var doc rosterFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	seen := make(map[string]bool, len(doc.Officials))
	for i, o := range doc.Officials {
		if o.ID == "" {
			return nil, fmt.Errorf("decode roster: entry %d has no id", i)
		}
		if seen[o.ID] {
			return nil, fmt.Errorf("decode roster: duplicate id %q", o.ID)
		}
		seen[o.ID] = true
	}
	return doc.Officials, nil
}
