// Package spots holds the static surf spot records live data is attached to.
package spots

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bbernstein/swellcheck/internal/models"
)

//go:embed spots.json
var embeddedSpots []byte

// ErrSpotNotFound is returned by Get for an unknown ID
var ErrSpotNotFound = errors.New("spot not found")

// StaticCatalog is an immutable in-memory spot list
type StaticCatalog struct {
	spots []models.Spot
	byID  map[string]int
}

var _ models.SpotCatalog = (*StaticCatalog)(nil)

// NewStaticCatalog loads the catalog compiled into the binary
func NewStaticCatalog() (*StaticCatalog, error) {
	return NewStaticCatalogFromJSON(embeddedSpots)
}

// NewStaticCatalogFromJSON parses a JSON array of spots, rejecting invalid or duplicate records
func NewStaticCatalogFromJSON(data []byte) (*StaticCatalog, error) {
	var spots []models.Spot
	if err := json.Unmarshal(data, &spots); err != nil {
		return nil, fmt.Errorf("decoding spots: %w", err)
	}
	return NewStaticCatalogFromSpots(spots)
}

func NewStaticCatalogFromSpots(spots []models.Spot) (*StaticCatalog, error) {
	c := &StaticCatalog{
		spots: make([]models.Spot, 0, len(spots)),
		byID:  make(map[string]int, len(spots)),
	}
	for _, s := range spots {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("invalid spot %q: %w", s.ID, err)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate spot ID: %s", s.ID)
		}
		c.byID[s.ID] = len(c.spots)
		c.spots = append(c.spots, s.Clone())
	}
	return c, nil
}

// List returns copies of every spot in catalog order
func (c *StaticCatalog) List(_ context.Context) ([]models.Spot, error) {
	out := make([]models.Spot, len(c.spots))
	for i, s := range c.spots {
		out[i] = s.Clone()
	}
	return out, nil
}

func (c *StaticCatalog) Get(_ context.Context, id string) (*models.Spot, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSpotNotFound, id)
	}
	s := c.spots[i].Clone()
	return &s, nil
}

func (c *StaticCatalog) Len() int {
	return len(c.spots)
}

// Search returns the spots whose name or region contains query, ignoring case.
// An empty query matches everything.
func Search(spots []models.Spot, query string) []models.Spot {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return spots
	}

	var matched []models.Spot
	for _, s := range spots {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Region), q) {
			matched = append(matched, s)
		}
	}
	return matched
}
