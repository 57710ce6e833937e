package scheduler

import (
	"sync"
	"time"

	"github.com/bbernstein/swellcheck/internal/models"
)

// Board holds the most recently rated spots
type Board struct {
	mu        sync.RWMutex
	spots     []models.Spot
	byID      map[string]int
	updatedAt time.Time
}

func NewBoard() *Board {
	return &Board{byID: map[string]int{}}
}

// Spots returns copies of the spots in catalog order
func (b *Board) Spots() []models.Spot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Spot, len(b.spots))
	for i, s := range b.spots {
		out[i] = s.Clone()
	}
	return out
}

func (b *Board) Get(id string) (models.Spot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	i, ok := b.byID[id]
	if !ok {
		return models.Spot{}, false
	}
	return b.spots[i].Clone(), true
}

func (b *Board) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}

func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.spots)
}

// Replace swaps in a new set of spots
func (b *Board) Replace(spots []models.Spot, at time.Time) {
	byID := make(map[string]int, len(spots))
	copied := make([]models.Spot, len(spots))
	for i, s := range spots {
		copied[i] = s.Clone()
		byID[s.ID] = i
	}

	b.mu.Lock()
	b.spots = copied
	b.byID = byID
	b.updatedAt = at
	b.mu.Unlock()
}

// carryOver copies the live data already on the board onto fresh catalog
// records, so a spot whose update fails keeps its last reading
func (b *Board) carryOver(catalog []models.Spot) []models.Spot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.Spot, len(catalog))
	for i, s := range catalog {
		out[i] = s.Clone()
		j, ok := b.byID[s.ID]
		if !ok {
			continue
		}
		prev := b.spots[j].Clone()
		out[i].Live = prev.Live
		out[i].Quality = prev.Quality
		out[i].LastUpdated = prev.LastUpdated
	}
	return out
}
