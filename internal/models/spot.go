package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// SpotPreferenceProfile describes the conditions a spot works best in
type SpotPreferenceProfile struct {
	SwellDirection []string `json:"swellDirection"`
	WindDirection  []string `json:"windDirection"`
	Tide           []string `json:"tide"`
	SwellSize      string   `json:"swellSize"` // "<min>-<max>ft"
}

// SizeRange is a wave-height range in feet
type SizeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultSizeRange is used when a profile's size string cannot be parsed
var DefaultSizeRange = SizeRange{Min: 2, Max: 8}

var sizeRangePattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)\s*ft\s*$`)

// MalformedProfileError is returned when a size range does not match "<num>-<num>ft"
type MalformedProfileError struct {
	SwellSize string
}

func (e *MalformedProfileError) Error() string {
	return fmt.Sprintf("malformed swell size range: %q", e.SwellSize)
}

// SizeRange parses SwellSize. On failure it returns DefaultSizeRange along with the error.
func (p SpotPreferenceProfile) SizeRange() (SizeRange, error) {
	m := sizeRangePattern.FindStringSubmatch(p.SwellSize)
	if m == nil {
		return DefaultSizeRange, &MalformedProfileError{SwellSize: p.SwellSize}
	}

	lo, errLo := strconv.ParseFloat(m[1], 64)
	hi, errHi := strconv.ParseFloat(m[2], 64)
	if errLo != nil || errHi != nil || lo > hi {
		return DefaultSizeRange, &MalformedProfileError{SwellSize: p.SwellSize}
	}

	return SizeRange{Min: lo, Max: hi}, nil
}

// Clone returns a copy that shares no slices with p
func (p SpotPreferenceProfile) Clone() SpotPreferenceProfile {
	return SpotPreferenceProfile{
		SwellDirection: cloneStrings(p.SwellDirection),
		WindDirection:  cloneStrings(p.WindDirection),
		Tide:           cloneStrings(p.Tide),
		SwellSize:      p.SwellSize,
	}
}

// Spot is a surf spot record together with its most recent live data
type Spot struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Region         string                `json:"region"`
	Latitude       float64               `json:"latitude"`
	Longitude      float64               `json:"longitude"`
	Break          string                `json:"break,omitempty"`
	Difficulty     string                `json:"difficulty,omitempty"`
	BestConditions SpotPreferenceProfile `json:"bestConditions"`

	Live        *NormalizedConditions `json:"live,omitempty"`
	Quality     *QualityResult        `json:"quality,omitempty"`
	LastUpdated *time.Time            `json:"lastUpdated,omitempty"`
}

// Clone returns a deep copy of the spot
func (s Spot) Clone() Spot {
	out := s
	out.BestConditions = s.BestConditions.Clone()
	if s.Live != nil {
		live := s.Live.Clone()
		out.Live = &live
	}
	if s.Quality != nil {
		q := s.Quality.Clone()
		out.Quality = &q
	}
	if s.LastUpdated != nil {
		ts := *s.LastUpdated
		out.LastUpdated = &ts
	}
	return out
}

// Validate checks the static part of a spot record
func (s *Spot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("spot ID is required")
	}
	if s.Name == "" {
		return fmt.Errorf("spot name is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", s.Longitude)
	}
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
