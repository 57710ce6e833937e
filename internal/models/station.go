package models

import "fmt"

type Source string

const (
	SourceNOAA Source = "NOAA"
)

// Station is a NOAA tide-prediction station
type Station struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	State          *string `json:"state,omitempty"`
	Distance       float64 `json:"distance"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Source         Source  `json:"source"`
	TimeZoneOffset int     `json:"timeZoneOffset"`
	StationType    *string `json:"stationType,omitempty"`
}

// Validate checks if a Station's fields are valid
func (s *Station) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station ID is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", s.Longitude)
	}
	if s.Source != SourceNOAA {
		return fmt.Errorf("invalid source: %s", s.Source)
	}
	return nil
}
