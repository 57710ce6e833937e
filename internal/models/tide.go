package models

import (
	"fmt"
	"time"
)

type TideType string

const (
	TideTypeRising TideType = "RISING"
	TideFalling    TideType = "FALLING"
	TideTypeHigh   TideType = "HIGH"
	TideTypeLow    TideType = "LOW"
)

// TideLevel is the coarse tide stage spot profiles are written against
type TideLevel string

const (
	TideLevelLow  TideLevel = "Low"
	TideLevelMid  TideLevel = "Mid"
	TideLevelHigh TideLevel = "High"
)

// TideExtreme represents a high or low tide
type TideExtreme struct {
	Type      TideType `json:"type"`
	Timestamp int64    `json:"timestamp"`
	LocalTime string   `json:"localTime"`
	Height    float64  `json:"height"`
}

// TideState is the tide at a spot at the time it was resolved
type TideState struct {
	Level     TideLevel `json:"level"`
	Trend     TideType  `json:"trend"`
	Height    float64   `json:"height"`
	StationID string    `json:"stationId"`
}

// NoaaPrediction represents the raw NOAA API prediction response
type NoaaPrediction struct {
	Time   string  `json:"t"`              // Time of prediction
	Height string  `json:"v"`              // Predicted water level
	Type   *string `json:"type,omitempty"` // Type of prediction (H for high, L for low)
}

type NoaaResponse struct {
	Predictions []NoaaPrediction `json:"predictions"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Validate checks if a TideExtreme's fields are valid
func (te *TideExtreme) Validate() error {
	if te.Timestamp <= 0 {
		return fmt.Errorf("invalid timestamp: %d", te.Timestamp)
	}

	switch te.Type {
	case TideTypeHigh, TideTypeLow:
	default:
		return fmt.Errorf("invalid tide type: %s", te.Type)
	}

	if te.LocalTime != "" {
		if _, err := time.Parse("2006-01-02T15:04:05", te.LocalTime); err != nil {
			return fmt.Errorf("invalid local time format: %s", te.LocalTime)
		}
	}

	return nil
}

// Validate checks the level and trend of a resolved tide state
func (ts *TideState) Validate() error {
	switch ts.Level {
	case TideLevelLow, TideLevelMid, TideLevelHigh:
	default:
		return fmt.Errorf("invalid tide level: %s", ts.Level)
	}

	switch ts.Trend {
	case TideTypeRising, TideFalling:
	default:
		return fmt.Errorf("invalid tide trend: %s", ts.Trend)
	}

	return nil
}
