package conditions

import (
	"errors"
	"fmt"
	"math"
)

// ErrUpstreamUnavailable matches every UpstreamError with errors.Is
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// UpstreamError describes a failed weather or marine request
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s endpoint unavailable (status %d): %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s endpoint unavailable: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// InvalidCoordinateError is returned for a latitude outside [-90, 90] or a longitude outside [-180, 180]
type InvalidCoordinateError struct {
	Latitude  float64
	Longitude float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinates: latitude %f, longitude %f", e.Latitude, e.Longitude)
}

// InvalidRangeError is returned when a requested forecast length is out of bounds
type InvalidRangeError struct {
	Message string
}

func (e *InvalidRangeError) Error() string {
	return e.Message
}

func validateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return &InvalidCoordinateError{Latitude: lat, Longitude: lng}
	}
	return nil
}
