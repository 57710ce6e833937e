package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/bbernstein/swellcheck/internal/conditions"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/internal/spots"
)

// ConditionsService is the part of conditions.Client the handlers need
type ConditionsService interface {
	FetchConditions(ctx context.Context, lat, lng float64) (models.NormalizedConditions, error)
	FetchForecast(ctx context.Context, lat, lng float64, days int) ([]models.ForecastDay, error)
}

// SpotUpdater attaches live data and ratings to spots
type SpotUpdater interface {
	UpdateSpotWithLiveData(ctx context.Context, spot models.Spot) (models.Spot, error)
	UpdateSpots(ctx context.Context, spots []models.Spot, opts conditions.BatchOptions) ([]models.Spot, error)
}

var (
	_ ConditionsService = (*conditions.Client)(nil)
	_ SpotUpdater       = (*conditions.Client)(nil)
)

// StatusFor maps a service error to an HTTP status and a client-safe message
func StatusFor(err error) (int, string) {
	var coordErr *conditions.InvalidCoordinateError
	var rangeErr *conditions.InvalidRangeError

	switch {
	case errors.As(err, &coordErr):
		return http.StatusBadRequest, "Invalid coordinates"
	case errors.As(err, &rangeErr):
		return http.StatusBadRequest, rangeErr.Message
	case errors.Is(err, spots.ErrSpotNotFound):
		return http.StatusNotFound, "Spot not found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	case errors.Is(err, context.Canceled):
		return 499, "Request cancelled"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// RequestID returns the API Gateway request ID, or a fresh one when the event has none
func RequestID(request events.APIGatewayProxyRequest) string {
	if id := request.RequestContext.RequestID; id != "" {
		return id
	}
	return uuid.NewString()
}
