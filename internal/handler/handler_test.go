package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/swellcheck/internal/api"
	"github.com/bbernstein/swellcheck/internal/conditions"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/internal/spots"
)

type mockConditionsService struct {
	fetchConditionsFn func(ctx context.Context, lat, lng float64) (models.NormalizedConditions, error)
	fetchForecastFn   func(ctx context.Context, lat, lng float64, days int) ([]models.ForecastDay, error)
}

func (m *mockConditionsService) FetchConditions(ctx context.Context, lat, lng float64) (models.NormalizedConditions, error) {
	if m.fetchConditionsFn != nil {
		return m.fetchConditionsFn(ctx, lat, lng)
	}
	return testConditions(), nil
}

func (m *mockConditionsService) FetchForecast(ctx context.Context, lat, lng float64, days int) ([]models.ForecastDay, error) {
	if m.fetchForecastFn != nil {
		return m.fetchForecastFn(ctx, lat, lng, days)
	}
	out := make([]models.ForecastDay, days)
	for i := range out {
		out[i] = models.ForecastDay{Date: fmt.Sprintf("2024-06-%02d", i+1)}
	}
	return out, nil
}

type mockSpotUpdater struct {
	updateSpotFn  func(ctx context.Context, spot models.Spot) (models.Spot, error)
	updateSpotsFn func(ctx context.Context, spots []models.Spot, opts conditions.BatchOptions) ([]models.Spot, error)
}

func (m *mockSpotUpdater) UpdateSpotWithLiveData(ctx context.Context, spot models.Spot) (models.Spot, error) {
	if m.updateSpotFn != nil {
		return m.updateSpotFn(ctx, spot)
	}
	return rated(spot), nil
}

func (m *mockSpotUpdater) UpdateSpots(ctx context.Context, in []models.Spot, opts conditions.BatchOptions) ([]models.Spot, error) {
	if m.updateSpotsFn != nil {
		return m.updateSpotsFn(ctx, in, opts)
	}
	out := make([]models.Spot, len(in))
	for i, s := range in {
		out[i] = rated(s)
	}
	return out, nil
}

func testConditions() models.NormalizedConditions {
	return models.NormalizedConditions{
		SwellHeight:    4.9,
		SwellPeriod:    14,
		SwellDirection: "SW",
		WindSpeed:      4,
		WindDirection:  "NE",
		Timestamp:      time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC),
		Sources:        models.Sources{Weather: models.SourceLive, Marine: models.SourceLive},
	}
}

func rated(s models.Spot) models.Spot {
	live := testConditions()
	q := models.QualityResult{Score: 8.4}
	out := s.Clone()
	out.Live = &live
	out.Quality = &q
	return out
}

func testCatalog(t *testing.T) models.SpotCatalog {
	t.Helper()
	c, err := spots.NewStaticCatalog()
	require.NoError(t, err)
	return c
}

func TestConditionsHandler_HandleRequest(t *testing.T) {
	tests := []struct {
		name           string
		request        events.APIGatewayProxyRequest
		service        *mockConditionsService
		expectedStatus int
		validate       func(t *testing.T, body string)
	}{
		{
			name: "current conditions",
			request: events.APIGatewayProxyRequest{
				QueryStringParameters: map[string]string{"lat": "33.382", "lon": "-117.588"},
			},
			service:        &mockConditionsService{},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body string) {
				var resp api.ConditionsResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, "conditions", resp.ResponseType)
				assert.Equal(t, 33.382, resp.Latitude)
				assert.Equal(t, 4.9, resp.Conditions.SwellHeight)
				assert.False(t, resp.Degraded)
			},
		},
		{
			name: "forecast with days",
			request: events.APIGatewayProxyRequest{
				QueryStringParameters: map[string]string{"lat": "33.382", "lon": "-117.588", "days": "3"},
			},
			service:        &mockConditionsService{},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body string) {
				var resp api.ForecastResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, "forecast", resp.ResponseType)
				assert.Len(t, resp.Days, 3)
			},
		},
		{
			name: "forecast days out of range",
			request: events.APIGatewayProxyRequest{
				QueryStringParameters: map[string]string{"lat": "1", "lon": "1", "days": "30"},
			},
			service:        &mockConditionsService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing coordinates",
			request: events.APIGatewayProxyRequest{
				QueryStringParameters: map[string]string{"lat": "1"},
			},
			service:        &mockConditionsService{},
			expectedStatus: http.StatusBadRequest,
			validate: func(t *testing.T, body string) {
				var resp api.ErrorResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, "lat and lon are required", resp.Error)
			},
		},
		{
			name: "invalid coordinates",
			request: events.APIGatewayProxyRequest{
				QueryStringParameters: map[string]string{"lat": "95", "lon": "1"},
			},
			service:        &mockConditionsService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service timeout",
			request: events.APIGatewayProxyRequest{
				QueryStringParameters: map[string]string{"lat": "1", "lon": "1"},
			},
			service: &mockConditionsService{
				fetchConditionsFn: func(ctx context.Context, lat, lng float64) (models.NormalizedConditions, error) {
					return models.NormalizedConditions{}, context.DeadlineExceeded
				},
			},
			expectedStatus: http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewConditionsHandler(tt.service)
			resp, err := h.HandleRequest(context.Background(), tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.NotEmpty(t, resp.Headers["X-Request-ID"])
			if tt.validate != nil {
				tt.validate(t, resp.Body)
			}
		})
	}
}

func TestSpotsHandler_HandleRequest(t *testing.T) {
	tests := []struct {
		name           string
		request        events.APIGatewayProxyRequest
		updater        *mockSpotUpdater
		expectedStatus int
		validate       func(t *testing.T, body string)
	}{
		{
			name: "single spot",
			request: events.APIGatewayProxyRequest{
				QueryStringParameters: map[string]string{"spotId": "lower-trestles"},
			},
			updater:        &mockSpotUpdater{},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body string) {
				var resp api.SpotsResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				require.Len(t, resp.Spots, 1)
				assert.Equal(t, "lower-trestles", resp.Spots[0].ID)
				require.NotNil(t, resp.Spots[0].Quality)
				assert.Equal(t, models.RatingExcellent, resp.Spots[0].Quality.Rating())
			},
		},
		{
			name: "unknown spot",
			request: events.APIGatewayProxyRequest{
				QueryStringParameters: map[string]string{"spotId": "atlantis"},
			},
			updater:        &mockSpotUpdater{},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "all spots",
			request:        events.APIGatewayProxyRequest{},
			updater:        &mockSpotUpdater{},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body string) {
				var resp api.SpotsResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Len(t, resp.Spots, 12)
				for _, s := range resp.Spots {
					assert.NotNil(t, s.Live)
				}
			},
		},
		{
			name: "search",
			request: events.APIGatewayProxyRequest{
				QueryStringParameters: map[string]string{"q": "oahu"},
			},
			updater: &mockSpotUpdater{
				updateSpotsFn: func(ctx context.Context, in []models.Spot, opts conditions.BatchOptions) ([]models.Spot, error) {
					assert.Equal(t, 2, opts.Size)
					return in, nil
				},
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, body string) {
				var resp api.SpotsResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Len(t, resp.Spots, 3)
			},
		},
		{
			name:    "cancelled update",
			request: events.APIGatewayProxyRequest{},
			updater: &mockSpotUpdater{
				updateSpotsFn: func(ctx context.Context, in []models.Spot, opts conditions.BatchOptions) ([]models.Spot, error) {
					return in, context.Canceled
				},
			},
			expectedStatus: 499,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := NewSpotsHandler(testCatalog(t), tt.updater, conditions.BatchOptions{Size: 2})
			resp, err := h.HandleRequest(context.Background(), tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.validate != nil {
				tt.validate(t, resp.Body)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid coordinates", &conditions.InvalidCoordinateError{Latitude: 91}, http.StatusBadRequest},
		{"invalid range", &conditions.InvalidRangeError{Message: "days must be between 1 and 16"}, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("lookup: %w", spots.ErrSpotNotFound), http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := StatusFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestRequestID(t *testing.T) {
	req := events.APIGatewayProxyRequest{}
	req.RequestContext.RequestID = "gw-1"
	assert.Equal(t, "gw-1", RequestID(req))

	a := RequestID(events.APIGatewayProxyRequest{})
	b := RequestID(events.APIGatewayProxyRequest{})
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
