package station

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/swellcheck/internal/cache"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/pkg/http/client"
)

// Helper function to create test stations
func createTestStation(id string) models.Station {
	state := "CA"
	stationType := "R"
	return models.Station{
		ID:             id,
		Name:           "Test Station " + id,
		State:          &state,
		Latitude:       32.867,
		Longitude:      -117.257,
		Source:         models.SourceNOAA,
		TimeZoneOffset: -8 * 3600,
		StationType:    &stationType,
	}
}

// Helper function to create NOAA API response
func createNOAAResponse(stations []models.Station) string {
	type noaaStation struct {
		ID           string  `json:"stationId"`
		Name         string  `json:"name"`
		State        string  `json:"state,omitempty"`
		Lat          float64 `json:"lat"`
		Lon          float64 `json:"lon"`
		TimeZoneCorr string  `json:"timeZoneCorr"`
		StationType  string  `json:"stationType,omitempty"`
	}

	noaaStations := make([]noaaStation, len(stations))
	for i, s := range stations {
		noaaStations[i] = noaaStation{
			ID:           s.ID,
			Name:         s.Name,
			State:        *s.State,
			Lat:          s.Latitude,
			Lon:          s.Longitude,
			TimeZoneCorr: "-8",
			StationType:  *s.StationType,
		}
	}

	response := struct {
		StationList []noaaStation `json:"stationList"`
	}{
		StationList: noaaStations,
	}

	responseBytes, _ := json.Marshal(response)
	return string(responseBytes)
}

func newStationServer(t *testing.T, stations []models.Station, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(createNOAAResponse(stations)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewNOAAStationFinder(t *testing.T) {
	t.Parallel()

	finder, err := NewNOAAStationFinder(client.New(client.Options{}), nil)
	require.NoError(t, err)
	assert.NotNil(t, finder.memCache)

	finder, err = NewNOAAStationFinder(nil, nil)
	assert.Error(t, err)
	assert.Nil(t, finder)
}

func TestFindStation(t *testing.T) {
	t.Parallel()

	station1 := createTestStation("9410230")
	srv := newStationServer(t, []models.Station{station1}, nil)

	tests := []struct {
		name      string
		stationID string
		want      *models.Station
		wantErr   bool
	}{
		{
			name:      "existing station",
			stationID: "9410230",
			want:      &station1,
		},
		{
			name:      "non-existent station",
			stationID: "invalid",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			httpClient := client.New(client.Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
			finder, err := NewNOAAStationFinder(httpClient, nil)
			require.NoError(t, err)

			got, err := finder.FindStation(context.Background(), tt.stationID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.Name, got.Name)
			assert.Equal(t, tt.want.State, got.State)
			assert.Equal(t, tt.want.Latitude, got.Latitude)
			assert.Equal(t, tt.want.TimeZoneOffset, got.TimeZoneOffset)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestFindNearestStations(t *testing.T) {
	t.Parallel()

	stations := []models.Station{
		createTestStation("NEAR"),
		createTestStation("MEDIUM"),
		createTestStation("FAR"),
	}
	stations[1].Latitude += 0.1
	stations[2].Latitude += 0.2

	srv := newStationServer(t, stations, nil)

	tests := []struct {
		name        string
		lat         float64
		lon         float64
		limit       int
		wantCount   int
		wantOrder   []string
		wantErr     bool
		errContains string
	}{
		{
			name:      "find nearest 2 stations",
			lat:       32.867,
			lon:       -117.257,
			limit:     2,
			wantCount: 2,
			wantOrder: []string{"NEAR", "MEDIUM"},
		},
		{
			name:      "find all stations",
			lat:       32.867,
			lon:       -117.257,
			limit:     5,
			wantCount: 3,
			wantOrder: []string{"NEAR", "MEDIUM", "FAR"},
		},
		{
			name:      "order follows distance",
			lat:       33.2,
			lon:       -117.257,
			limit:     3,
			wantCount: 3,
			wantOrder: []string{"FAR", "MEDIUM", "NEAR"},
		},
		{
			name:        "invalid latitude",
			lat:         91.0,
			lon:         -117.257,
			limit:       2,
			wantErr:     true,
			errContains: "invalid latitude",
		},
		{
			name:        "invalid longitude",
			lat:         32.867,
			lon:         -181.0,
			limit:       2,
			wantErr:     true,
			errContains: "invalid longitude",
		},
		{
			name:      "zero limit uses default",
			lat:       32.867,
			lon:       -117.257,
			limit:     0,
			wantCount: 3,
			wantOrder: []string{"NEAR", "MEDIUM", "FAR"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			httpClient := client.New(client.Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
			finder, err := NewNOAAStationFinder(httpClient, nil)
			require.NoError(t, err)

			got, err := finder.FindNearestStations(context.Background(), tt.lat, tt.lon, tt.limit)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)
			for i, wantID := range tt.wantOrder {
				assert.Equal(t, wantID, got[i].ID, fmt.Sprintf("Station at position %d", i))
			}
			for i := 1; i < len(got); i++ {
				assert.GreaterOrEqual(t, got[i].Distance, got[i-1].Distance,
					"Distances should be in ascending order")
			}
		})
	}
}

func TestParseTimeZoneOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "positive offset", input: "8", expected: 28800},
		{name: "negative offset", input: "-10", expected: -36000},
		{name: "zero offset", input: "0", expected: 0},
		{name: "invalid string", input: "invalid", expected: 0},
		{name: "empty string", input: "", expected: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, parseTimeZoneOffset(tt.input))
		})
	}
}

func TestCalculateDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lat1     float64
		lon1     float64
		lat2     float64
		lon2     float64
		expected float64
		delta    float64
	}{
		{
			name:     "same point",
			lat1:     21.665,
			lon1:     -158.053,
			lat2:     21.665,
			lon2:     -158.053,
			expected: 0,
			delta:    0.0001,
		},
		{
			name:     "known distance - Seattle to Portland",
			lat1:     47.6062,
			lon1:     -122.3321,
			lat2:     45.5155,
			lon2:     -122.6789,
			expected: 234.0,
			delta:    1.0,
		},
		{
			name:     "antipodal points",
			lat1:     90,
			lon1:     0,
			lat2:     -90,
			lon2:     0,
			expected: 20015.1,
			delta:    0.1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, calculateDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.delta)
		})
	}
}

func TestStationListIsCached(t *testing.T) {
	t.Parallel()

	testStation := createTestStation("9414290")
	var calls atomic.Int32
	srv := newStationServer(t, []models.Station{testStation}, &calls)

	memCache := cache.NewStationCache(time.Hour)
	finder, err := NewNOAAStationFinder(client.New(client.Options{BaseURL: srv.URL}), memCache)
	require.NoError(t, err)

	assert.Nil(t, memCache.GetStations())

	stations, err := finder.getStationList(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, testStation.ID, stations[0].ID)

	cached := memCache.GetStations()
	require.Len(t, cached, 1)

	stations2, err := finder.getStationList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stations, stations2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStationListUpstreamError(t *testing.T) {
	t.Parallel()

	httpClient := client.New(client.Options{MaxRetries: -1})
	httpClient.GetFunc = func(_ context.Context, _ string) (*client.Response, error) {
		return nil, &client.StatusError{StatusCode: http.StatusServiceUnavailable}
	}

	finder, err := NewNOAAStationFinder(httpClient, nil)
	require.NoError(t, err)

	_, err = finder.FindNearestStations(context.Background(), 32.8, -117.2, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching stations")
}

func BenchmarkCalculateDistance(b *testing.B) {
	lat1, lon1 := 47.6062, -122.3321 // Seattle
	lat2, lon2 := 45.5155, -122.6789 // Portland

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		calculateDistance(lat1, lon1, lat2, lon2)
	}
}
