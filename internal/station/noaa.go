package station

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/bbernstein/swellcheck/internal/cache"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/pkg/http/client"
)

const (
	stationListPath    = "/mdapi/prod/webapi/tidepredstations.json"
	defaultStationTTL  = 24 * time.Hour
	defaultNearestSize = 5
)

// NOAAStationFinder looks up tide-prediction stations from the NOAA metadata API
type NOAAStationFinder struct {
	httpClient client.Interface
	memCache   *cache.StationCache
	group      singleflight.Group
}

var _ models.StationFinder = (*NOAAStationFinder)(nil)

func NewNOAAStationFinder(httpClient client.Interface, memCache *cache.StationCache) (*NOAAStationFinder, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if memCache == nil {
		memCache = cache.NewStationCache(defaultStationTTL)
	}

	return &NOAAStationFinder{
		httpClient: httpClient,
		memCache:   memCache,
	}, nil
}

func (f *NOAAStationFinder) FindNearestStations(ctx context.Context, lat, lon float64, limit int) ([]models.Station, error) {
	// Validate coordinates
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude: %f", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid longitude: %f", lon)
	}

	stations, err := f.getStationList(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	type stationDistance struct {
		station  models.Station
		distance float64
	}

	stationDistances := make([]stationDistance, len(stations))
	for i, station := range stations {
		stationDistances[i] = stationDistance{
			station:  station,
			distance: calculateDistance(lat, lon, station.Latitude, station.Longitude),
		}
	}

	sort.Slice(stationDistances, func(i, j int) bool {
		return stationDistances[i].distance < stationDistances[j].distance
	})

	if limit <= 0 {
		limit = defaultNearestSize
	}
	if limit > len(stationDistances) {
		limit = len(stationDistances)
	}

	result := make([]models.Station, limit)
	for i := 0; i < limit; i++ {
		station := stationDistances[i].station
		station.Distance = stationDistances[i].distance
		result[i] = station
	}

	return result, nil
}

func (f *NOAAStationFinder) FindStation(ctx context.Context, stationID string) (*models.Station, error) {
	stations, err := f.getStationList(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	for _, station := range stations {
		if station.ID == stationID {
			return &station, nil
		}
	}

	return nil, fmt.Errorf("station not found: %s", stationID)
}

func (f *NOAAStationFinder) getStationList(ctx context.Context) ([]models.Station, error) {
	if stations := f.memCache.GetStations(); stations != nil {
		log.Debug().Msg("Memory cache HIT for station list")
		return stations, nil
	}

	v, err, _ := f.group.Do(stationListPath, func() (interface{}, error) {
		log.Debug().Msg("Cache MISS for station list, fetching from NOAA API")

		stations, err := f.fetchStationList(ctx)
		if err != nil {
			return nil, err
		}
		f.memCache.SetStations(stations)
		return stations, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Station), nil
}

func (f *NOAAStationFinder) fetchStationList(ctx context.Context) ([]models.Station, error) {
	resp, err := f.httpClient.Get(ctx, stationListPath)
	if err != nil {
		return nil, fmt.Errorf("fetching stations: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from NOAA API")
	}

	var noaaResp struct {
		Stations []struct {
			ID           string  `json:"stationId"`
			Name         string  `json:"name"`
			State        string  `json:"state"`
			Lat          float64 `json:"lat"`
			Lon          float64 `json:"lon"`
			TimeZoneCorr string  `json:"timeZoneCorr"`
			StationType  string  `json:"stationType"`
		} `json:"stationList"`
	}

	if err := json.Unmarshal(resp.Body, &noaaResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	stations := make([]models.Station, len(noaaResp.Stations))
	for i, s := range noaaResp.Stations {
		var state, stationType *string
		if s.State != "" {
			stateValue := s.State
			state = &stateValue
		}
		if s.StationType != "" {
			stationTypeValue := s.StationType
			stationType = &stationTypeValue
		}

		stations[i] = models.Station{
			ID:             s.ID,
			Name:           s.Name,
			State:          state,
			Latitude:       s.Lat,
			Longitude:      s.Lon,
			Source:         models.SourceNOAA,
			TimeZoneOffset: parseTimeZoneOffset(s.TimeZoneCorr),
			StationType:    stationType,
		}
	}

	log.Info().Int("station_count", len(stations)).Msg("Loaded NOAA station list")
	return stations, nil
}

func parseTimeZoneOffset(tzCorr string) int {
	offset, err := strconv.Atoi(tzCorr)
	if err != nil {
		return 0
	}
	return offset * 3600 // Convert hours to seconds
}

// calculateDistance returns the great-circle distance in km
func calculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0 // km

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
