// Package tide resolves the current tide stage at a coordinate from the nearest
// NOAA prediction station.
package tide

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/cache"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/pkg/http/client"
)

// DefaultMaxStationDistanceKm is how far a station may be from a spot and still describe its tide
const DefaultMaxStationDistanceKm = 100.0

type Service struct {
	httpClient    client.Interface
	stationFinder models.StationFinder
	extremesCache *cache.ResultCache[[]models.TideExtreme]
	maxDistanceKm float64
	now           func() time.Time
}

var _ models.TideProvider = (*Service)(nil)

func NewService(httpClient client.Interface, stationFinder models.StationFinder, extremesCache *cache.ResultCache[[]models.TideExtreme]) *Service {
	return &Service{
		httpClient:    httpClient,
		stationFinder: stationFinder,
		extremesCache: extremesCache,
		maxDistanceKm: DefaultMaxStationDistanceKm,
		now:           time.Now,
	}
}

// CurrentState returns the tide level and trend right now at the station nearest lat/lon
func (s *Service) CurrentState(ctx context.Context, lat, lon float64) (*models.TideState, error) {
	stations, err := s.stationFinder.FindNearestStations(ctx, lat, lon, 1)
	if err != nil {
		return nil, fmt.Errorf("finding nearest station: %w", err)
	}
	if len(stations) == 0 || stations[0].Distance > s.maxDistanceKm {
		return nil, ErrNoNearbyStation
	}
	station := stations[0]

	location := time.FixedZone("Station", station.TimeZoneOffset)
	now := s.now().In(location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, location)

	// yesterday through tomorrow so "now" is always bracketed
	var extremes []models.TideExtreme
	for offset := -1; offset <= 1; offset++ {
		day := today.AddDate(0, 0, offset)
		dayExtremes, err := s.getExtremes(ctx, station.ID, day, location)
		if err != nil {
			return nil, fmt.Errorf("getting extremes: %w", err)
		}
		extremes = append(extremes, dayExtremes...)
	}
	sort.Slice(extremes, func(i, j int) bool {
		return extremes[i].Timestamp < extremes[j].Timestamp
	})

	state, err := classify(extremes, now.UnixMilli())
	if err != nil {
		return nil, err
	}
	state.StationID = station.ID

	log.Debug().
		Str("station", station.ID).
		Float64("distance_km", station.Distance).
		Str("level", string(state.Level)).
		Str("trend", string(state.Trend)).
		Msg("Resolved tide state")

	return state, nil
}

func (s *Service) getExtremes(ctx context.Context, stationID string, day time.Time, location *time.Location) ([]models.TideExtreme, error) {
	key := cache.TideKey(stationID, day)
	if s.extremesCache != nil {
		if cached, ok := s.extremesCache.Get(key); ok {
			return cached, nil
		}
	}

	date := day.Format("20060102")
	extremes, err := s.fetchNoaaExtremes(ctx, stationID, date, date, location)
	if err != nil {
		return nil, err
	}

	if s.extremesCache != nil {
		s.extremesCache.Put(key, extremes)
	}
	return extremes, nil
}

func (s *Service) fetchNoaaExtremes(ctx context.Context, stationID, startDate, endDate string, location *time.Location) ([]models.TideExtreme, error) {
	resp, err := s.httpClient.Get(ctx, fmt.Sprintf("/api/prod/datagetter"+
		"?station=%s&begin_date=%s&end_date=%s&product=predictions&datum=MLLW"+
		"&units=english&time_zone=lst_ldt&format=json&interval=hilo",
		stationID, startDate, endDate))
	if err != nil {
		return nil, NewNoaaAPIError("fetching extremes", err)
	}

	log.Debug().Msgf("Fetched extremes from noaa: station=%s begin_date=%s end_date=%s",
		stationID, startDate, endDate)

	var noaaResp models.NoaaResponse
	if err := json.Unmarshal(resp.Body, &noaaResp); err != nil {
		return nil, NewNoaaAPIError("decoding response", err)
	}
	if noaaResp.Error != nil {
		return nil, NewNoaaAPIError(noaaResp.Error.Message, nil)
	}

	extremes := make([]models.TideExtreme, 0, len(noaaResp.Predictions))
	for _, p := range noaaResp.Predictions {
		timestamp, err := parseNoaaTime(p.Time, location)
		if err != nil {
			return nil, err
		}

		height, err := strconv.ParseFloat(p.Height, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing height %s: %w", p.Height, err)
		}

		tideType := models.TideTypeLow
		if p.Type != nil && *p.Type == "H" {
			tideType = models.TideTypeHigh
		}

		extremes = append(extremes, models.TideExtreme{
			Type:      tideType,
			Timestamp: timestamp,
			LocalTime: formatLocalTime(timestamp, location),
			Height:    height,
		})
	}

	return extremes, nil
}

// classify places timestamp between its bracketing extremes. The interpolated
// height in the lower third of the range is Low, the upper third High.
func classify(extremes []models.TideExtreme, timestamp int64) (*models.TideState, error) {
	idx := findNearestExtremeIndex(extremes, timestamp)
	if idx <= 0 || idx >= len(extremes) {
		return nil, fmt.Errorf("not enough tide extremes around %d", timestamp)
	}

	prev, next := extremes[idx-1], extremes[idx]
	height := interpolateExtremes(extremes, timestamp)

	low := math.Min(prev.Height, next.Height)
	high := math.Max(prev.Height, next.Height)

	level := models.TideLevelMid
	if span := high - low; span > 0 {
		fraction := (height - low) / span
		switch {
		case fraction < 1.0/3:
			level = models.TideLevelLow
		case fraction > 2.0/3:
			level = models.TideLevelHigh
		}
	}

	trend := models.TideFalling
	if next.Type == models.TideTypeHigh {
		trend = models.TideTypeRising
	}

	return &models.TideState{
		Level:  level,
		Trend:  trend,
		Height: math.Round(height*100) / 100,
	}, nil
}

func interpolateExtremes(extremes []models.TideExtreme, timestamp int64) float64 {
	if len(extremes) == 0 {
		return 0
	}

	// Find the two extremes that bracket the requested timestamp
	idx := findNearestExtremeIndex(extremes, timestamp)
	if idx <= 0 {
		return extremes[0].Height
	}
	if idx >= len(extremes) {
		return extremes[len(extremes)-1].Height
	}

	e1 := extremes[idx-1]
	e2 := extremes[idx]
	t := float64(timestamp-e1.Timestamp) / float64(e2.Timestamp-e1.Timestamp)

	// Hermite interpolation
	h00 := 2*math.Pow(t, 3) - 3*math.Pow(t, 2) + 1
	h10 := math.Pow(t, 3) - 2*math.Pow(t, 2) + t
	h01 := -2*math.Pow(t, 3) + 3*math.Pow(t, 2)
	h11 := math.Pow(t, 3) - math.Pow(t, 2)

	// Approximate tangents using neighboring points
	m1 := 0.0
	m2 := 0.0
	if idx > 1 {
		m1 = (e2.Height - extremes[idx-2].Height) / float64(e2.Timestamp-extremes[idx-2].Timestamp)
	}
	if idx < len(extremes)-1 {
		m2 = (extremes[idx+1].Height - e1.Height) / float64(extremes[idx+1].Timestamp-e1.Timestamp)
	}

	return h00*e1.Height + h10*m1*float64(e2.Timestamp-e1.Timestamp) +
		h01*e2.Height + h11*m2*float64(e2.Timestamp-e1.Timestamp)
}

func findNearestExtremeIndex(extremes []models.TideExtreme, timestamp int64) int {
	return sort.Search(len(extremes), func(i int) bool {
		return extremes[i].Timestamp >= timestamp
	})
}

func parseNoaaTime(timeStr string, location *time.Location) (int64, error) {
	// NOAA time format is "2006-01-02 15:04" in the station's local time
	t, err := time.ParseInLocation("2006-01-02 15:04", timeStr, location)
	if err != nil {
		return 0, fmt.Errorf("parsing time %s: %w", timeStr, err)
	}
	return t.UnixMilli(), nil
}

func formatLocalTime(timestamp int64, location *time.Location) string {
	return time.UnixMilli(timestamp).In(location).Format("2006-01-02T15:04:05")
}
