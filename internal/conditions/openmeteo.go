package conditions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bbernstein/swellcheck/pkg/http/client"
)

const (
	endpointWeather = "weather"
	endpointMarine  = "marine"
)

var (
	currentWeatherFields = "temperature_2m,apparent_temperature,relative_humidity_2m,pressure_msl," +
		"wind_speed_10m,wind_direction_10m,wind_gusts_10m,visibility,uv_index,cloud_cover,precipitation,weather_code"
	dailyWeatherFields = "temperature_2m_max,temperature_2m_min,wind_speed_10m_max,wind_gusts_10m_max," +
		"wind_direction_10m_dominant,precipitation_sum,precipitation_probability_max,cloud_cover_mean,weather_code"
	currentMarineFields = "wave_height,wave_direction,wave_period,wind_wave_height,wind_wave_direction,wind_wave_period," +
		"swell_wave_height,swell_wave_direction,swell_wave_period,sea_surface_temperature"
	dailyMarineFields = "wave_height_max,wave_direction_dominant,wave_period_max," +
		"swell_wave_height_max,swell_wave_direction_dominant,swell_wave_period_max"
)

// WeatherReading is the current block of the weather endpoint, in metric units
type WeatherReading struct {
	Time                string   `json:"time"`
	Temperature         float64  `json:"temperature_2m"`
	ApparentTemperature float64  `json:"apparent_temperature"`
	RelativeHumidity    float64  `json:"relative_humidity_2m"`
	PressureMSL         float64  `json:"pressure_msl"`
	WindSpeed           float64  `json:"wind_speed_10m"`
	WindDirection       float64  `json:"wind_direction_10m"`
	WindGusts           *float64 `json:"wind_gusts_10m"`
	Visibility          *float64 `json:"visibility"`
	UVIndex             *float64 `json:"uv_index"`
	CloudCover          float64  `json:"cloud_cover"`
	Precipitation       float64  `json:"precipitation"`
	WeatherCode         int      `json:"weather_code"`
}

// MarineReading is the current block of the marine endpoint, in metric units.
// Fields are nil where the model has no data, which is common close to shore.
type MarineReading struct {
	Time                  string   `json:"time"`
	WaveHeight            *float64 `json:"wave_height"`
	WaveDirection         *float64 `json:"wave_direction"`
	WavePeriod            *float64 `json:"wave_period"`
	WindWaveHeight        *float64 `json:"wind_wave_height"`
	WindWaveDirection     *float64 `json:"wind_wave_direction"`
	WindWavePeriod        *float64 `json:"wind_wave_period"`
	SwellWaveHeight       *float64 `json:"swell_wave_height"`
	SwellWaveDirection    *float64 `json:"swell_wave_direction"`
	SwellWavePeriod       *float64 `json:"swell_wave_period"`
	SeaSurfaceTemperature *float64 `json:"sea_surface_temperature"`
}

// DailyWeather holds parallel per-day arrays indexed by Time. Entries are nil
// where the model has no value for that day.
type DailyWeather struct {
	Time                        []string   `json:"time"`
	TemperatureMax              []*float64 `json:"temperature_2m_max"`
	TemperatureMin              []*float64 `json:"temperature_2m_min"`
	WindSpeedMax                []*float64 `json:"wind_speed_10m_max"`
	WindGustsMax                []*float64 `json:"wind_gusts_10m_max"`
	WindDirectionDominant       []*float64 `json:"wind_direction_10m_dominant"`
	PrecipitationSum            []*float64 `json:"precipitation_sum"`
	PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
	CloudCoverMean              []*float64 `json:"cloud_cover_mean"`
	WeatherCode                 []*int     `json:"weather_code"`
}

// DailyMarine holds parallel per-day arrays indexed by Time
type DailyMarine struct {
	Time                       []string   `json:"time"`
	WaveHeightMax              []*float64 `json:"wave_height_max"`
	WaveDirectionDominant      []*float64 `json:"wave_direction_dominant"`
	WavePeriodMax              []*float64 `json:"wave_period_max"`
	SwellWaveHeightMax         []*float64 `json:"swell_wave_height_max"`
	SwellWaveDirectionDominant []*float64 `json:"swell_wave_direction_dominant"`
	SwellWavePeriodMax         []*float64 `json:"swell_wave_period_max"`
}

type WeatherFetcher interface {
	Current(ctx context.Context, lat, lng float64) (*WeatherReading, error)
	Daily(ctx context.Context, lat, lng float64, days int) (*DailyWeather, error)
}

type MarineFetcher interface {
	Current(ctx context.Context, lat, lng float64) (*MarineReading, error)
	Daily(ctx context.Context, lat, lng float64, days int) (*DailyMarine, error)
}

// OpenMeteoWeather reads the Open-Meteo forecast endpoint
type OpenMeteoWeather struct {
	client client.Interface
}

func NewOpenMeteoWeather(c client.Interface) *OpenMeteoWeather {
	return &OpenMeteoWeather{client: c}
}

var _ WeatherFetcher = (*OpenMeteoWeather)(nil)

func (w *OpenMeteoWeather) Current(ctx context.Context, lat, lng float64) (*WeatherReading, error) {
	params := coordinateParams(lat, lng)
	params.Set("current", currentWeatherFields)
	params.Set("wind_speed_unit", "ms")
	params.Set("timezone", "auto")

	var resp struct {
		Current *WeatherReading `json:"current"`
	}
	if err := getJSON(ctx, w.client, endpointWeather, "/v1/forecast?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Current == nil {
		return nil, &UpstreamError{Endpoint: endpointWeather, Err: errors.New("response has no current block")}
	}
	return resp.Current, nil
}

func (w *OpenMeteoWeather) Daily(ctx context.Context, lat, lng float64, days int) (*DailyWeather, error) {
	params := coordinateParams(lat, lng)
	params.Set("daily", dailyWeatherFields)
	params.Set("wind_speed_unit", "ms")
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(days))

	var resp struct {
		Daily *DailyWeather `json:"daily"`
	}
	if err := getJSON(ctx, w.client, endpointWeather, "/v1/forecast?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Daily == nil || len(resp.Daily.Time) == 0 {
		return nil, &UpstreamError{Endpoint: endpointWeather, Err: errors.New("response has no daily block")}
	}
	return resp.Daily, nil
}

// OpenMeteoMarine reads the Open-Meteo marine endpoint
type OpenMeteoMarine struct {
	client client.Interface
}

func NewOpenMeteoMarine(c client.Interface) *OpenMeteoMarine {
	return &OpenMeteoMarine{client: c}
}

var _ MarineFetcher = (*OpenMeteoMarine)(nil)

func (m *OpenMeteoMarine) Current(ctx context.Context, lat, lng float64) (*MarineReading, error) {
	params := coordinateParams(lat, lng)
	params.Set("current", currentMarineFields)
	params.Set("timezone", "auto")

	var resp struct {
		Current *MarineReading `json:"current"`
	}
	if err := getJSON(ctx, m.client, endpointMarine, "/v1/marine?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Current == nil {
		return nil, &UpstreamError{Endpoint: endpointMarine, Err: errors.New("response has no current block")}
	}
	return resp.Current, nil
}

func (m *OpenMeteoMarine) Daily(ctx context.Context, lat, lng float64, days int) (*DailyMarine, error) {
	params := coordinateParams(lat, lng)
	params.Set("daily", dailyMarineFields)
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(days))

	var resp struct {
		Daily *DailyMarine `json:"daily"`
	}
	if err := getJSON(ctx, m.client, endpointMarine, "/v1/marine?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Daily == nil || len(resp.Daily.Time) == 0 {
		return nil, &UpstreamError{Endpoint: endpointMarine, Err: errors.New("response has no daily block")}
	}
	return resp.Daily, nil
}

func coordinateParams(lat, lng float64) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	return params
}

// getJSON performs the request and decodes the body into target. Every failure
// is reported as an *UpstreamError.
func getJSON(ctx context.Context, c client.Interface, endpoint, path string, target interface{}) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		upstreamErr := &UpstreamError{Endpoint: endpoint, Err: err}
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) {
			upstreamErr.StatusCode = statusErr.StatusCode
		}
		return upstreamErr
	}

	if err := json.Unmarshal(resp.Body, target); err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
