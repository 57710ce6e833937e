package conditions

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/bbernstein/swellcheck/internal/cache"
	"github.com/bbernstein/swellcheck/internal/models"
	"github.com/bbernstein/swellcheck/internal/units"
)

const (
	saltWeather uint64 = 1
	saltMarine  uint64 = 2

	tropicLatitude = 23.5
)

// FallbackGenerator synthesizes plausible conditions when an upstream is
// unavailable. Output is a pure function of coordinates, day and Seed.
type FallbackGenerator struct {
	Seed int64
}

func NewFallbackGenerator(seed int64) *FallbackGenerator {
	return &FallbackGenerator{Seed: seed}
}

type region int

const (
	regionOther region = iota
	regionWestCoast
	regionTropical
)

func regionOf(lat, lng float64) region {
	switch {
	case lat >= 30 && lat <= 50 && lng >= -130 && lng <= -115:
		return regionWestCoast
	case math.Abs(lat) < tropicLatitude:
		return regionTropical
	default:
		return regionOther
	}
}

// rng returns a generator seeded from the rounded coordinate key, the day and the branch
func (g *FallbackGenerator) rng(lat, lng float64, day int, salt uint64) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(cache.CoordinateKey(lat, lng)))

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(day))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(g.Seed))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], salt)
	_, _ = h.Write(buf[:])

	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func between(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

type syntheticWeather struct {
	airTemp     float64
	feelsLike   float64
	windSpeed   float64
	windDeg     float64
	gust        float64
	humidity    float64
	pressure    float64
	visibility  float64
	uvIndex     float64
	cloudCover  float64
	weatherCode int
	precipProb  float64
}

type syntheticMarine struct {
	swellHeight float64
	swellPeriod float64
	swellDeg    float64
	windWave    float64
	windWaveP   float64
	windWaveDeg float64
}

var fairWeatherCodes = []int{0, 1, 2, 3}

func (g *FallbackGenerator) weather(lat, lng float64, day int) syntheticWeather {
	r := g.rng(lat, lng, day, saltWeather)
	reg := regionOf(lat, lng)

	var s syntheticWeather
	if reg == regionTropical {
		s.airTemp = between(r, 78, 88)
		// trade winds
		s.windDeg = between(r, 60, 95)
	} else {
		s.airTemp = 75 - 0.5*math.Abs(lat) + between(r, -5, 5)
		s.windDeg = between(r, 0, 360)
	}
	s.windSpeed = between(r, 3, 18)
	s.gust = s.windSpeed + between(r, 3, 8)
	s.feelsLike = s.airTemp - s.windSpeed*0.1
	s.humidity = math.Round(between(r, 50, 90))
	s.pressure = math.Round(between(r, 1008, 1024))
	s.visibility = between(r, 6, 10)
	s.uvIndex = math.Round(between(r, 0, 10))
	s.weatherCode = fairWeatherCodes[r.Intn(len(fairWeatherCodes))]
	s.cloudCover = math.Round(float64(s.weatherCode) * between(r, 20, 33))
	s.precipProb = math.Round(between(r, 0, 30))
	return s
}

func (g *FallbackGenerator) marine(lat, lng float64, day int) syntheticMarine {
	r := g.rng(lat, lng, day, saltMarine)

	var s syntheticMarine
	switch regionOf(lat, lng) {
	case regionWestCoast:
		s.swellHeight = between(r, 3, 8)
		s.swellPeriod = between(r, 10, 16)
		// W through NW
		s.swellDeg = between(r, 260, 325)
	case regionTropical:
		s.swellHeight = between(r, 2, 6)
		s.swellPeriod = between(r, 8, 14)
		s.swellDeg = between(r, 0, 360)
	default:
		s.swellHeight = between(r, 1, 5)
		s.swellPeriod = between(r, 6, 12)
		s.swellDeg = between(r, 0, 360)
	}
	s.windWave = between(r, 0.5, 2)
	s.windWaveP = between(r, 3, 6)
	s.windWaveDeg = between(r, 0, 360)
	return s
}

// FillWeather writes synthetic weather fields for the given day into c
func (g *FallbackGenerator) FillWeather(c *models.NormalizedConditions, lat, lng float64, day int) {
	s := g.weather(lat, lng, day)

	c.AirTemp = units.Round(s.airTemp, 1)
	c.FeelsLike = units.Round(s.feelsLike, 1)
	c.Humidity = s.humidity
	c.Pressure = s.pressure
	c.WindSpeed = units.Round(s.windSpeed, 1)
	c.WindDirection = units.CompassOf(s.windDeg)
	gust := units.Round(s.gust, 1)
	c.WindGusts = &gust
	c.Visibility = units.Round(s.visibility, 1)
	c.UVIndex = s.uvIndex
	c.CloudCover = s.cloudCover
	c.Precipitation = 0
	c.WeatherCode = s.weatherCode
	c.Conditions = units.DescribeWeatherCode(s.weatherCode)
	c.Sources.Weather = models.SourceSynthetic
}

// FillMarine writes synthetic sea state for the given day into c. Water
// temperature is left for the caller to estimate from air temperature.
func (g *FallbackGenerator) FillMarine(c *models.NormalizedConditions, lat, lng float64, day int) {
	s := g.marine(lat, lng, day)

	c.SwellHeight = units.Round(s.swellHeight, 1)
	c.SwellPeriod = units.Round(s.swellPeriod, 1)
	c.SwellDirection = units.CompassOf(s.swellDeg)
	c.WindWaveHeight = units.Round(s.windWave, 1)
	c.WindWavePeriod = units.Round(s.windWaveP, 1)
	c.WindWaveDirection = units.CompassOf(s.windWaveDeg)
	c.WaveHeight = units.Round(s.swellHeight+s.windWave, 1)
	c.WavePeriod = c.SwellPeriod
	c.WaveDirection = c.SwellDirection
	c.Sources.Marine = models.SourceSynthetic
}

// FillForecastWeather writes synthetic weather for forecast day index day into d
func (g *FallbackGenerator) FillForecastWeather(d *models.ForecastDay, lat, lng float64, day int) {
	s := g.weather(lat, lng, day)

	d.AirTempHigh = units.Round(s.airTemp+3, 1)
	d.AirTempLow = units.Round(s.airTemp-6, 1)
	d.WindSpeed = units.Round(s.windSpeed, 1)
	d.WindDirection = units.CompassOf(s.windDeg)
	gust := units.Round(s.gust, 1)
	d.WindGusts = &gust
	d.Precipitation = 0
	d.PrecipitationChance = s.precipProb
	d.CloudCover = s.cloudCover
	d.WeatherCode = s.weatherCode
	d.Conditions = units.DescribeWeatherCode(s.weatherCode)
	d.Sources.Weather = models.SourceSynthetic
}

// FillForecastMarine writes synthetic sea state for forecast day index day into d
func (g *FallbackGenerator) FillForecastMarine(d *models.ForecastDay, lat, lng float64, day int) {
	s := g.marine(lat, lng, day)

	d.SwellHeight = units.Round(s.swellHeight, 1)
	d.SwellPeriod = units.Round(s.swellPeriod, 1)
	d.SwellDirection = units.CompassOf(s.swellDeg)
	d.WaveHeight = units.Round(s.swellHeight+s.windWave, 1)
	d.WavePeriod = d.SwellPeriod
	d.WaveDirection = d.SwellDirection
	d.Sources.Marine = models.SourceSynthetic
}
