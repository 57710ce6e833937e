// Package units converts metric upstream readings into the imperial units
// the rest of the service works in.
package units

import (
	"math"

	"github.com/bbernstein/swellcheck/internal/models"
)

const (
	feetPerMeter        = 3.28084
	mphPerMeterPerSec   = 2.237
	millimetersPerInch  = 25.4
	metersPerMile       = 1609.344
	minWaterTempF       = 50.0
	waterTempOffsetF    = 2.0
	waterTempLatitudeF  = 15.0
	compassSectorDegree = 22.5
)

// Round rounds v to the given number of decimal places
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func FeetFromMeters(m float64) float64 {
	return Round(m*feetPerMeter, 1)
}

func MetersFromFeet(ft float64) float64 {
	return ft / feetPerMeter
}

func MphFromMetersPerSecond(ms float64) float64 {
	return Round(ms*mphPerMeterPerSec, 1)
}

func FahrenheitFromCelsius(c float64) float64 {
	return Round(c*9/5+32, 1)
}

func CelsiusFromFahrenheit(f float64) float64 {
	return (f - 32) * 5 / 9
}

func InchesFromMillimeters(mm float64) float64 {
	return Round(mm/millimetersPerInch, 2)
}

func MilesFromMeters(m float64) float64 {
	return Round(m/metersPerMile, 1)
}

// NormalizeDegrees maps any angle into [0, 360)
func NormalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// CompassOf returns the 16-point compass direction for a bearing in degrees.
// Sector i covers [i*22.5 - 11.25, i*22.5 + 11.25).
func CompassOf(deg float64) models.Compass {
	idx := int(math.Round(NormalizeDegrees(deg)/compassSectorDegree)) % len(models.CompassPoints)
	return models.CompassPoints[idx]
}

// EstimateWaterTemp approximates sea temperature from air temperature when no
// measurement is available. Colder toward the poles, never below 50°F.
func EstimateWaterTemp(lat, airTempF float64) float64 {
	est := airTempF - waterTempOffsetF - waterTempLatitudeF*math.Abs(lat)/90
	if est < minWaterTempF {
		est = minWaterTempF
	}
	return Round(est, 1)
}
