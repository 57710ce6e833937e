// Package quality rates how well live conditions suit a spot's preferred conditions.
package quality

import (
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/swellcheck/internal/models"
)

const (
	maxScore = 10.0

	// periods at or above this many seconds score full marks
	saturatedPeriod = 15.0

	oversizePenaltyPerFoot = 0.5
	favorableWindBonus     = 2.0
	unfavorableWindPenalty = 3.0
	tideMismatchScore      = 6.0
	tideAny                = "all"
)

// Weights sets how much each sub-score contributes to the final score
type Weights struct {
	Height  float64
	Wind    float64
	Period  float64
	Tide    float64
	Comfort float64
}

// DefaultWeights sum to 1
var DefaultWeights = Weights{
	Height:  0.30,
	Wind:    0.25,
	Period:  0.20,
	Tide:    0.15,
	Comfort: 0.10,
}

type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

var defaultScorer = NewScorer(DefaultWeights)

// Score rates conditions against a profile using DefaultWeights
func Score(conditions models.NormalizedConditions, profile models.SpotPreferenceProfile) models.QualityResult {
	return defaultScorer.Score(conditions, profile)
}

// Score returns a result in [0, 10]. It never fails: a malformed size range falls
// back to models.DefaultSizeRange.
func (s *Scorer) Score(conditions models.NormalizedConditions, profile models.SpotPreferenceProfile) models.QualityResult {
	breakdown := models.QualityBreakdown{
		Height:  HeightScore(conditions.SwellHeight, ParseSizeRange(profile.SwellSize)),
		Wind:    WindScore(conditions.WindSpeed, string(conditions.WindDirection), profile.WindDirection),
		Period:  PeriodScore(conditions.SwellPeriod),
		Tide:    TideScore(conditions.Tide, profile.Tide),
		Comfort: ComfortScore(conditions.WaterTemp),
	}

	total := breakdown.Height*s.weights.Height +
		breakdown.Wind*s.weights.Wind +
		breakdown.Period*s.weights.Period +
		breakdown.Tide*s.weights.Tide +
		breakdown.Comfort*s.weights.Comfort

	return models.QualityResult{
		Score:     clamp(total),
		Breakdown: &breakdown,
	}
}

// ParseSizeRange parses "<min>-<max>ft", logging and falling back to the default range
func ParseSizeRange(swellSize string) models.SizeRange {
	size, err := models.SpotPreferenceProfile{SwellSize: swellSize}.SizeRange()
	if err != nil {
		log.Debug().Err(err).Msg("Using default size range")
	}
	return size
}

// HeightScore is 10 inside the range, ramps linearly from 0 below it and
// falls off by half a point per foot above it.
func HeightScore(height float64, size models.SizeRange) float64 {
	h := sanitize(height)
	switch {
	case h < size.Min:
		if size.Min <= 0 {
			return maxScore
		}
		return clamp(maxScore * h / size.Min)
	case h > size.Max:
		return clamp(maxScore - oversizePenaltyPerFoot*(h-size.Max))
	default:
		return maxScore
	}
}

// WindScore applies a tiered speed penalty, then a bonus or penalty for direction
func WindScore(speed float64, direction string, accepted []string) float64 {
	score := maxScore

	v := sanitize(speed)
	switch {
	case v > 20:
		score -= 6
	case v > 15:
		score -= 4
	case v > 10:
		score -= 2
	}

	if directionAccepted(direction, accepted) {
		score += favorableWindBonus
	} else {
		score -= unfavorableWindPenalty
	}

	return clamp(score)
}

func PeriodScore(period float64) float64 {
	return math.Min(sanitize(period)/saturatedPeriod, 1) * maxScore
}

// TideScore is full marks when the profile accepts any tide or the current one,
// otherwise a mild demerit. An unknown tide only matches "All".
func TideScore(tide *models.TideState, accepted []string) float64 {
	for _, a := range accepted {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == tideAny {
			return maxScore
		}
		if tide != nil && a == strings.ToLower(string(tide.Level)) {
			return maxScore
		}
	}
	return tideMismatchScore
}

// ComfortScore steps down with water temperature in °F
func ComfortScore(waterTemp float64) float64 {
	switch {
	case waterTemp >= 70:
		return 10
	case waterTemp >= 65:
		return 8
	case waterTemp >= 60:
		return 6
	case waterTemp >= 55:
		return 4
	default:
		return 2
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(maxScore, v))
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}
