package models

import (
	"encoding/json"
	"math"
)

type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
)

// RatingFor maps a score to its rating using the score rounded to the nearest integer
func RatingFor(score float64) Rating {
	rounded := math.Round(score)
	switch {
	case rounded >= 8:
		return RatingExcellent
	case rounded >= 6:
		return RatingGood
	case rounded >= 4:
		return RatingFair
	default:
		return RatingPoor
	}
}

// QualityBreakdown holds the individual sub-scores, each in [0, 10]
type QualityBreakdown struct {
	Height  float64 `json:"height"`
	Wind    float64 `json:"wind"`
	Period  float64 `json:"period"`
	Tide    float64 `json:"tide"`
	Comfort float64 `json:"comfort"`
}

// QualityResult is a surf score in [0, 10]. The rating is always derived from
// the score and never stored.
type QualityResult struct {
	Score     float64           `json:"-"`
	Breakdown *QualityBreakdown `json:"-"`
}

func (q QualityResult) Rounded() int {
	return int(math.Round(q.Score))
}

func (q QualityResult) Rating() Rating {
	return RatingFor(q.Score)
}

func (q QualityResult) Clone() QualityResult {
	out := q
	if q.Breakdown != nil {
		b := *q.Breakdown
		out.Breakdown = &b
	}
	return out
}

type qualityJSON struct {
	Score     float64           `json:"score"`
	Rounded   int               `json:"rounded"`
	Rating    Rating            `json:"rating"`
	Breakdown *QualityBreakdown `json:"breakdown,omitempty"`
}

func (q QualityResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(qualityJSON{
		Score:     math.Round(q.Score*10) / 10,
		Rounded:   q.Rounded(),
		Rating:    q.Rating(),
		Breakdown: q.Breakdown,
	})
}

// UnmarshalJSON reads the score and breakdown, any rating in the payload is ignored
func (q *QualityResult) UnmarshalJSON(data []byte) error {
	var raw qualityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Score = raw.Score
	q.Breakdown = raw.Breakdown
	return nil
}
