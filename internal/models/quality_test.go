package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  Rating
	}{
		{10, RatingExcellent},
		{8, RatingExcellent},
		{7.5, RatingExcellent}, // rounds to 8
		{7.49, RatingGood},
		{6, RatingGood},
		{5.5, RatingGood},
		{5.4, RatingFair},
		{4, RatingFair},
		{3.5, RatingFair},
		{3.49, RatingPoor},
		{0, RatingPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RatingFor(tt.score), "score %v", tt.score)
		assert.Equal(t, tt.want, QualityResult{Score: tt.score}.Rating(), "score %v", tt.score)
	}
}

func TestQualityResultJSON(t *testing.T) {
	t.Parallel()

	q := QualityResult{Score: 7.66, Breakdown: &QualityBreakdown{Height: 10, Wind: 8}}

	data, err := json.Marshal(q)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 7.7, decoded["score"])
	assert.Equal(t, float64(8), decoded["rounded"])
	assert.Equal(t, "Excellent", decoded["rating"])
	assert.Contains(t, decoded, "breakdown")
}

func TestQualityResultUnmarshalIgnoresRating(t *testing.T) {
	t.Parallel()

	var q QualityResult
	require.NoError(t, json.Unmarshal([]byte(`{"score": 2, "rating": "Excellent"}`), &q))

	assert.Equal(t, 2.0, q.Score)
	assert.Equal(t, RatingPoor, q.Rating())
	assert.Equal(t, 2, q.Rounded())
}
