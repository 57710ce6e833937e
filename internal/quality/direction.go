package quality

import (
	"strings"

	"github.com/bbernstein/swellcheck/internal/models"
)

var directionWords = strings.NewReplacer(
	"NORTH", "N",
	"SOUTH", "S",
	"EAST", "E",
	"WEST", "W",
)

var directionSeparators = strings.NewReplacer(" ", "", "-", "", "_", "")

// CanonicalDirection maps "E", "east" and "East" alike to a compass point.
// Compound names such as "North-Northwest" map to "NNW". Anything else is
// returned upper-cased with separators removed.
func CanonicalDirection(direction string) string {
	d := directionSeparators.Replace(strings.ToUpper(strings.TrimSpace(direction)))
	if models.Compass(d).Valid() {
		return d
	}
	return directionWords.Replace(d)
}

func directionAccepted(direction string, accepted []string) bool {
	if direction == "" {
		return false
	}
	want := CanonicalDirection(direction)
	for _, a := range accepted {
		if CanonicalDirection(a) == want {
			return true
		}
	}
	return false
}
