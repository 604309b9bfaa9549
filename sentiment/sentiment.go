// Package sentiment scores free text on [-1, 1]. Detectors that read
// sentiment receive 0 when no scorer is configured or scoring fails.
package sentiment

import (
	"context"
	"math"
	"strings"
)

// Scorer turns text into a sentiment score in [-1, 1].
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Static always returns the same score. Useful for paper runs and tests.
type Static float64

func (s Static) Score(context.Context, string) (float64, error) {
	return Clamp(float64(s)), nil
}

// Clamp limits v to [-1, 1]. NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// FromLabel signs a classifier score by its label: positive keeps the
// score, negative flips it and anything else is neutral.
func FromLabel(label string, score float64) float64 {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive", "pos", "label_2":
		return Clamp(score)
	case "negative", "neg", "label_0":
		return Clamp(-score)
	default:
		return 0
	}
}
