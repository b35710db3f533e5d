package roster

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinScore = 0
	MaxScore = 5
)

// ClampScore bounds a score to [0,5] and rounds it to two decimals.
func ClampScore(x float64) float64 {
	if math.IsNaN(x) {
		return MinScore
	}
	return Round2(math.Max(MinScore, math.Min(MaxScore, x)))
}

func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ParseScore accepts free-form score input and returns the clamped value.
func ParseScore(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: score is empty", ErrInvalidScore)
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidScore, raw)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrInvalidScore, raw)
	}
	return ClampScore(value), nil
}
