package game

import (
	"math"

	"github.com/ezemirmul/estimator/internal/models"
)

// Result describes the outcome of one submitted (or timed-out) answer.
// UserAnswer is nil when nothing parseable was submitted, including timeouts.
type Result struct {
	Correct     float64  `json:"correct"`
	UserAnswer  *float64 `json:"user_answer"`
	Diff        float64  `json:"diff"`
	DiffPercent float64  `json:"diff_percent"`
	Points      int      `json:"points"`
}

// Points maps a percent difference to awarded points. Boundaries are
// inclusive on the lower side: exactly 10% still scores 80.
func Points(diffPercent float64) int {
	switch {
	case diffPercent <= 5:
		return 100
	case diffPercent <= 10:
		return 80
	case diffPercent <= 20:
		return 50
	case diffPercent <= 40:
		return 20
	default:
		return 0
	}
}

// ParseAnswer parses raw player input as a decimal number, accepting a comma
// as the decimal separator. ok is false for blank or unparseable input.
func ParseAnswer(raw string) (value float64, ok bool) {
	return models.ParseNumber(raw)
}

// Evaluate scores a submission against the correct answer. Absent, blank or
// unparseable input degrades to the maximum-error branch instead of failing:
// the difference counts as the full correct value and no points are awarded.
func Evaluate(correct float64, raw string) Result {
	ua, ok := ParseAnswer(raw)
	if !ok {
		return Result{
			Correct:     correct,
			Diff:        correct,
			DiffPercent: 100,
			Points:      0,
		}
	}

	diff := math.Abs(ua - correct)
	var pct float64
	switch {
	case diff == 0:
		pct = 0
	case correct == 0:
		// Any miss against a zero answer is a full miss.
		pct = 100
	default:
		pct = diff / math.Abs(correct) * 100
	}

	return Result{
		Correct:     correct,
		UserAnswer:  &ua,
		Diff:        diff,
		DiffPercent: pct,
		Points:      Points(pct),
	}
}
