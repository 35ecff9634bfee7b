// Package scoring turns a draft's answers into the two axis scores and the
// acculturation strategy quadrant. DetermineStrategy is pure: same draft in,
// same result out, no side effects.
package scoring

import (
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

// Result carries the two summed axis scores and the derived quadrant.
type Result struct {
	MilitaryScore int             `json:"military_score"`
	CivilianScore int             `json:"civilian_score"`
	Strategy      domain.Strategy `json:"strategy"`
}

// DetermineStrategy sums answer offsets by axis (Y into the military score,
// X into the civilian score) and classifies the quadrant by strict sign.
// Answers outside the five-point scale or with an unknown axis are rejected
// rather than clamped or skipped.
func DetermineStrategy(draft domain.DraftState) (Result, error) {
	var military, civilian int
	for question, answer := range draft.Answers {
		if answer.Offset < domain.OffsetMin || answer.Offset > domain.OffsetMax {
			return Result{}, domain.NewValidationError(question, "offset out of range")
		}
		switch answer.Axis {
		case domain.AxisMilitary:
			military += answer.Offset
		case domain.AxisCivilian:
			civilian += answer.Offset
		default:
			return Result{}, domain.NewValidationError(question, "unknown axis")
		}
	}
	return Result{
		MilitaryScore: military,
		CivilianScore: civilian,
		Strategy:      Classify(military, civilian),
	}, nil
}

// Classify derives the quadrant from the two scores. Zero is never "high":
// ties resolve away from Integration.
func Classify(military, civilian int) domain.Strategy {
	highMilitary := military > 0
	highCivilian := civilian > 0
	switch {
	case highMilitary && highCivilian:
		return domain.StrategyIntegration
	case highMilitary:
		return domain.StrategySeparation
	case highCivilian:
		return domain.StrategyAssimilation
	default:
		return domain.StrategyMarginalization
	}
}
