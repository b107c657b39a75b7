package reward

import "math"

// Grade is the quality assessment of a waste delivery.
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradeFair      Grade = "fair"
	GradePoor      Grade = "poor"
)

const baseCoinsPerKg = 0.5

// qualityMultiplier returns the grade's payout multiplier. Unknown grades
// count as fair.
func qualityMultiplier(grade Grade) float64 {
	switch grade {
	case GradeExcellent:
		return 1.5
	case GradeGood:
		return 1.2
	case GradePoor:
		return 0.8
	default:
		return 1.0
	}
}

// CalculateCoins converts a delivery's estimated weight and quality grade
// into a coin amount: floor(floor(kg * 0.5) * multiplier). Returns 0 for
// non-positive weight; callers must not log zero-amount transactions.
func CalculateCoins(estimatedWeightKg float64, grade Grade) int64 {
	if estimatedWeightKg <= 0 {
		return 0
	}

	base := math.Floor(estimatedWeightKg * baseCoinsPerKg)

	return int64(math.Floor(base * qualityMultiplier(grade)))
}
