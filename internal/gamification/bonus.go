package gamification

// NeutralMultiplier is returned when no bonus applies.
const NeutralMultiplier = 1.0

// ComposeMultiplier folds skill bonus values into one factor. Bonuses add up
// on top of the neutral factor (two +0.1 skills give 1.2) and the result never
// drops below NeutralMultiplier.
func ComposeMultiplier(values []float64) float64 {
	factor := NeutralMultiplier
	for _, value := range values {
		factor += value
	}
	if factor < NeutralMultiplier {
		return NeutralMultiplier
	}
	return factor
}
