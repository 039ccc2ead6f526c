package entity

import "math"

// TierThreshold is one step of a business's ordered tier ladder.
type TierThreshold struct {
	Tier       string  `json:"tier"`
	MinPoints  int64   `json:"min_points"`
	Multiplier float64 `json:"multiplier"`
}

// TierFor returns the highest threshold whose MinPoints does not exceed
// accruedTotal. Thresholds must be ordered by ascending MinPoints, which the
// configuration store validates at write time. Pure function: safe to call
// with any historical config snapshot for audit or reporting.
func TierFor(accruedTotal int64, thresholds []TierThreshold) TierThreshold {
	if len(thresholds) == 0 {
		return TierThreshold{Multiplier: 1}
	}

	current := thresholds[0]
	for _, th := range thresholds[1:] {
		if th.MinPoints > accruedTotal {
			break
		}
		current = th
	}
	return current
}

// ComputePoints returns the points earned for a purchase amount in cents,
// given the config's points-per-currency-unit rate and the tier multiplier
// that held before the transaction. Always rounds down.
func ComputePoints(amountCents int64, pointsPerUnit, multiplier float64) int64 {
	return int64(math.Floor(float64(amountCents) * pointsPerUnit * multiplier / 100.0))
}
