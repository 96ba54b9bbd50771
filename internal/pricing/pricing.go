// Package pricing computes delivery costs from the tunable coefficients.
package pricing

import "math"

// Coefficients are the three tunable parameters of the pricing formula.
type Coefficients struct {
	DistanceCoefficient float64
	WeightCoefficient   float64
	BaseCost            float64
}

// Cost returns base_cost + dc*distance + wc*weight rounded to 2 decimals.
// Callers validate that distance and weight are positive.
func Cost(distance, weight float64, c Coefficients) float64 {
	raw := c.BaseCost + c.DistanceCoefficient*distance + c.WeightCoefficient*weight
	return math.Round(raw*100) / 100
}
