// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/minesite-tools/water-balance/pkg/constants"
)

// Round rounds a value to three decimals, i.e. to whole litres when the
// value is a volume in cubic metres. Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.VolumePrecision) / constants.VolumePrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.VolumeTolerance
}

// IsPositive checks if a value is positive (greater than tolerance)
func IsPositive(val float64) bool {
	return val > constants.VolumeTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}
