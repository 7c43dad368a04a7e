package pricing

import "math"

// roundUpEpsilon absorbs float error when a value sits on an exact step
// boundary, so RoundUp(1.05, 0.05) stays 1.05 instead of climbing to 1.10.
const roundUpEpsilon = 1e-9

// RoundUp returns the smallest multiple of step that is >= value.
// A step of zero or less means rounding is not configured and the value
// passes through unchanged.
func RoundUp(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	ratio := value / step
	ceiled := math.Ceil(ratio - roundUpEpsilon)
	return ceiled * step
}
