package vector

import (
	"math"
)

// SquaredL2 returns the squared Euclidean distance between a and b. The
// caller guarantees equal lengths.
func SquaredL2(a, b Descriptor) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2Distance computes the Euclidean (L2) distance between two descriptors. It
// returns a *DimensionMismatchError if the descriptors have different lengths.
func L2Distance(a, b Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Expected: len(a), Actual: len(b)}
	}
	return math.Sqrt(SquaredL2(a, b)), nil
}
