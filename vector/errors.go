package vector

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensionMismatch is matched (via errors.Is) by every
	// *DimensionMismatchError.
	ErrDimensionMismatch = errors.New("vector: dimension mismatch")

	// ErrEmptyDescriptor is returned when a zero-length descriptor is stored.
	ErrEmptyDescriptor = errors.New("vector: empty descriptor")

	// ErrNonFinite is returned when a descriptor carries NaN or Inf.
	ErrNonFinite = errors.New("vector: non-finite component")
)

// DimensionMismatchError reports a descriptor whose length differs from the
// table's established dimension.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is lets errors.Is(err, ErrDimensionMismatch) succeed.
func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// Validate checks that d is non-empty and that every component is finite.
func Validate(d Descriptor) error {
	if len(d) == 0 {
		return ErrEmptyDescriptor
	}
	for i, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w at component %d", ErrNonFinite, i)
		}
	}
	return nil
}

// CheckDimension returns a *DimensionMismatchError when dim is set and
// len(d) differs from it.
func CheckDimension(d Descriptor, dim int) error {
	if dim > 0 && len(d) != dim {
		return &DimensionMismatchError{Expected: dim, Actual: len(d)}
	}
	return nil
}
