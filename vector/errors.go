package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is matched by every DimensionError.
	ErrDimensionMismatch = errors.New("vector: dimension mismatch")

	// ErrInvalidVector is matched by every InvalidVectorError.
	ErrInvalidVector = errors.New("vector: invalid vector")
)

// DimensionError reports a vector whose length differs from the expected
// dimensionality.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrDimensionMismatch) succeed.
func (e *DimensionError) Is(target error) bool { return target == ErrDimensionMismatch }

// InvalidVectorError reports a vector with no components or with a NaN,
// infinite or null component. Index is -1 for an empty vector.
type InvalidVectorError struct {
	Index int
	Value float32
	Null  bool
}

func (e *InvalidVectorError) Error() string {
	if e.Index < 0 {
		return "vector: invalid vector: no components"
	}
	if e.Null {
		return fmt.Sprintf("vector: invalid vector: component %d is null", e.Index)
	}
	return fmt.Sprintf("vector: invalid vector: component %d is %v", e.Index, e.Value)
}

// Is makes errors.Is(err, ErrInvalidVector) succeed.
func (e *InvalidVectorError) Is(target error) bool { return target == ErrInvalidVector }
