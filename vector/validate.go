package vector

import "math"

// Validate returns an *InvalidVectorError when v is empty or holds a NaN or
// infinite component.
func Validate(v []float32) error {
	if len(v) == 0 {
		return &InvalidVectorError{Index: -1}
	}
	for i, f := range v {
		x := float64(f)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return &InvalidVectorError{Index: i, Value: f}
		}
	}
	return nil
}

// CheckDimension returns a *DimensionError when got differs from want.
func CheckDimension(want, got int) error {
	if want != got {
		return &DimensionError{Expected: want, Actual: got}
	}
	return nil
}
