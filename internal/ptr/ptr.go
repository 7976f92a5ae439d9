// Package ptr has helpers for the optional fields of stored documents.
package ptr

import "math"

// Ref returns a pointer to a copy of v.
func Ref[T any](v T) *T {
	return &v
}

// Deref returns the value p points to or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Positive returns a pointer to v when v is positive and finite and nil otherwise. Optional measurements are only
// stored when positive.
func Positive(v float64) *float64 {
	if v > 0 && !math.IsInf(v, 1) {
		return &v
	}
	return nil
}
