// Package vector holds the embedding value object and the cosine similarity primitive.
package vector

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch signals that two vectors have different lengths.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Vector is an embedding produced by an external model. A nil or empty Vector means
// "no embedding"; it is never replaced by a zero vector.
type Vector []float32

// Present reports whether the vector carries an embedding.
func (v Vector) Present() bool { return len(v) > 0 }

// Dim returns the dimensionality.
func (v Vector) Dim() int { return len(v) }

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Cosine returns dot(a, b) / (|a| * |b|).
//
// Accumulation runs left to right in float64, so identical inputs give identical results.
// A zero-magnitude operand yields 0. Lengths that differ return ErrDimensionMismatch.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine of %d-dim and %d-dim vectors: %w", len(a), len(b), ErrDimensionMismatch)
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push |sim| a hair past 1
	switch {
	case sim > 1:
		sim = 1
	case sim < -1:
		sim = -1
	}
	return sim, nil
}
