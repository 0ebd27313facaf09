// Package vector provides cosine similarity and ranking over dense embeddings.
package vector

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrZeroVector is returned when a vector has zero magnitude, for which cosine is undefined.
	ErrZeroVector = errors.New("zero-magnitude vector")
	// ErrDimensionMismatch is returned when two vectors have different lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// InnerProduct returns the inner product of two vectors of equal length.
// Mismatched or empty inputs yield 0.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|), accumulated in float64.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0, ErrZeroVector
	}
	return InnerProduct(a, b) / (na * nb), nil
}
