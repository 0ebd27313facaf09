package utils

import "math"

// NormalizeL2 scales x in place to unit length and returns the length it had.
// A zero vector is left as is and 0 is returned. The sum is accumulated in
// float64 so wide embeddings do not lose precision.
func NormalizeL2(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return 0
	}
	norm := math.Sqrt(sum)
	inv := 1 / norm
	for i := range x {
		x[i] = float32(float64(x[i]) * inv)
	}
	return norm
}
