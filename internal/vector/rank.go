package vector

import (
	"fmt"
	"sort"
)

// Hit is one ranked candidate: its position in the input and its cosine score.
type Hit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rank scores every candidate against query and returns them by descending similarity.
// Equal scores keep their input order. The result is always a permutation of
// 0..len(candidates)-1; an empty candidate list yields an empty result.
func Rank(query []float32, candidates [][]float32) ([]Hit, error) {
	hits := make([]Hit, len(candidates))
	if len(candidates) == 0 {
		return hits, nil
	}
	qn := L2Norm(query)
	if qn == 0 {
		return nil, fmt.Errorf("query: %w", ErrZeroVector)
	}
	for i, c := range candidates {
		if len(c) != len(query) {
			return nil, fmt.Errorf("candidate %d: %w: %d vs %d", i, ErrDimensionMismatch, len(c), len(query))
		}
		cn := L2Norm(c)
		if cn == 0 {
			return nil, fmt.Errorf("candidate %d: %w", i, ErrZeroVector)
		}
		hits[i] = Hit{Index: i, Score: InnerProduct(query, c) / (qn * cn)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits, nil
}

// RankIndices is Rank without the scores.
func RankIndices(query []float32, candidates [][]float32) ([]int, error) {
	hits, err := Rank(query, candidates)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Index
	}
	return out, nil
}
