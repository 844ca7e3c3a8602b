package internal

import (
	"context"
	"math"
	"sort"
)

// SearchResult points into the embedding's vector table.
type SearchResult struct {
	Index      int
	Similarity float64
}

// NeighborIndex answers k-nearest-neighbor queries over a fixed vector set
// under cosine similarity. Implementations are read-only after construction.
type NeighborIndex interface {
	Search(ctx context.Context, query []float32, k int) ([]SearchResult, error)
}

var _ NeighborIndex = (*BruteIndex)(nil)

// BruteIndex is the exact backend: a linear scan over all vectors. It is the
// reference for small vocabularies, where O(n) per query is cheap and the
// results carry no approximation error.
type BruteIndex struct {
	vectors [][]float32
	norms   []float64
}

func NewBruteIndex(vectors [][]float32) *BruteIndex {
	norms := make([]float64, len(vectors))
	for i, vec := range vectors {
		norms[i] = vectorNorm(vec)
	}
	return &BruteIndex{vectors: vectors, norms: norms}
}

func (b *BruteIndex) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k > len(b.vectors) {
		k = len(b.vectors)
	}
	if k <= 0 {
		return nil, nil
	}

	queryNorm := vectorNorm(query)

	results := make([]SearchResult, len(b.vectors))
	for i, vec := range b.vectors {
		results[i] = SearchResult{
			Index:      i,
			Similarity: cosine(query, queryNorm, vec, b.norms[i]),
		}
	}

	// Stable keeps equally similar candidates in insertion order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	return results[:k], nil
}

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	return dot / (normA * normB)
}
