package internal

import (
	"context"
	"fmt"

	"github.com/mariotoffia/goannoy/builder"
	"github.com/mariotoffia/goannoy/interfaces"
)

// numTrees trades build time for recall. Ten trees keep large-vocabulary
// comparisons responsive while staying close to exact neighborhoods.
const numTrees = 10

var _ NeighborIndex = (*AnnoyIndex)(nil)

// AnnoyIndex is the approximate backend for large vocabularies, built on an
// angular-distance Annoy forest. Positions in the vector table double as
// item ids.
type AnnoyIndex struct {
	idx       interfaces.AnnoyIndex[float32, uint32]
	dimension int
	size      int
}

func NewAnnoyIndex(vectors [][]float32, dimension int) (*AnnoyIndex, error) {
	idx := builder.Index[float32, uint32]().
		AngularDistance(dimension).
		UseMultiWorkerPolicy().
		MmapIndexAllocator().
		Build()

	for i, vec := range vectors {
		if len(vec) != dimension {
			return nil, fmt.Errorf("%w: item %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(vec), dimension)
		}
		idx.AddItem(uint32(i), vec)
	}

	idx.Build(numTrees, -1)

	return &AnnoyIndex{
		idx:       idx,
		dimension: dimension,
		size:      len(vectors),
	}, nil
}

func (a *AnnoyIndex) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != a.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(query), a.dimension)
	}
	if k > a.size {
		k = a.size
	}
	if k <= 0 {
		return nil, nil
	}

	searchCtx := a.idx.CreateContext()
	ids, distances := a.idx.GetNnsByVector(query, k, -1, searchCtx)

	results := make([]SearchResult, 0, len(ids))
	for i, id := range ids {
		// Angular distance d relates to cosine similarity via
		// d^2 = 2*(1-cos), so cos = 1 - d^2/2. Converting keeps this
		// backend on the same similarity scale as the exact one.
		var similarity float64
		if i < len(distances) {
			d := float64(distances[i])
			similarity = 1 - d*d/2
		}

		results = append(results, SearchResult{
			Index:      int(id),
			Similarity: similarity,
		})
	}

	return results, nil
}
