package internal

import (
	"context"
	"fmt"
)

// maxCosineDistance pads report rows for keys where the index produced fewer
// neighbors than the table width. The exact backend always fills full rows;
// padding only ever reflects an approximate index that found nothing there.
const maxCosineDistance = 1.0

// Report derives descriptive statistics for a single embedding, independent
// of any other space: the distances from every key to its nearest neighbors.
type Report struct {
	emb        *Embedding
	nNeighbors int

	distances [][]float64
}

func NewReport(emb *Embedding, nNeighbors int) (*Report, error) {
	if nNeighbors < 1 {
		return nil, fmt.Errorf("%w: n_neighbors must be at least 1, got %d", ErrInvalidParameters, nNeighbors)
	}
	if emb == nil {
		return nil, fmt.Errorf("%w: embedding must be set", ErrInvalidParameters)
	}

	return &Report{emb: emb, nNeighbors: nNeighbors}, nil
}

// Keys returns the reported vocabulary; table rows are aligned with it.
func (r *Report) Keys() []string { return r.emb.Keys() }

// Width returns the table width: every row carries exactly
// min(nNeighbors, vocabulary-1) distances.
func (r *Report) Width() int {
	width := r.nNeighbors
	if available := r.emb.Len() - 1; width > available {
		width = available
	}
	if width < 0 {
		width = 0
	}
	return width
}

// NearestNeighborDistances returns a len(Keys()) x Width() table of cosine
// distances (1 - similarity) from each key to its nearest neighbors, nearest
// first. Computed once and cached on the report.
func (r *Report) NearestNeighborDistances(ctx context.Context) ([][]float64, error) {
	if r.distances != nil {
		return r.distances, nil
	}

	width := r.Width()
	keys := r.emb.Keys()

	table := make([][]float64, len(keys))
	if width == 0 {
		for i := range table {
			table[i] = []float64{}
		}
		r.distances = table
		return table, nil
	}

	neighborhoods, err := r.emb.GetNeighbors(ctx, width, keys)
	if err != nil {
		return nil, fmt.Errorf("report distances: %w", err)
	}

	for i, key := range keys {
		row := make([]float64, width)
		neighbors := neighborhoods[key]
		for j := range row {
			if j < len(neighbors) {
				row[j] = 1 - neighbors[j].Similarity
			} else {
				row[j] = maxCosineDistance
			}
		}
		table[i] = row
	}

	r.distances = table
	return table, nil
}

// MeanDistances returns the per-key mean distance to the reported neighbors,
// aligned with Keys(). Keys without neighbors (empty rows) yield 0.
func (r *Report) MeanDistances(ctx context.Context) ([]float64, error) {
	table, err := r.NearestNeighborDistances(ctx)
	if err != nil {
		return nil, err
	}

	means := make([]float64, len(table))
	for i, row := range table {
		if len(row) == 0 {
			continue
		}
		var sum float64
		for _, d := range row {
			sum += d
		}
		means[i] = sum / float64(len(row))
	}
	return means, nil
}

// FirstDistances returns the distance to the single nearest neighbor per key
// (the first table column), aligned with Keys().
func (r *Report) FirstDistances(ctx context.Context) ([]float64, error) {
	table, err := r.NearestNeighborDistances(ctx)
	if err != nil {
		return nil, err
	}

	firsts := make([]float64, len(table))
	for i, row := range table {
		if len(row) > 0 {
			firsts[i] = row[0]
		}
	}
	return firsts, nil
}
