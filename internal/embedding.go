package internal

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
)

var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrZeroTotalWeight   = errors.New("total weight is zero")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknownEmbedding  = errors.New("embedding not found")
	ErrUnknownFormat     = errors.New("unknown format")
)

// Neighbor is one entry of a nearest-neighbor list: a vocabulary key and its
// cosine similarity to the query key.
type Neighbor struct {
	Key        string
	Similarity float64
}

// Embedding maps string keys to fixed-dimensional vectors, optionally
// annotated with per-key frequencies in [0,1]. Keys, vectors and frequencies
// are fixed once handed out; the neighbor memoization is synchronized, so one
// embedding can back several concurrent comparisons.
type Embedding struct {
	keys       []string
	keyToIndex map[string]int
	vectors    [][]float32
	dimension  int

	// frequencies is nil when the embedding carries no frequency data.
	// IsFrequencySet distinguishes the two variants.
	frequencies map[string]float64

	// mu guards index and neighborhoods: cached embeddings are shared
	// across comparisons that may run in parallel.
	mu    sync.Mutex
	index NeighborIndex

	// neighborhoods memoizes neighbor lists per requested list length so
	// repeated statistics passes never re-query the index.
	neighborhoods map[int]map[string][]Neighbor
}

// NewEmbedding builds an embedding from aligned key and vector slices. Keys
// must be unique and vectors must share one dimensionality.
func NewEmbedding(keys []string, vectors [][]float32) (*Embedding, error) {
	if len(keys) != len(vectors) {
		return nil, fmt.Errorf("%w: %d keys for %d vectors", ErrInvalidParameters, len(keys), len(vectors))
	}

	e := &Embedding{
		keys:          make([]string, len(keys)),
		keyToIndex:    make(map[string]int, len(keys)),
		vectors:       make([][]float32, len(vectors)),
		neighborhoods: make(map[int]map[string][]Neighbor),
	}
	copy(e.keys, keys)
	copy(e.vectors, vectors)

	if len(vectors) > 0 {
		e.dimension = len(vectors[0])
	}

	for i, key := range e.keys {
		if _, exists := e.keyToIndex[key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
		}
		e.keyToIndex[key] = i

		if len(e.vectors[i]) != e.dimension {
			return nil, fmt.Errorf("%w: key %q has %d dimensions, expected %d",
				ErrDimensionMismatch, key, len(e.vectors[i]), e.dimension)
		}
	}

	return e, nil
}

// SetFrequencies attaches a frequency table. Entries for unknown keys are
// ignored; calling with nil leaves the embedding in the no-frequency variant.
func (e *Embedding) SetFrequencies(frequencies map[string]float64) {
	if frequencies == nil {
		e.frequencies = nil
		return
	}

	e.frequencies = make(map[string]float64, len(frequencies))
	for key, freq := range frequencies {
		if _, ok := e.keyToIndex[key]; ok {
			e.frequencies[key] = freq
		}
	}
}

func (e *Embedding) Len() int {
	return len(e.keys)
}

func (e *Embedding) Dimension() int {
	return e.dimension
}

// Keys returns the vocabulary in insertion order. The slice is shared; do not
// modify it.
func (e *Embedding) Keys() []string {
	return e.keys
}

func (e *Embedding) Contains(key string) bool {
	_, ok := e.keyToIndex[key]
	return ok
}

func (e *Embedding) Vector(key string) ([]float32, bool) {
	i, ok := e.keyToIndex[key]
	if !ok {
		return nil, false
	}
	return e.vectors[i], true
}

// IsFrequencySet reports whether the embedding carries frequency data.
func (e *Embedding) IsFrequencySet() bool {
	return e.frequencies != nil
}

// Frequency returns the frequency for key, or 0 when the key or the whole
// frequency table is absent.
func (e *Embedding) Frequency(key string) float64 {
	if e.frequencies == nil {
		return 0
	}
	return e.frequencies[key]
}

// FilterByFrequency returns a new embedding restricted to keys with frequency
// >= min. Embeddings without frequency data are returned unchanged.
func (e *Embedding) FilterByFrequency(min float64) (*Embedding, error) {
	if e.frequencies == nil {
		return e, nil
	}

	keys := make([]string, 0, len(e.keys))
	vectors := make([][]float32, 0, len(e.keys))
	frequencies := make(map[string]float64)

	for i, key := range e.keys {
		freq := e.frequencies[key]
		if freq < min {
			continue
		}
		keys = append(keys, key)
		vectors = append(vectors, e.vectors[i])
		frequencies[key] = freq
	}

	filtered, err := NewEmbedding(keys, vectors)
	if err != nil {
		return nil, fmt.Errorf("filter by frequency: %w", err)
	}
	filtered.SetFrequencies(frequencies)

	return filtered, nil
}

// Sampled returns a new embedding restricted to at most n keys, ranked by
// descending frequency (stable) when frequencies are set and kept in
// insertion order otherwise. Embeddings that already fit are returned
// unchanged.
func (e *Embedding) Sampled(n int) (*Embedding, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: sample size must be at least 1, got %d", ErrInvalidParameters, n)
	}
	if len(e.keys) <= n {
		return e, nil
	}

	order := make([]int, len(e.keys))
	for i := range order {
		order[i] = i
	}
	if e.frequencies != nil {
		sortStableByFrequency(order, e)
	}

	keys := make([]string, n)
	vectors := make([][]float32, n)
	for i, idx := range order[:n] {
		keys[i] = e.keys[idx]
		vectors[i] = e.vectors[idx]
	}

	sampled, err := NewEmbedding(keys, vectors)
	if err != nil {
		return nil, fmt.Errorf("sample embedding: %w", err)
	}
	if e.frequencies != nil {
		sampled.SetFrequencies(e.frequencies)
	}

	return sampled, nil
}

func sortStableByFrequency(order []int, e *Embedding) {
	sort.SliceStable(order, func(i, j int) bool {
		return e.frequencies[e.keys[order[i]]] > e.frequencies[e.keys[order[j]]]
	})
}

// annoyThreshold is the vocabulary size above which neighbor queries go
// through an approximate Annoy index instead of exact brute-force search.
const annoyThreshold = 2048

// ensureIndexLocked builds the search backend on first use. Caller holds mu.
func (e *Embedding) ensureIndexLocked() (NeighborIndex, error) {
	if e.index != nil {
		return e.index, nil
	}

	if len(e.keys) >= annoyThreshold {
		idx, err := NewAnnoyIndex(e.vectors, e.dimension)
		if err != nil {
			return nil, fmt.Errorf("build annoy index: %w", err)
		}
		e.index = idx
		return e.index, nil
	}

	e.index = NewBruteIndex(e.vectors)
	return e.index, nil
}

// GetNeighbors returns the n nearest neighbors for each requested key, sorted
// by descending similarity with ties kept in key order. The query key itself
// is excluded. Keys absent from the embedding are skipped. Lookups for
// distinct keys run on a bounded worker pool; results are memoized per n for
// the lifetime of the embedding. Safe for concurrent use: the memoization is
// guarded, only the index queries themselves run unlocked.
func (e *Embedding) GetNeighbors(ctx context.Context, n int, keys []string) (map[string][]Neighbor, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n_neighbors must be at least 1, got %d", ErrInvalidParameters, n)
	}

	e.mu.Lock()
	cached, ok := e.neighborhoods[n]
	if !ok {
		cached = make(map[string][]Neighbor)
		e.neighborhoods[n] = cached
	}

	missing := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, done := cached[key]; done {
			continue
		}
		if _, present := e.keyToIndex[key]; !present {
			continue
		}
		missing = append(missing, key)
	}

	var index NeighborIndex
	if len(missing) > 0 {
		var err error
		index, err = e.ensureIndexLocked()
		if err != nil {
			e.mu.Unlock()
			return nil, err
		}
	}
	e.mu.Unlock()

	fresh := map[string][]Neighbor{}
	if len(missing) > 0 {
		var err error
		fresh, err = e.queryNeighbors(ctx, index, n, missing)
		if err != nil {
			return nil, err
		}
	}

	// Two callers racing on the same keys compute the same lists; the
	// merge is idempotent.
	e.mu.Lock()
	for key, neighbors := range fresh {
		cached[key] = neighbors
	}
	result := make(map[string][]Neighbor, len(seen))
	for key := range seen {
		if neighbors, done := cached[key]; done {
			result[key] = neighbors
		}
	}
	e.mu.Unlock()

	return result, nil
}

func (e *Embedding) queryNeighbors(ctx context.Context, index NeighborIndex, n int, keys []string) (map[string][]Neighbor, error) {
	workers := runtime.NumCPU()
	if workers > len(keys) {
		workers = len(keys)
	}

	jobs := make(chan string)
	fresh := make(map[string][]Neighbor, len(keys))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				neighbors, err := e.searchKey(ctx, index, n, key)
				if err != nil {
					setErr(err)
					continue
				}
				mu.Lock()
				fresh[key] = neighbors
				mu.Unlock()
			}
		}()
	}

	for _, key := range keys {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- key:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return fresh, nil
}

func (e *Embedding) searchKey(ctx context.Context, index NeighborIndex, n int, key string) ([]Neighbor, error) {
	self := e.keyToIndex[key]

	// Query one extra candidate so dropping the key itself still yields n.
	results, err := index.Search(ctx, e.vectors[self], n+1)
	if err != nil {
		return nil, fmt.Errorf("neighbors of %q: %w", key, err)
	}

	neighbors := make([]Neighbor, 0, n)
	for _, r := range results {
		if r.Index == self {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Key:        e.keys[r.Index],
			Similarity: r.Similarity,
		})
		if len(neighbors) == n {
			break
		}
	}

	return neighbors, nil
}
