package internal

import (
	"context"
	"fmt"
	"sort"
)

// Comparison holds two embeddings and derives per-key neighborhood-overlap
// statistics over their common vocabulary. All derived values are computed
// once, on first access, and cached on the instance.
type Comparison struct {
	firstID  string
	secondID string
	first    *Embedding
	second   *Embedding

	nNeighbors int

	// commonKeys is the (possibly sampled) shared vocabulary in the
	// deterministic order produced by commonKeyOrder.
	commonKeys []string

	computed       bool
	similarities   map[string]float64
	orderedSims    map[string]float64
	similarityKeys []string
	orderedKeys    []string
}

// NewComparison pairs two embeddings for comparison. nNeighbors is the
// neighbor list length used for every per-key score.
func NewComparison(firstID string, first *Embedding, secondID string, second *Embedding, nNeighbors int) (*Comparison, error) {
	if nNeighbors < 1 {
		return nil, fmt.Errorf("%w: n_neighbors must be at least 1, got %d", ErrInvalidParameters, nNeighbors)
	}
	if first == nil || second == nil {
		return nil, fmt.Errorf("%w: both embeddings must be set", ErrInvalidParameters)
	}

	return &Comparison{
		firstID:    firstID,
		secondID:   secondID,
		first:      first,
		second:     second,
		nNeighbors: nNeighbors,
		commonKeys: commonKeyOrder(first, second),
	}, nil
}

// commonKeyOrder intersects the two vocabularies deterministically: keys are
// ranked by descending mean frequency (stable) when either embedding carries
// frequencies, and kept in first-embedding insertion order otherwise.
func commonKeyOrder(first, second *Embedding) []string {
	common := make([]string, 0, min(first.Len(), second.Len()))
	for _, key := range first.Keys() {
		if second.Contains(key) {
			common = append(common, key)
		}
	}

	if first.IsFrequencySet() || second.IsFrequencySet() {
		sort.SliceStable(common, func(i, j int) bool {
			fi := first.Frequency(common[i]) + second.Frequency(common[i])
			fj := first.Frequency(common[j]) + second.Frequency(common[j])
			return fi > fj
		})
	}

	return common
}

func (c *Comparison) FirstID() string    { return c.firstID }
func (c *Comparison) SecondID() string   { return c.secondID }
func (c *Comparison) First() *Embedding  { return c.first }
func (c *Comparison) Second() *Embedding { return c.second }
func (c *Comparison) NNeighbors() int    { return c.nNeighbors }

// Keys returns the compared common vocabulary in sampling order.
func (c *Comparison) Keys() []string { return c.commonKeys }

// Sampled returns a new comparison restricted to at most nSamples common
// keys. Sampling is deterministic: the common vocabulary is already ranked,
// so the first nSamples keys are taken. When the common vocabulary fits,
// the result compares the same keys. The receiver is left untouched.
func (c *Comparison) Sampled(nSamples int) (*Comparison, error) {
	if nSamples < 1 {
		return nil, fmt.Errorf("%w: n_samples must be at least 1, got %d", ErrInvalidParameters, nSamples)
	}

	keys := c.commonKeys
	if len(keys) > nSamples {
		keys = keys[:nSamples]
	}

	sampled := &Comparison{
		firstID:    c.firstID,
		secondID:   c.secondID,
		first:      c.first,
		second:     c.second,
		nNeighbors: c.nNeighbors,
		commonKeys: keys,
	}

	return sampled, nil
}

// Similarities returns the per-key unordered neighborhood similarity: the
// overlap of the two neighbor sets divided by the longer list length. 1.0
// means identical sets, 0.0 disjoint sets or no neighbors at all.
func (c *Comparison) Similarities(ctx context.Context) (map[string]float64, error) {
	if err := c.compute(ctx); err != nil {
		return nil, err
	}
	return c.similarities, nil
}

// OrderedSimilarities returns the rank-sensitive per-key similarity. Shared
// neighbors contribute more the closer their ranks agree; 1.0 requires the
// two ordered lists to be identical.
func (c *Comparison) OrderedSimilarities(ctx context.Context) (map[string]float64, error) {
	if err := c.compute(ctx); err != nil {
		return nil, err
	}
	return c.orderedSims, nil
}

// SimilarityKeys returns the compared keys sorted by ascending unordered
// similarity, the order the presentation layer consumes (least similar
// first). SimilarityValues is aligned with it.
func (c *Comparison) SimilarityKeys(ctx context.Context) ([]string, error) {
	if err := c.compute(ctx); err != nil {
		return nil, err
	}
	return c.similarityKeys, nil
}

func (c *Comparison) SimilarityValues(ctx context.Context) ([]float64, error) {
	keys, err := c.SimilarityKeys(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(keys))
	for i, key := range keys {
		values[i] = c.similarities[key]
	}
	return values, nil
}

// OrderedSimilarityKeys mirrors SimilarityKeys for the ordered scores.
func (c *Comparison) OrderedSimilarityKeys(ctx context.Context) ([]string, error) {
	if err := c.compute(ctx); err != nil {
		return nil, err
	}
	return c.orderedKeys, nil
}

func (c *Comparison) OrderedSimilarityValues(ctx context.Context) ([]float64, error) {
	keys, err := c.OrderedSimilarityKeys(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(keys))
	for i, key := range keys {
		values[i] = c.orderedSims[key]
	}
	return values, nil
}

func (c *Comparison) compute(ctx context.Context) error {
	if c.computed {
		return nil
	}

	firstNeighbors, err := c.first.GetNeighbors(ctx, c.nNeighbors, c.commonKeys)
	if err != nil {
		return fmt.Errorf("neighbors of %s: %w", c.firstID, err)
	}

	secondNeighbors, err := c.second.GetNeighbors(ctx, c.nNeighbors, c.commonKeys)
	if err != nil {
		return fmt.Errorf("neighbors of %s: %w", c.secondID, err)
	}

	c.similarities = make(map[string]float64, len(c.commonKeys))
	c.orderedSims = make(map[string]float64, len(c.commonKeys))

	for _, key := range c.commonKeys {
		unordered, ordered := neighborhoodSimilarity(firstNeighbors[key], secondNeighbors[key])
		c.similarities[key] = unordered
		c.orderedSims[key] = ordered
	}

	c.similarityKeys = keysBySimilarity(c.commonKeys, c.similarities)
	c.orderedKeys = keysBySimilarity(c.commonKeys, c.orderedSims)
	c.computed = true

	return nil
}

// neighborhoodSimilarity scores the overlap of two neighbor lists. Both
// scores are normalized by the longer list length L so that identical lists
// score 1.0 even when fewer than nNeighbors neighbors exist:
//
//	unordered = |set1 ∩ set2| / L
//	ordered   = Σ_shared (1 - |rank1 - rank2|/L) / L
//
// Two empty lists score 0.0, not 1.0: a key with no neighborhood carries no
// evidence of agreement.
func neighborhoodSimilarity(first, second []Neighbor) (unordered, ordered float64) {
	length := max(len(first), len(second))
	if length == 0 {
		return 0, 0
	}

	secondRank := make(map[string]int, len(second))
	for rank, neighbor := range second {
		secondRank[neighbor.Key] = rank
	}

	l := float64(length)
	for rank, neighbor := range first {
		otherRank, shared := secondRank[neighbor.Key]
		if !shared {
			continue
		}

		unordered += 1 / l

		displacement := float64(rank - otherRank)
		if displacement < 0 {
			displacement = -displacement
		}
		ordered += (1 - displacement/l) / l
	}

	return unordered, ordered
}

func keysBySimilarity(keys []string, similarities map[string]float64) []string {
	ranked := make([]string, len(keys))
	copy(ranked, keys)
	sort.SliceStable(ranked, func(i, j int) bool {
		return similarities[ranked[i]] < similarities[ranked[j]]
	})
	return ranked
}
