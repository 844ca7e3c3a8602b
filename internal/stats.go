package internal

import (
	"context"
	"fmt"
	"sort"
)

// WeightedMedian returns the 50th weighted percentile of values: after a
// stable sort by value, the first value whose cumulative weight reaches half
// the total weight. With uniform weights this reduces to the lower standard
// median. Weights must be non-negative; a zero total weight is the one hard
// failure of the statistics layer.
func WeightedMedian(values, weights []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: no values", ErrInvalidParameters)
	}
	if len(values) != len(weights) {
		return 0, fmt.Errorf("%w: %d values for %d weights", ErrInvalidParameters, len(values), len(weights))
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	// Stable keeps equal values in input order, fixing the tie rule.
	sort.SliceStable(order, func(i, j int) bool {
		return values[order[i]] < values[order[j]]
	})

	var total float64
	for _, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("%w: negative weight %v", ErrInvalidParameters, w)
		}
		total += w
	}
	if total == 0 {
		return 0, ErrZeroTotalWeight
	}

	half := total / 2
	var cumulative float64
	for _, i := range order {
		cumulative += weights[i]
		if cumulative >= half {
			return values[i], nil
		}
	}

	// Unreachable: the loop always crosses half the total.
	return values[order[len(order)-1]], nil
}

// Median is the unweighted special case.
func Median(values []float64) (float64, error) {
	weights := make([]float64, len(values))
	for i := range weights {
		weights[i] = 1
	}
	return WeightedMedian(values, weights)
}

// WeightedMedianSimilarity summarizes a comparison's unordered similarities
// as one number, downweighting rare keys: each key is weighted by the mean of
// the two embeddings' frequencies for it.
func WeightedMedianSimilarity(ctx context.Context, c *Comparison) (float64, error) {
	values, err := c.SimilarityValues(ctx)
	if err != nil {
		return 0, err
	}
	keys, err := c.SimilarityKeys(ctx)
	if err != nil {
		return 0, err
	}
	return WeightedMedian(values, comparisonWeights(c, keys))
}

// WeightedMedianOrderedSimilarity mirrors WeightedMedianSimilarity for the
// rank-sensitive scores.
func WeightedMedianOrderedSimilarity(ctx context.Context, c *Comparison) (float64, error) {
	values, err := c.OrderedSimilarityValues(ctx)
	if err != nil {
		return 0, err
	}
	keys, err := c.OrderedSimilarityKeys(ctx)
	if err != nil {
		return 0, err
	}
	return WeightedMedian(values, comparisonWeights(c, keys))
}

// comparisonWeights averages the two embeddings' frequencies per key. An
// embedding without frequency data contributes 0; when neither side has any,
// the weights fall back to uniform so the median degrades to the plain one
// instead of failing on a zero total.
func comparisonWeights(c *Comparison, keys []string) []float64 {
	weights := make([]float64, len(keys))

	if !c.First().IsFrequencySet() && !c.Second().IsFrequencySet() {
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}

	for i, key := range keys {
		weights[i] = (c.First().Frequency(key) + c.Second().Frequency(key)) / 2
	}
	return weights
}
