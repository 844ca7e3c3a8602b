package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedMedianUniformWeights(t *testing.T) {
	// With equal weights the first value crossing half the total wins, so
	// even-length inputs resolve to the lower middle element.
	got, err := WeightedMedian([]float64{1, 2, 3, 4}, []float64{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestWeightedMedianSingleElement(t *testing.T) {
	got, err := WeightedMedian([]float64{5}, []float64{0.3})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)
}

func TestWeightedMedianZeroTotalWeight(t *testing.T) {
	_, err := WeightedMedian([]float64{1, 2, 3}, []float64{0, 0, 0})
	assert.ErrorIs(t, err, ErrZeroTotalWeight)
}

func TestWeightedMedianSkewedWeights(t *testing.T) {
	// All the mass sits on the last value.
	got, err := WeightedMedian([]float64{1, 2, 3}, []float64{0, 0, 5})
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

func TestWeightedMedianUnsortedInput(t *testing.T) {
	got, err := WeightedMedian([]float64{4, 1, 3, 2}, []float64{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestWeightedMedianInvalidInput(t *testing.T) {
	_, err := WeightedMedian(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = WeightedMedian([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = WeightedMedian([]float64{1}, []float64{-1})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestMedian(t *testing.T) {
	got, err := Median([]float64{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = Median([]float64{4, 2, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestWeightedMedianSimilarityWithoutFrequencies(t *testing.T) {
	first := testEmbedding(t, gridKeys, gridVectors)
	second := testEmbedding(t, gridKeys, gridVectors)

	comparison, err := NewComparison("a", first, "b", second, 2)
	require.NoError(t, err)

	ctx := context.Background()

	// Neither side carries frequencies: weights fall back to uniform and
	// identical spaces still summarize to 1.0.
	got, err := WeightedMedianSimilarity(ctx, comparison)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = WeightedMedianOrderedSimilarity(ctx, comparison)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestWeightedMedianSimilarityUsesFrequencies(t *testing.T) {
	first := testEmbedding(t, gridKeys, gridVectors)
	second := testEmbedding(t, gridKeys, gridVectors)

	// One-sided frequencies: the missing side contributes 0 to the mean,
	// which skews the weights, not the values.
	first.SetFrequencies(map[string]float64{"a": 0.9, "b": 0.05, "c": 0.03, "d": 0.02})

	comparison, err := NewComparison("a", first, "b", second, 2)
	require.NoError(t, err)

	got, err := WeightedMedianSimilarity(context.Background(), comparison)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestWeightedMedianSimilarityAllZeroWeights(t *testing.T) {
	first := testEmbedding(t, gridKeys, gridVectors)
	second := testEmbedding(t, gridKeys, gridVectors)

	first.SetFrequencies(map[string]float64{"a": 0, "b": 0, "c": 0, "d": 0})

	comparison, err := NewComparison("a", first, "b", second, 2)
	require.NoError(t, err)

	_, err = WeightedMedianSimilarity(context.Background(), comparison)
	assert.ErrorIs(t, err, ErrZeroTotalWeight)
}
