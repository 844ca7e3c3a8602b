package internal

import (
	"context"
	"math"
	"testing"
)

func TestBruteIndexOrdering(t *testing.T) {
	idx := NewBruteIndex([][]float32{
		{0, 1},   // orthogonal
		{1, 0.1}, // close
		{1, 1},   // diagonal
	})

	results, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	want := []int{1, 2, 0}
	for i, r := range results {
		if r.Index != want[i] {
			t.Fatalf("expected order %v, got %v then %v", want, results[i].Index, results)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Error("similarities must be non-increasing")
		}
	}
}

func TestBruteIndexStableTies(t *testing.T) {
	// Identical vectors are equally similar; insertion order breaks the tie.
	idx := NewBruteIndex([][]float32{
		{0, 1},
		{1, 0},
		{1, 0},
	})

	results, err := idx.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if results[0].Index != 1 || results[1].Index != 2 {
		t.Errorf("expected tied candidates in insertion order [1 2], got [%d %d]",
			results[0].Index, results[1].Index)
	}
}

func TestBruteIndexKBounds(t *testing.T) {
	idx := NewBruteIndex([][]float32{{1, 0}, {0, 1}})
	ctx := context.Background()

	results, err := idx.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("k beyond the vector count must clamp, got %d results", len(results))
	}

	results, err = idx.Search(ctx, []float32{1, 0}, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results != nil {
		t.Errorf("k = 0 must yield no results, got %v", results)
	}
}

func TestBruteIndexZeroVector(t *testing.T) {
	idx := NewBruteIndex([][]float32{{0, 0}, {1, 0}})

	results, err := idx.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	for _, r := range results {
		if r.Index == 0 && r.Similarity != 0 {
			t.Errorf("zero vector must have similarity 0, got %v", r.Similarity)
		}
	}
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{1, 1}

	if got := cosine(a, vectorNorm(a), a, vectorNorm(a)); math.Abs(got-1) > 1e-12 {
		t.Errorf("cos(a, a) = %v, expected 1", got)
	}
	if got := cosine(a, vectorNorm(a), b, vectorNorm(b)); got != 0 {
		t.Errorf("cos(a, b) = %v, expected 0", got)
	}
	if got := cosine(a, vectorNorm(a), c, vectorNorm(c)); math.Abs(got-1/math.Sqrt2) > 1e-9 {
		t.Errorf("cos(a, c) = %v, expected %v", got, 1/math.Sqrt2)
	}
}
