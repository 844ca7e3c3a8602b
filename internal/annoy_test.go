package internal

import (
	"context"
	"errors"
	"testing"
)

func TestAnnoyIndexSearch(t *testing.T) {
	idx, err := NewAnnoyIndex([][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}, 3)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(results) == 0 {
		t.Fatal("expected at least 1 result")
	}
	if results[0].Index != 0 {
		t.Errorf("expected the query's own vector first, got %d", results[0].Index)
	}
	for _, r := range results {
		if r.Similarity < -1.001 || r.Similarity > 1.001 {
			t.Errorf("similarity outside cosine range: %v", r.Similarity)
		}
	}
}

func TestAnnoyIndexDimensionMismatch(t *testing.T) {
	_, err := NewAnnoyIndex([][]float32{{1, 0}}, 3)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch on build, got %v", err)
	}

	idx, err := NewAnnoyIndex([][]float32{{1, 0, 0}}, 3)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	_, err = idx.Search(context.Background(), []float32{1, 0}, 1)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch on search, got %v", err)
	}
}

func TestAnnoyIndexKClamped(t *testing.T) {
	idx, err := NewAnnoyIndex([][]float32{{1, 0, 0}, {0, 1, 0}}, 3)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	results, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) > 2 {
		t.Errorf("expected at most 2 results, got %d", len(results))
	}
}
