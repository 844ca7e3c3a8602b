package internal

import (
	"context"
	"fmt"
)

// topSimilarityCount bounds the least/most similar key lists in compare
// output.
const topSimilarityCount = 10

// KeySimilarity pairs a vocabulary key with one of its similarity scores.
type KeySimilarity struct {
	Key        string
	Similarity float64
}

type CompareInput struct {
	FirstID  string
	SecondID string
	Params   AdvancedParameters
}

type CompareOutput struct {
	FirstID  string
	SecondID string

	// Keys is the sampled common vocabulary size. Zero means the two
	// embeddings share no keys: every other field is empty and the caller
	// should render a "no comparable data" state.
	Keys int

	MedianSimilarity        float64
	MedianOrderedSimilarity float64

	// LeastSimilar and MostSimilar are the two ends of the similarity
	// ranking, never overlapping: each holds at most ten keys and at most
	// half the shared vocabulary.
	LeastSimilar []KeySimilarity
	MostSimilar  []KeySimilarity
}

type ReportInput struct {
	ID     string
	Params AdvancedParameters
}

type ReportOutput struct {
	ID    string
	Keys  int
	Width int

	MedianMeanDistance  float64
	MedianFirstDistance float64
}

type NeighborhoodsInput struct {
	FirstID  string
	SecondID string
	Keys     []string
	Params   AdvancedParameters
}

// KeyNeighborhoods contrasts one key's neighbor lists across both spaces.
type KeyNeighborhoods struct {
	Key        string
	Similarity float64

	// Common lists neighbors present in both spaces; FirstOnly and
	// SecondOnly the remainder of each list.
	Common     []NeighborPair
	FirstOnly  []Neighbor
	SecondOnly []Neighbor
}

type NeighborPair struct {
	Key              string
	FirstSimilarity  float64
	SecondSimilarity float64
}

type NeighborhoodsOutput struct {
	FirstID  string
	SecondID string
	Keys     []KeyNeighborhoods
}

// ComparisonService builds comparisons from the embedding registry: load
// through the cache, filter by frequency, sample, compute statistics.
type ComparisonService struct {
	cfg   *Config
	cache *EmbeddingCache
}

func NewComparisonService(cfg *Config, cache *EmbeddingCache) *ComparisonService {
	return &ComparisonService{cfg: cfg, cache: cache}
}

// Comparison loads both embeddings and returns the sampled comparison for
// in.Params. The caller owns the statistics it derives from it.
func (s *ComparisonService) Comparison(ctx context.Context, in CompareInput) (*Comparison, error) {
	if err := in.Params.Validate(); err != nil {
		return nil, err
	}

	first, err := s.loadEmbedding(in.FirstID, in.Params.MinFrequency)
	if err != nil {
		return nil, err
	}
	second, err := s.loadEmbedding(in.SecondID, in.Params.MinFrequency)
	if err != nil {
		return nil, err
	}

	comparison, err := NewComparison(in.FirstID, first, in.SecondID, second, in.Params.NNeighbors)
	if err != nil {
		return nil, err
	}

	return comparison.Sampled(in.Params.MaxEmbSize)
}

func (s *ComparisonService) Compare(ctx context.Context, in CompareInput) (*CompareOutput, error) {
	comparison, err := s.Comparison(ctx, in)
	if err != nil {
		return nil, err
	}

	out := &CompareOutput{
		FirstID:  in.FirstID,
		SecondID: in.SecondID,
		Keys:     len(comparison.Keys()),
	}
	if out.Keys == 0 {
		return out, nil
	}

	out.MedianSimilarity, err = WeightedMedianSimilarity(ctx, comparison)
	if err != nil {
		return nil, fmt.Errorf("median similarity: %w", err)
	}
	out.MedianOrderedSimilarity, err = WeightedMedianOrderedSimilarity(ctx, comparison)
	if err != nil {
		return nil, fmt.Errorf("median ordered similarity: %w", err)
	}

	keys, err := comparison.SimilarityKeys(ctx)
	if err != nil {
		return nil, err
	}
	values, err := comparison.SimilarityValues(ctx)
	if err != nil {
		return nil, err
	}

	// At most half the vocabulary per list, so a small common vocabulary
	// never surfaces the same key as both least and most similar.
	count := topSimilarityCount
	if limit := len(keys) / 2; count > limit {
		count = limit
	}
	for i := range count {
		out.LeastSimilar = append(out.LeastSimilar, KeySimilarity{Key: keys[i], Similarity: values[i]})
	}
	for i := len(keys) - count; i < len(keys); i++ {
		out.MostSimilar = append(out.MostSimilar, KeySimilarity{Key: keys[i], Similarity: values[i]})
	}

	return out, nil
}

// Neighborhoods contrasts the two neighbor lists for the requested keys,
// the drill-down behind a low similarity score. Keys missing from either
// space are skipped.
func (s *ComparisonService) Neighborhoods(ctx context.Context, in NeighborhoodsInput) (*NeighborhoodsOutput, error) {
	comparison, err := s.Comparison(ctx, CompareInput{
		FirstID:  in.FirstID,
		SecondID: in.SecondID,
		Params:   in.Params,
	})
	if err != nil {
		return nil, err
	}

	similarities, err := comparison.Similarities(ctx)
	if err != nil {
		return nil, err
	}

	n := comparison.NNeighbors()
	firstNeighbors, err := comparison.First().GetNeighbors(ctx, n, in.Keys)
	if err != nil {
		return nil, err
	}
	secondNeighbors, err := comparison.Second().GetNeighbors(ctx, n, in.Keys)
	if err != nil {
		return nil, err
	}

	out := &NeighborhoodsOutput{FirstID: in.FirstID, SecondID: in.SecondID}
	for _, key := range in.Keys {
		first, inFirst := firstNeighbors[key]
		second, inSecond := secondNeighbors[key]
		if !inFirst || !inSecond {
			continue
		}

		kn := KeyNeighborhoods{Key: key, Similarity: similarities[key]}

		secondSim := make(map[string]float64, len(second))
		for _, neighbor := range second {
			secondSim[neighbor.Key] = neighbor.Similarity
		}

		shared := make(map[string]struct{})
		for _, neighbor := range first {
			if sim2, ok := secondSim[neighbor.Key]; ok {
				shared[neighbor.Key] = struct{}{}
				kn.Common = append(kn.Common, NeighborPair{
					Key:              neighbor.Key,
					FirstSimilarity:  neighbor.Similarity,
					SecondSimilarity: sim2,
				})
			} else {
				kn.FirstOnly = append(kn.FirstOnly, neighbor)
			}
		}
		for _, neighbor := range second {
			if _, ok := shared[neighbor.Key]; !ok {
				kn.SecondOnly = append(kn.SecondOnly, neighbor)
			}
		}

		out.Keys = append(out.Keys, kn)
	}

	return out, nil
}

// Labels loads the display-label table registered for id; missing tables
// yield an empty map and keys display as themselves.
func (s *ComparisonService) Labels(id string) (map[string]string, error) {
	info, err := s.cfg.Embedding(id)
	if err != nil {
		return nil, err
	}
	return LoadLabels(info.Labels, info.LabelsFormat)
}

func (s *ComparisonService) loadEmbedding(id string, minFrequency float64) (*Embedding, error) {
	return loadRegisteredEmbedding(s.cfg, s.cache, id, minFrequency)
}

func loadRegisteredEmbedding(cfg *Config, cache *EmbeddingCache, id string, minFrequency float64) (*Embedding, error) {
	info, err := cfg.Embedding(id)
	if err != nil {
		return nil, err
	}

	emb, err := cache.Load(info)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}

	if minFrequency > 0 && emb.IsFrequencySet() {
		emb, err = emb.FilterByFrequency(minFrequency)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", id, err)
		}
	}

	return emb, nil
}

// ReportService derives single-embedding distance statistics.
type ReportService struct {
	cfg   *Config
	cache *EmbeddingCache
}

func NewReportService(cfg *Config, cache *EmbeddingCache) *ReportService {
	return &ReportService{cfg: cfg, cache: cache}
}

func (s *ReportService) Report(ctx context.Context, in ReportInput) (*ReportOutput, error) {
	if err := in.Params.Validate(); err != nil {
		return nil, err
	}

	emb, err := loadRegisteredEmbedding(s.cfg, s.cache, in.ID, in.Params.MinFrequency)
	if err != nil {
		return nil, err
	}

	emb, err = emb.Sampled(in.Params.MaxEmbSize)
	if err != nil {
		return nil, err
	}

	report, err := NewReport(emb, in.Params.NNeighbors)
	if err != nil {
		return nil, err
	}

	out := &ReportOutput{
		ID:    in.ID,
		Keys:  emb.Len(),
		Width: report.Width(),
	}
	if out.Keys == 0 || out.Width == 0 {
		return out, nil
	}

	means, err := report.MeanDistances(ctx)
	if err != nil {
		return nil, err
	}
	firsts, err := report.FirstDistances(ctx)
	if err != nil {
		return nil, err
	}

	out.MedianMeanDistance, err = Median(means)
	if err != nil {
		return nil, fmt.Errorf("median mean distance: %w", err)
	}
	out.MedianFirstDistance, err = Median(firsts)
	if err != nil {
		return nil, fmt.Errorf("median first distance: %w", err)
	}

	return out, nil
}
