package v1

import (
	"context"
	"fmt"

	"github.com/4thel00z/embcompare/internal"
)

// Client provides programmatic access to the embedding registry and its
// comparison statistics.
type Client struct {
	cache       *internal.EmbeddingCache
	comparisons *internal.ComparisonService
	reports     *internal.ReportService
	params      internal.AdvancedParameters
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	defaults := internal.DefaultParameters()
	cfg := &clientConfig{
		cacheEntries: internal.DefaultCacheEntries,
		neighbors:    defaults.NNeighbors,
		maxEmbSize:   defaults.MaxEmbSize,
		minFrequency: defaults.MinFrequency,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	params := internal.AdvancedParameters{
		NNeighbors:   cfg.neighbors,
		MaxEmbSize:   cfg.maxEmbSize,
		MinFrequency: cfg.minFrequency,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	configPath := cfg.configPath
	if configPath == "" {
		var err error
		configPath, err = internal.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}

	registry, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	cache, err := internal.NewEmbeddingCache(cfg.cacheEntries)
	if err != nil {
		return nil, err
	}

	return &Client{
		cache:       cache,
		comparisons: internal.NewComparisonService(registry, cache),
		reports:     internal.NewReportService(registry, cache),
		params:      params,
	}, nil
}

// Compare contrasts two registered embeddings over their shared vocabulary.
func (c *Client) Compare(ctx context.Context, firstID, secondID string) (*Comparison, error) {
	out, err := c.comparisons.Compare(ctx, internal.CompareInput{
		FirstID:  firstID,
		SecondID: secondID,
		Params:   c.params,
	})
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	return &Comparison{
		FirstID:                 out.FirstID,
		SecondID:                out.SecondID,
		Keys:                    out.Keys,
		MedianSimilarity:        out.MedianSimilarity,
		MedianOrderedSimilarity: out.MedianOrderedSimilarity,
		LeastSimilar:            keySimilarities(out.LeastSimilar),
		MostSimilar:             keySimilarities(out.MostSimilar),
	}, nil
}

// Report computes nearest-neighbor distance statistics for one embedding.
func (c *Client) Report(ctx context.Context, id string) (*Report, error) {
	out, err := c.reports.Report(ctx, internal.ReportInput{
		ID:     id,
		Params: c.params,
	})
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}

	return &Report{
		ID:                  out.ID,
		Keys:                out.Keys,
		Neighbors:           out.Width,
		MedianMeanDistance:  out.MedianMeanDistance,
		MedianFirstDistance: out.MedianFirstDistance,
	}, nil
}

// Neighborhoods contrasts the neighbor lists of specific keys across two
// registered embeddings. Keys missing from either space are skipped.
func (c *Client) Neighborhoods(ctx context.Context, firstID, secondID string, keys []string) ([]KeyNeighborhoods, error) {
	out, err := c.comparisons.Neighborhoods(ctx, internal.NeighborhoodsInput{
		FirstID:  firstID,
		SecondID: secondID,
		Keys:     keys,
		Params:   c.params,
	})
	if err != nil {
		return nil, fmt.Errorf("neighborhoods: %w", err)
	}

	result := make([]KeyNeighborhoods, 0, len(out.Keys))
	for _, kn := range out.Keys {
		common := make([]NeighborPair, 0, len(kn.Common))
		for _, pair := range kn.Common {
			common = append(common, NeighborPair{
				Key:              pair.Key,
				FirstSimilarity:  pair.FirstSimilarity,
				SecondSimilarity: pair.SecondSimilarity,
			})
		}

		result = append(result, KeyNeighborhoods{
			Key:        kn.Key,
			Similarity: kn.Similarity,
			Common:     common,
			FirstOnly:  neighbors(kn.FirstOnly),
			SecondOnly: neighbors(kn.SecondOnly),
		})
	}
	return result, nil
}

// Close releases the embedding cache and its file watchers.
func (c *Client) Close() error {
	return c.cache.Close()
}

func keySimilarities(list []internal.KeySimilarity) []KeySimilarity {
	out := make([]KeySimilarity, 0, len(list))
	for _, ks := range list {
		out = append(out, KeySimilarity{Key: ks.Key, Similarity: ks.Similarity})
	}
	return out
}

func neighbors(list []internal.Neighbor) []Neighbor {
	out := make([]Neighbor, 0, len(list))
	for _, n := range list {
		out = append(out, Neighbor{Key: n.Key, Similarity: n.Similarity})
	}
	return out
}
