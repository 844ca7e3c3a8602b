package main

import (
	"fmt"

	"github.com/4thel00z/embcompare/internal"
	"github.com/spf13/cobra"
)

// services bundles everything a comparison run needs: the registry, the
// bounded loader cache and the two statistic services on top of them.
type services struct {
	cfg         *internal.Config
	cache       *internal.EmbeddingCache
	comparisons *internal.ComparisonService
	reports     *internal.ReportService
}

func openServices(cmd *cobra.Command) (*services, error) {
	path, err := resolveConfigPath(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	cache, err := internal.NewEmbeddingCache(internal.DefaultCacheEntries)
	if err != nil {
		return nil, err
	}

	return &services{
		cfg:         cfg,
		cache:       cache,
		comparisons: internal.NewComparisonService(cfg, cache),
		reports:     internal.NewReportService(cfg, cache),
	}, nil
}

func (s *services) Close() error {
	return s.cache.Close()
}

func resolveConfigPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return path, nil
	}
	return internal.DefaultConfigPath()
}

func paramsFromFlags(cmd *cobra.Command) (internal.AdvancedParameters, error) {
	params := internal.DefaultParameters()

	if cmd.Flags().Changed("neighbors") {
		params.NNeighbors, _ = cmd.Flags().GetInt("neighbors")
	}
	if cmd.Flags().Changed("max-size") {
		params.MaxEmbSize, _ = cmd.Flags().GetInt("max-size")
	}
	if cmd.Flags().Changed("min-frequency") {
		params.MinFrequency, _ = cmd.Flags().GetFloat64("min-frequency")
	}

	if err := params.Validate(); err != nil {
		return params, fmt.Errorf("parameters: %w", err)
	}
	return params, nil
}

func addParameterFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("neighbors", "n", 25, "Number of neighbors to use in the comparison")
	cmd.Flags().Int("max-size", 10000, "Maximum number of elements in the embeddings")
	cmd.Flags().Float64("min-frequency", 0.0, "Minimum frequency for embedding elements")
}

// displayLabel resolves a key through a labels table, defaulting to the key.
func displayLabel(labels map[string]string, key string) string {
	if label, ok := labels[key]; ok {
		return label
	}
	return key
}

// mergeLabels combines both embeddings' label tables for keys shown in a
// shared context; the first embedding wins on conflicts.
func mergeLabels(first, second map[string]string) map[string]string {
	merged := make(map[string]string, len(first)+len(second))
	for key, label := range second {
		merged[key] = label
	}
	for key, label := range first {
		merged[key] = label
	}
	return merged
}
