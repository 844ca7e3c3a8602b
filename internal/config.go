package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// EmbeddingInfo describes one registered embedding: where to load it from
// and which optional side tables it carries.
type EmbeddingInfo struct {
	Name              string `yaml:"name,omitempty"`
	Path              string `yaml:"path"`
	Format            string `yaml:"format,omitempty"`
	Frequencies       string `yaml:"frequencies,omitempty"`
	FrequenciesFormat string `yaml:"frequencies_format,omitempty"`
	Labels            string `yaml:"labels,omitempty"`
	LabelsFormat      string `yaml:"labels_format,omitempty"`
}

// Config is the yaml registry of embeddings available for comparison.
type Config struct {
	Embeddings map[string]EmbeddingInfo `yaml:"embeddings"`
}

func DefaultConfig() *Config {
	return &Config{Embeddings: make(map[string]EmbeddingInfo)}
}

// EmbeddingIDs returns the registered ids in lexical order.
func (c *Config) EmbeddingIDs() []string {
	ids := make([]string, 0, len(c.Embeddings))
	for id := range c.Embeddings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Config) Embedding(id string) (EmbeddingInfo, error) {
	info, ok := c.Embeddings[id]
	if !ok {
		return EmbeddingInfo{}, fmt.Errorf("%w: %q", ErrUnknownEmbedding, id)
	}
	return info, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Embeddings == nil {
		cfg.Embeddings = make(map[string]EmbeddingInfo)
	}

	return &cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// DefaultConfigPath places the registry under the user config directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "embcompare", "embeddings.yaml"), nil
}

// AdvancedParameters bundles the knobs of a comparison run.
type AdvancedParameters struct {
	NNeighbors   int
	MaxEmbSize   int
	MinFrequency float64
}

// DefaultParameters returns the defaults every comparison run starts from.
func DefaultParameters() AdvancedParameters {
	return AdvancedParameters{
		NNeighbors:   25,
		MaxEmbSize:   10000,
		MinFrequency: 0.0,
	}
}

func (p AdvancedParameters) Validate() error {
	if p.NNeighbors < 1 {
		return fmt.Errorf("%w: n_neighbors must be at least 1, got %d", ErrInvalidParameters, p.NNeighbors)
	}
	if p.MaxEmbSize < 100 {
		return fmt.Errorf("%w: max_emb_size must be at least 100, got %d", ErrInvalidParameters, p.MaxEmbSize)
	}
	if p.MinFrequency < 0 || p.MinFrequency > 1 {
		return fmt.Errorf("%w: min_frequency must be in [0,1], got %v", ErrInvalidParameters, p.MinFrequency)
	}
	return nil
}
