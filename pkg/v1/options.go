package v1

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	configPath   string
	cacheEntries int
	neighbors    int
	maxEmbSize   int
	minFrequency float64
}

// WithConfigPath sets the embeddings registry path.
func WithConfigPath(path string) Option {
	return func(c *clientConfig) {
		c.configPath = path
	}
}

// WithCacheEntries bounds how many loaded embeddings stay in memory.
func WithCacheEntries(n int) Option {
	return func(c *clientConfig) {
		c.cacheEntries = n
	}
}

// WithNeighbors sets the neighborhood size used by comparisons and reports.
func WithNeighbors(n int) Option {
	return func(c *clientConfig) {
		c.neighbors = n
	}
}

// WithMaxEmbeddingSize caps how many keys of each embedding are analysed.
func WithMaxEmbeddingSize(n int) Option {
	return func(c *clientConfig) {
		c.maxEmbSize = n
	}
}

// WithMinFrequency drops keys rarer than the given frequency before
// comparing, for embeddings that carry a frequency table.
func WithMinFrequency(f float64) Option {
	return func(c *clientConfig) {
		c.minFrequency = f
	}
}
