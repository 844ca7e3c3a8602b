package internal

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DefaultCacheEntries bounds the loader cache: the two embeddings of a
// comparison plus one spare.
const DefaultCacheEntries = 3

// EmbeddingCache is a bounded, content-addressed cache in front of
// LoadEmbedding. Entries are keyed by source paths and formats, evicted
// least-recently-used, and invalidated when a watched source file changes on
// disk.
type EmbeddingCache struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*cacheEntry
	order      []string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

type cacheEntry struct {
	emb   *Embedding
	paths []string
}

func NewEmbeddingCache(maxEntries int) (*EmbeddingCache, error) {
	if maxEntries < 1 {
		return nil, fmt.Errorf("%w: cache needs at least 1 entry, got %d", ErrInvalidParameters, maxEntries)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	c := &EmbeddingCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
		watcher:    watcher,
		done:       make(chan struct{}),
	}
	go c.watch()

	return c, nil
}

func cacheKey(info EmbeddingInfo) string {
	return strings.Join([]string{
		info.Path, info.Format, info.Frequencies, info.FrequenciesFormat,
	}, "|")
}

// Load returns the cached embedding for info, loading and caching it on a
// miss. Two callers asking for the same sources share one Embedding; the
// shared value is read-only by contract.
func (c *EmbeddingCache) Load(info EmbeddingInfo) (*Embedding, error) {
	key := cacheKey(info)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		c.touch(key)
		c.mu.Unlock()
		return entry.emb, nil
	}
	c.mu.Unlock()

	// Load outside the lock: files can be large.
	emb, err := LoadEmbedding(info)
	if err != nil {
		return nil, err
	}

	paths := []string{info.Path}
	if info.Frequencies != "" {
		paths = append(paths, info.Frequencies)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.touch(key)
		return entry.emb, nil
	}

	c.entries[key] = &cacheEntry{emb: emb, paths: paths}
	c.order = append(c.order, key)
	for _, path := range paths {
		// Watch errors are non-fatal: a source on a filesystem without
		// notification support still caches, it just never
		// self-invalidates.
		_ = c.watcher.Add(path)
	}

	for len(c.order) > c.maxEntries {
		c.evict(c.order[0])
	}

	return emb, nil
}

// Len reports the current number of cached embeddings.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *EmbeddingCache) Close() error {
	close(c.done)
	return c.watcher.Close()
}

// touch moves key to the most-recently-used end. Caller holds the lock.
func (c *EmbeddingCache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), key)
			return
		}
	}
}

// evict drops key and unwatches paths no surviving entry references. Caller
// holds the lock.
func (c *EmbeddingCache) evict(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}

	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}

	for _, path := range entry.paths {
		if !c.pathInUse(path) {
			_ = c.watcher.Remove(path)
		}
	}
}

func (c *EmbeddingCache) pathInUse(path string) bool {
	for _, entry := range c.entries {
		for _, p := range entry.paths {
			if p == path {
				return true
			}
		}
	}
	return false
}

func (c *EmbeddingCache) watch() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			c.invalidatePath(event.Name)
		case _, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// invalidatePath drops every entry loaded from path; the next Load re-reads
// the changed file.
func (c *EmbeddingCache) invalidatePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []string
	for key, entry := range c.entries {
		for _, p := range entry.paths {
			if p == path {
				stale = append(stale, key)
				break
			}
		}
	}

	for _, key := range stale {
		c.evict(key)
	}
}
