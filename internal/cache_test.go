package internal

import (
	"errors"
	"path/filepath"
	"testing"
)

func cacheFixture(t *testing.T) (EmbeddingInfo, *EmbeddingCache) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "emb.json")
	if err := writeFile(path, `{"a": [1, 0], "b": [0, 1]}`); err != nil {
		t.Fatalf("write: %v", err)
	}

	cache, err := NewEmbeddingCache(DefaultCacheEntries)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	return EmbeddingInfo{Path: path}, cache
}

func TestCacheReusesLoadedEmbedding(t *testing.T) {
	info, cache := cacheFixture(t)

	first, err := cache.Load(info)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := cache.Load(info)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}

	if first != second {
		t.Error("expected the cached embedding instance on the second load")
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 cache entry, got %d", cache.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	dir := t.TempDir()

	var infos []EmbeddingInfo
	for _, name := range []string{"one.json", "two.json"} {
		path := filepath.Join(dir, name)
		if err := writeFile(path, `{"a": [1, 0]}`); err != nil {
			t.Fatalf("write: %v", err)
		}
		infos = append(infos, EmbeddingInfo{Path: path})
	}

	cache, err := NewEmbeddingCache(1)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	defer cache.Close()

	first, err := cache.Load(infos[0])
	if err != nil {
		t.Fatalf("load one: %v", err)
	}
	if _, err := cache.Load(infos[1]); err != nil {
		t.Fatalf("load two: %v", err)
	}

	if cache.Len() != 1 {
		t.Fatalf("expected the bound to hold, got %d entries", cache.Len())
	}

	// The first entry was evicted: loading it again builds a new instance.
	again, err := cache.Load(infos[0])
	if err != nil {
		t.Fatalf("reload one: %v", err)
	}
	if again == first {
		t.Error("expected a fresh embedding after eviction")
	}
}

func TestCacheInvalidatePath(t *testing.T) {
	info, cache := cacheFixture(t)

	first, err := cache.Load(info)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cache.invalidatePath(info.Path)

	if cache.Len() != 0 {
		t.Fatalf("expected the entry to be dropped, got %d entries", cache.Len())
	}

	again, err := cache.Load(info)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again == first {
		t.Error("expected a fresh embedding after invalidation")
	}
}

func TestCacheDistinguishesFrequencySources(t *testing.T) {
	dir := t.TempDir()
	embPath := filepath.Join(dir, "emb.json")
	freqPath := filepath.Join(dir, "freq.json")

	if err := writeFile(embPath, `{"a": [1, 0]}`); err != nil {
		t.Fatalf("write embedding: %v", err)
	}
	if err := writeFile(freqPath, `{"a": 0.5}`); err != nil {
		t.Fatalf("write frequencies: %v", err)
	}

	cache, err := NewEmbeddingCache(DefaultCacheEntries)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	defer cache.Close()

	plain, err := cache.Load(EmbeddingInfo{Path: embPath})
	if err != nil {
		t.Fatalf("load plain: %v", err)
	}
	withFreq, err := cache.Load(EmbeddingInfo{Path: embPath, Frequencies: freqPath})
	if err != nil {
		t.Fatalf("load with frequencies: %v", err)
	}

	if plain == withFreq {
		t.Error("different sources must not share a cache entry")
	}
	if plain.IsFrequencySet() {
		t.Error("plain load must not carry frequencies")
	}
	if !withFreq.IsFrequencySet() {
		t.Error("frequency load must carry frequencies")
	}
}

func TestCacheRejectsZeroBound(t *testing.T) {
	_, err := NewEmbeddingCache(0)
	if !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
}
