package internal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Embedding file formats. json and yaml files hold a key -> vector mapping;
// txt is the word2vec text format (optional "count dim" header, then one
// "key v1 v2 ..." line per key, keys kept in file order).
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "txt"
)

// InferFormat guesses a format from the file extension.
func InferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".txt", ".vec":
		return FormatText
	default:
		return ""
	}
}

// LoadEmbedding reads an embedding file and attaches the frequency table
// referenced by info, if any. Formats default to the file extension.
func LoadEmbedding(info EmbeddingInfo) (*Embedding, error) {
	format := info.Format
	if format == "" {
		format = InferFormat(info.Path)
	}

	var (
		emb *Embedding
		err error
	)

	switch strings.ToLower(format) {
	case FormatJSON:
		emb, err = loadJSONEmbedding(info.Path)
	case FormatYAML:
		emb, err = loadYAMLEmbedding(info.Path)
	case FormatText:
		emb, err = loadTextEmbedding(info.Path)
	default:
		return nil, fmt.Errorf("%w: embedding format %q for %s", ErrUnknownFormat, format, info.Path)
	}
	if err != nil {
		return nil, err
	}

	if info.Frequencies != "" {
		frequencies, err := LoadFrequencies(info.Frequencies, info.FrequenciesFormat)
		if err != nil {
			return nil, err
		}
		emb.SetFrequencies(frequencies)
	}

	return emb, nil
}

// LoadFrequencies reads a key -> frequency table (json or yaml).
func LoadFrequencies(path, format string) (map[string]float64, error) {
	frequencies := make(map[string]float64)
	if err := loadTable(path, format, &frequencies); err != nil {
		return nil, fmt.Errorf("load frequencies: %w", err)
	}
	return frequencies, nil
}

// LoadLabels reads a key -> display label table (json or yaml). A missing
// path yields an empty table: the raw key doubles as the label.
func LoadLabels(path, format string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	labels := make(map[string]string)
	if err := loadTable(path, format, &labels); err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	return labels, nil
}

func loadTable(path, format string, out any) error {
	if format == "" {
		format = InferFormat(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: table format %q for %s", ErrUnknownFormat, format, path)
	}

	return nil
}

func loadJSONEmbedding(path string) (*Embedding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	table := make(map[string][]float32)
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return embeddingFromTable(table)
}

func loadYAMLEmbedding(path string) (*Embedding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	table := make(map[string][]float32)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return embeddingFromTable(table)
}

// embeddingFromTable sorts keys lexically: mapping decoders do not preserve
// file order, and sampling needs a reproducible vocabulary order.
func embeddingFromTable(table map[string][]float32) (*Embedding, error) {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	vectors := make([][]float32, len(keys))
	for i, key := range keys {
		vectors[i] = table[key]
	}

	return NewEmbedding(keys, vectors)
}

func loadTextEmbedding(path string) (*Embedding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	var (
		keys    []string
		vectors [][]float32
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)

		// word2vec text files may start with a "count dim" header.
		if first {
			first = false
			if len(fields) == 2 {
				if _, err1 := strconv.Atoi(fields[0]); err1 == nil {
					if _, err2 := strconv.Atoi(fields[1]); err2 == nil {
						continue
					}
				}
			}
		}

		if len(fields) < 2 {
			return nil, fmt.Errorf("parse %s: line %q has no vector", path, line)
		}

		vector := make([]float32, len(fields)-1)
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("parse %s: key %q: %w", path, fields[0], err)
			}
			vector[i] = float32(v)
		}

		keys = append(keys, fields[0])
		vectors = append(vectors, vector)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return NewEmbedding(keys, vectors)
}
