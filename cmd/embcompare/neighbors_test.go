package main

import (
	"strings"
	"testing"
)

func TestNeighborsSharedKey(t *testing.T) {
	configPath := fixtureRegistry(t)

	out, err := runCommand(t, "neighbors", "left", "right", "c", "--config", configPath)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if !strings.Contains(out, "c (similarity 100%)") {
		t.Errorf("identical spaces should agree on every neighbor of c, got:\n%s", out)
	}
	if !strings.Contains(out, "common neighbors:") {
		t.Errorf("expected a common neighbor section, got:\n%s", out)
	}
}

func TestNeighborsSkipsUnknownKeys(t *testing.T) {
	configPath := fixtureRegistry(t)

	out, err := runCommand(t, "neighbors", "left", "right", "ghost", "--config", configPath)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}
	if !strings.Contains(out, "None of the requested keys") {
		t.Errorf("expected the empty result hint, got:\n%s", out)
	}
}

func TestNeighborsResolvesLabelsPerEmbedding(t *testing.T) {
	configPath := labeledRegistry(t)

	out, err := runCommand(t, "neighbors", "left", "right", "c", "--config", configPath)
	if err != nil {
		t.Fatalf("neighbors: %v", err)
	}

	// p exists only in left, q only in right: each resolves through its
	// own embedding's label table.
	if !strings.Contains(out, "Part") {
		t.Errorf("expected the first embedding's label for p, got:\n%s", out)
	}
	if !strings.Contains(out, "Quart") {
		t.Errorf("expected the second embedding's label for q, got:\n%s", out)
	}
	if !strings.Contains(out, "Alpha") {
		t.Errorf("expected the shared neighbor a labeled Alpha, got:\n%s", out)
	}
}

func TestNeighborsJSON(t *testing.T) {
	configPath := fixtureRegistry(t)

	out, err := runCommand(t, "neighbors", "left", "right", "a", "--json", "--config", configPath)
	if err != nil {
		t.Fatalf("neighbors --json: %v", err)
	}
	if !strings.Contains(out, `"key": "a"`) || !strings.Contains(out, `"common"`) {
		t.Errorf("unexpected JSON output:\n%s", out)
	}
}
