package main

import (
	"strings"
	"testing"
)

func TestCompareIdenticalSpaces(t *testing.T) {
	configPath := fixtureRegistry(t)

	out, err := runCommand(t, "compare", "left", "right", "--config", configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	if !strings.Contains(out, "left vs right over 3 common keys") {
		t.Errorf("expected the comparison header, got:\n%s", out)
	}
	if !strings.Contains(out, "median similarity:         100.0%") {
		t.Errorf("identical spaces should report a 100%% similarity median, got:\n%s", out)
	}
}

func TestCompareJSON(t *testing.T) {
	configPath := fixtureRegistry(t)

	out, err := runCommand(t, "compare", "left", "right", "--json", "--config", configPath)
	if err != nil {
		t.Fatalf("compare --json: %v", err)
	}
	if !strings.Contains(out, `"median_similarity": 1`) {
		t.Errorf("expected a JSON similarity median of 1, got:\n%s", out)
	}
	if !strings.Contains(out, `"keys": 3`) {
		t.Errorf("expected 3 shared keys in the JSON output, got:\n%s", out)
	}
}

func TestCompareMergesLabelTables(t *testing.T) {
	configPath := labeledRegistry(t)

	out, err := runCommand(t, "compare", "left", "right", "--config", configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	// a is labeled in the first embedding's table, c only in the second's.
	if !strings.Contains(out, "Alpha") {
		t.Errorf("expected a label from the first embedding's table, got:\n%s", out)
	}
	if !strings.Contains(out, "Gamma") {
		t.Errorf("expected a label from the second embedding's table, got:\n%s", out)
	}
}

func TestCompareUnknownEmbedding(t *testing.T) {
	configPath := fixtureRegistry(t)

	_, err := runCommand(t, "compare", "left", "missing", "--config", configPath)
	if err == nil {
		t.Fatal("expected an error for an unregistered embedding")
	}
}

func TestCompareRejectsInvalidNeighborCount(t *testing.T) {
	configPath := fixtureRegistry(t)

	_, err := runCommand(t, "compare", "left", "right", "--neighbors", "0", "--config", configPath)
	if err == nil {
		t.Fatal("expected an error for a zero neighbor count")
	}
}
