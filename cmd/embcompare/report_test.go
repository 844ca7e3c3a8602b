package main

import (
	"strings"
	"testing"
)

func TestReportText(t *testing.T) {
	configPath := fixtureRegistry(t)

	out, err := runCommand(t, "report", "left", "--config", configPath)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "left: 3 keys, 2 neighbors per key") {
		t.Errorf("expected the report header, got:\n%s", out)
	}
	if !strings.Contains(out, "median mean distance") {
		t.Errorf("expected distance statistics, got:\n%s", out)
	}
}

func TestReportJSON(t *testing.T) {
	configPath := fixtureRegistry(t)

	out, err := runCommand(t, "report", "left", "--json", "--config", configPath)
	if err != nil {
		t.Fatalf("report --json: %v", err)
	}
	if !strings.Contains(out, `"keys": 3`) || !strings.Contains(out, `"neighbors": 2`) {
		t.Errorf("unexpected JSON report:\n%s", out)
	}
}

func TestReportUnknownEmbedding(t *testing.T) {
	configPath := fixtureRegistry(t)

	_, err := runCommand(t, "report", "missing", "--config", configPath)
	if err == nil {
		t.Fatal("expected an error for an unregistered embedding")
	}
}
