package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Backend != "dgraph" {
		t.Errorf("Expected dgraph backend, got %q", cfg.Store.Backend)
	}
	if cfg.WriteBack.BatchSize != 100 {
		t.Errorf("Expected batch size 100, got %d", cfg.WriteBack.BatchSize)
	}
	if !cfg.Centrality.PageRank || cfg.Community.Leiden {
		t.Errorf("Unexpected default toggles: %+v %+v", cfg.Centrality, cfg.Community)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: postgres
  connection_string: postgres://localhost/graphs
  entity_type: Person
  fetch_limit: 500
write_back:
  enabled: false
  batch_size: 25
scheduler:
  enabled: true
  centrality_interval: 30m
community:
  louvain: false
  label_propagation: true
  leiden: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Backend != "postgres" || cfg.Store.EntityType != "Person" {
		t.Errorf("Expected file store settings, got %+v", cfg.Store)
	}
	if cfg.WriteBack.Enabled || cfg.WriteBack.BatchSize != 25 {
		t.Errorf("Expected file write-back settings, got %+v", cfg.WriteBack)
	}
	if cfg.Scheduler.CentralityInterval != 30*time.Minute {
		t.Errorf("Expected 30m interval, got %v", cfg.Scheduler.CentralityInterval)
	}
	if cfg.Community.Louvain || !cfg.Community.Leiden {
		t.Errorf("Expected file toggles, got %+v", cfg.Community)
	}
	// Untouched sections keep their defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: dgraph
  connection_string: dgraph://filehost:9080
  entity_type: Entity
  fetch_limit: 100
`)
	t.Setenv("GRAPHALGO_CONNECTION_STRING", "dgraph://envhost:9080")
	t.Setenv("GRAPHALGO_ALGO_PAGERANK", "false")
	t.Setenv("GRAPHALGO_BATCH_SIZE", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.ConnectionString != "dgraph://envhost:9080" {
		t.Errorf("Expected env connection string, got %q", cfg.Store.ConnectionString)
	}
	if cfg.Centrality.PageRank {
		t.Error("Expected pagerank disabled via env")
	}
	if cfg.WriteBack.BatchSize != 42 {
		t.Errorf("Expected env batch size, got %d", cfg.WriteBack.BatchSize)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad backend", "store:\n  backend: mongodb\n  connection_string: x\n  entity_type: Entity\n  fetch_limit: 10\n"},
		{"zero fetch limit", "store:\n  backend: dgraph\n  connection_string: x\n  entity_type: Entity\n  fetch_limit: 0\n"},
		{"bad log level", "logging:\n  level: verbose\n  format: json\n"},
		{"bad port", "server:\n  port: 99999\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestToggleConversion(t *testing.T) {
	cfg := Default()
	cfg.Centrality.Betweenness = false
	cfg.Community.Leiden = true

	ct := cfg.CentralityToggles()
	if ct.Betweenness || !ct.PageRank {
		t.Errorf("Unexpected centrality toggles: %+v", ct)
	}
	cm := cfg.CommunityToggles()
	if !cm.Leiden || !cm.Louvain {
		t.Errorf("Unexpected community toggles: %+v", cm)
	}
}
