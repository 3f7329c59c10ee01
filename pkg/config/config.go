// Package config loads pipeline configuration from a YAML file with
// environment variable overrides. Validation runs at load time so a bad
// deployment fails on startup instead of mid-run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graph-analytics/pkg/algorithms"
)

var validate = validator.New()

// Config is the full service configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Graph     GraphConfig     `yaml:"graph"`
	Centrality CentralityConfig `yaml:"centrality"`
	Community CommunityConfig `yaml:"community"`
	WriteBack WriteBackConfig `yaml:"write_back"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Events    EventsConfig    `yaml:"events"`
	Export    ExportConfig    `yaml:"export"`
}

// StoreConfig selects and configures the backing graph database.
type StoreConfig struct {
	// Backend is "dgraph" or "postgres".
	Backend          string `yaml:"backend" validate:"required,oneof=dgraph postgres"`
	ConnectionString string `yaml:"connection_string" validate:"required"`
	EntityType       string `yaml:"entity_type" validate:"required"`
	FetchLimit       int    `yaml:"fetch_limit" validate:"min=1"`
}

// GraphConfig controls graph construction.
type GraphConfig struct {
	Directed         bool `yaml:"directed"`
	IncludeSelfLoops bool `yaml:"include_self_loops"`
	MinDegree        int  `yaml:"min_degree" validate:"min=0"`
}

// CentralityConfig toggles the centrality algorithms.
type CentralityConfig struct {
	PageRank    bool `yaml:"pagerank"`
	Betweenness bool `yaml:"betweenness"`
	Closeness   bool `yaml:"closeness"`
	Eigenvector bool `yaml:"eigenvector"`
}

// CommunityConfig toggles the community detection algorithms.
// greedy_modularity is always enabled and has no toggle.
type CommunityConfig struct {
	Louvain          bool `yaml:"louvain"`
	LabelPropagation bool `yaml:"label_propagation"`
	Leiden           bool `yaml:"leiden"`
}

// WriteBackConfig controls result persistence.
type WriteBackConfig struct {
	Enabled              bool `yaml:"enabled"`
	CreateCommunityNodes bool `yaml:"create_community_nodes"`
	BatchSize            int  `yaml:"batch_size" validate:"min=1"`
}

// SchedulerConfig controls the interval runner.
type SchedulerConfig struct {
	Enabled            bool          `yaml:"enabled"`
	CentralityInterval time.Duration `yaml:"centrality_interval"`
	CommunityInterval  time.Duration `yaml:"community_interval"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// EventsConfig controls the run-completion publisher. Empty URL disables it.
type EventsConfig struct {
	PublishURL string `yaml:"publish_url"`
}

// ExportConfig controls run report archival to S3. Empty bucket disables it.
type ExportConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:          "dgraph",
			ConnectionString: "dgraph://localhost:9080",
			EntityType:       "Entity",
			FetchLimit:       10000,
		},
		Centrality: CentralityConfig{
			PageRank:    true,
			Betweenness: true,
			Closeness:   true,
			Eigenvector: true,
		},
		Community: CommunityConfig{
			Louvain:          true,
			LabelPropagation: true,
			Leiden:           false,
		},
		WriteBack: WriteBackConfig{
			Enabled:              true,
			CreateCommunityNodes: true,
			BatchSize:            100,
		},
		Scheduler: SchedulerConfig{
			CentralityInterval: time.Hour,
			CommunityInterval:  6 * time.Hour,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from path, merges environment overrides on top
// and validates the result. An empty path loads defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv merges GRAPHALGO_* environment variables over the loaded values.
func applyEnv(cfg *Config) {
	envString("GRAPHALGO_STORE_BACKEND", &cfg.Store.Backend)
	envString("GRAPHALGO_CONNECTION_STRING", &cfg.Store.ConnectionString)
	envString("GRAPHALGO_ENTITY_TYPE", &cfg.Store.EntityType)
	envInt("GRAPHALGO_FETCH_LIMIT", &cfg.Store.FetchLimit)
	envBool("GRAPHALGO_WRITE_BACK", &cfg.WriteBack.Enabled)
	envInt("GRAPHALGO_BATCH_SIZE", &cfg.WriteBack.BatchSize)
	envString("GRAPHALGO_SERVER_HOST", &cfg.Server.Host)
	envInt("GRAPHALGO_SERVER_PORT", &cfg.Server.Port)
	envString("GRAPHALGO_LOG_LEVEL", &cfg.Logging.Level)
	envString("GRAPHALGO_LOG_FORMAT", &cfg.Logging.Format)
	envString("GRAPHALGO_EVENTS_URL", &cfg.Events.PublishURL)
	envString("GRAPHALGO_EXPORT_BUCKET", &cfg.Export.Bucket)

	envBool("GRAPHALGO_ALGO_PAGERANK", &cfg.Centrality.PageRank)
	envBool("GRAPHALGO_ALGO_BETWEENNESS", &cfg.Centrality.Betweenness)
	envBool("GRAPHALGO_ALGO_CLOSENESS", &cfg.Centrality.Closeness)
	envBool("GRAPHALGO_ALGO_EIGENVECTOR", &cfg.Centrality.Eigenvector)
	envBool("GRAPHALGO_ALGO_LOUVAIN", &cfg.Community.Louvain)
	envBool("GRAPHALGO_ALGO_LABEL_PROPAGATION", &cfg.Community.LabelPropagation)
	envBool("GRAPHALGO_ALGO_LEIDEN", &cfg.Community.Leiden)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// CentralityToggles converts the centrality section to registry toggles.
func (c *Config) CentralityToggles() algorithms.CentralityToggles {
	return algorithms.CentralityToggles{
		PageRank:    c.Centrality.PageRank,
		Betweenness: c.Centrality.Betweenness,
		Closeness:   c.Centrality.Closeness,
		Eigenvector: c.Centrality.Eigenvector,
	}
}

// CommunityToggles converts the community section to registry toggles.
func (c *Config) CommunityToggles() algorithms.CommunityToggles {
	return algorithms.CommunityToggles{
		Louvain:          c.Community.Louvain,
		LabelPropagation: c.Community.LabelPropagation,
		Leiden:           c.Community.Leiden,
	}
}
