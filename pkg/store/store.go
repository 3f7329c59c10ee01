// Package store connects the analytics pipeline to the graph database that
// owns the entities being analyzed. Two backends are provided: a Dgraph-style
// HTTP client and a PostgreSQL store. The pipeline only ever sees the Store
// interface.
package store

import (
	"context"

	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
)

// Mutation is a single write against the store. A populated UID updates
// attributes on an existing entity; an empty UID creates a new entity of the
// given Type. Members carries UID references for synthesized community
// entities.
type Mutation struct {
	UID     string
	Type    string
	Name    string
	Attrs   map[string]any
	Members []string
}

// Store is the upstream graph database consumed by the pipeline.
type Store interface {
	// FetchGraphData returns raw node and edge records for entities of the
	// given type, up to limit entities.
	FetchGraphData(ctx context.Context, entityType string, limit int) ([]graph.NodeRecord, []graph.EdgeRecord, error)

	// Persist submits mutations in one round trip and returns the UIDs
	// assigned to newly created entities, keyed by mutation name.
	Persist(ctx context.Context, mutations []Mutation) (map[string]string, error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close() error
}
