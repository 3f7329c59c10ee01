package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
)

// PGStore keeps entities and relationships in PostgreSQL with JSONB
// attribute bags. It is the store to use when the graph lives in a
// relational database rather than a dedicated graph engine.
type PGStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPGStore connects to PostgreSQL and ensures the schema exists.
func NewPGStore(ctx context.Context, databaseURL string, logger logging.Logger) (*PGStore, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConnectionString, err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool, logger: logger.With(logging.Component("pgstore"))}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

func (s *PGStore) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS entities (
			uid   TEXT PRIMARY KEY,
			name  TEXT NOT NULL DEFAULT '',
			type  TEXT NOT NULL DEFAULT '',
			attrs JSONB NOT NULL DEFAULT '{}'::jsonb
		);
		CREATE INDEX IF NOT EXISTS idx_entities_type ON entities (type);

		CREATE TABLE IF NOT EXISTS relationships (
			source_uid TEXT NOT NULL REFERENCES entities(uid),
			target_uid TEXT NOT NULL REFERENCES entities(uid),
			type       TEXT NOT NULL DEFAULT 'related_to',
			attrs      JSONB NOT NULL DEFAULT '{}'::jsonb,
			PRIMARY KEY (source_uid, target_uid, type)
		);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// FetchGraphData loads entities of the given type and the relationships
// between them.
func (s *PGStore) FetchGraphData(ctx context.Context, entityType string, limit int) ([]graph.NodeRecord, []graph.EdgeRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uid, name, type, attrs FROM entities WHERE type = $1 LIMIT $2`,
		entityType, limit,
	)
	if err != nil {
		return nil, nil, opError("fetch", "entities", err)
	}
	defer rows.Close()

	nodes := make([]graph.NodeRecord, 0)
	for rows.Next() {
		var (
			record    graph.NodeRecord
			attrsJSON []byte
		)
		if err := rows.Scan(&record.UID, &record.Name, &record.Type, &attrsJSON); err != nil {
			return nil, nil, opError("fetch", "entities", err)
		}
		if err := json.Unmarshal(attrsJSON, &record.Attrs); err != nil {
			return nil, nil, opError("fetch", "entities", err)
		}
		record.NodeID = record.UID
		nodes = append(nodes, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, opError("fetch", "entities", err)
	}

	edgeRows, err := s.pool.Query(ctx,
		`SELECT r.source_uid, r.target_uid, r.type
		 FROM relationships r
		 JOIN entities e ON e.uid = r.source_uid
		 WHERE e.type = $1`,
		entityType,
	)
	if err != nil {
		return nil, nil, opError("fetch", "relationships", err)
	}
	defer edgeRows.Close()

	edges := make([]graph.EdgeRecord, 0)
	for edgeRows.Next() {
		var record graph.EdgeRecord
		if err := edgeRows.Scan(&record.Source, &record.Target, &record.Type); err != nil {
			return nil, nil, opError("fetch", "relationships", err)
		}
		edges = append(edges, record)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, nil, opError("fetch", "relationships", err)
	}

	s.logger.Info("fetched graph data",
		logging.Int("nodes", len(nodes)),
		logging.Int("edges", len(edges)),
	)

	return nodes, edges, nil
}

// Persist applies the mutations inside one transaction. Attribute updates
// merge into the JSONB bag; new entities get generated UIDs, and member
// references become has_member relationships.
func (s *PGStore) Persist(ctx context.Context, mutations []Mutation) (map[string]string, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, opError("persist", "", err)
	}
	defer tx.Rollback(ctx)

	assigned := make(map[string]string)

	for _, m := range mutations {
		attrsJSON, err := json.Marshal(m.Attrs)
		if err != nil {
			return nil, opError("persist", "marshal attrs", err)
		}

		if m.UID != "" {
			_, err = tx.Exec(ctx,
				`UPDATE entities SET attrs = attrs || $2::jsonb WHERE uid = $1`,
				m.UID, attrsJSON,
			)
			if err != nil {
				return nil, opError("persist", "update "+m.UID, err)
			}
			continue
		}

		uid := uuid.NewString()
		_, err = tx.Exec(ctx,
			`INSERT INTO entities (uid, name, type, attrs) VALUES ($1, $2, $3, $4)`,
			uid, m.Name, m.Type, attrsJSON,
		)
		if err != nil {
			return nil, opError("persist", "insert "+m.Name, err)
		}
		for _, member := range m.Members {
			_, err = tx.Exec(ctx,
				`INSERT INTO relationships (source_uid, target_uid, type)
				 VALUES ($1, $2, 'has_member')
				 ON CONFLICT DO NOTHING`,
				uid, member,
			)
			if err != nil {
				return nil, opError("persist", "member "+member, err)
			}
		}
		assigned[m.Name] = uid
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, opError("persist", "commit", err)
	}

	return assigned, nil
}

// Ping checks database connectivity.
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
