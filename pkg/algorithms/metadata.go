package algorithms

import "time"

// Metadata describes one algorithm run. Optional fields hold their zero
// value (or nil) unless the corresponding condition occurred, and are only
// serialized when set.
type Metadata struct {
	Algorithm       string    `json:"algorithm"`
	DurationSeconds float64   `json:"duration_seconds"`
	ResultCount     int       `json:"result_count"`
	GraphNodes      int       `json:"graph_nodes"`
	GraphEdges      int       `json:"graph_edges"`
	Timestamp       time.Time `json:"timestamp"`
	RunID           string    `json:"run_id,omitempty"`

	// EmptyGraph marks a run against a zero-node graph. This is an expected
	// outcome, not a failure.
	EmptyGraph bool `json:"empty_graph,omitempty"`

	// Error holds the compute failure message, when the computation failed.
	Error string `json:"error,omitempty"`

	// WrittenToStore reports scalar write-back success. Nil when write-back
	// was not requested.
	WrittenToStore *bool `json:"written_to_store,omitempty"`

	// Community entity synthesis outcome, set only when requested.
	CommunitiesCreated     *int           `json:"communities_created,omitempty"`
	CommunityUIDs          map[int]string `json:"community_uids,omitempty"`
	CommunityCreationError string         `json:"community_creation_error,omitempty"`
}

// Failed reports whether the computation itself failed. Write-back and
// community-synthesis failures do not count: the in-memory result stands.
func (m Metadata) Failed() bool {
	return m.Error != ""
}

// Attrs flattens the core run fields into attribute values for write-back.
// Only fields that describe the computation are included; write-status
// fields are set after persistence and never stored.
func (m Metadata) Attrs() map[string]any {
	return map[string]any{
		"duration_seconds": m.DurationSeconds,
		"result_count":     m.ResultCount,
		"graph_nodes":      m.GraphNodes,
		"graph_edges":      m.GraphEdges,
		"timestamp":        m.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Statistics is the single-slot record of a Runner's most recent invocation.
type Statistics struct {
	Name        string        `json:"name"`
	LastRunTime time.Time     `json:"last_run_time"`
	LastRunFor  time.Duration `json:"last_run_duration"`
	LastCount   int           `json:"last_result_count"`
}
