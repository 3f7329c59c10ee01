// Package events publishes run-completion notifications over an NNG pub
// socket. Downstream consumers subscribe to react to fresh analytics without
// polling the store.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
	"github.com/dd0wney/cluso-graph-analytics/pkg/pipeline"
)

// TopicRunCompleted prefixes every run-completion message so subscribers can
// filter on it.
const TopicRunCompleted = "run.completed"

// RunCompletedEvent is the wire payload. It carries the run summary, not the
// per-node results: consumers that need scores read them from the store.
type RunCompletedEvent struct {
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	GraphNodes int       `json:"graph_nodes"`
	GraphEdges int       `json:"graph_edges"`
	Algorithms []string  `json:"algorithms"`
	Failures   []string  `json:"failures,omitempty"`
}

// Publisher owns a pub socket bound to a single address.
type Publisher struct {
	sock   mangos.Socket
	logger logging.Logger

	mu     sync.Mutex
	closed bool
}

// NewPublisher opens a pub socket listening on url (for example
// "tcp://0.0.0.0:5555"). A nil logger disables logging.
func NewPublisher(url string, logger logging.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("creating pub socket: %w", err)
	}
	if err := sock.Listen(url); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listening on %s: %w", url, err)
	}

	logger.Info("event publisher listening", logging.String("url", url))
	return &Publisher{sock: sock, logger: logger}, nil
}

// PublishRunCompleted sends a run summary to all subscribers. Messages are
// fire-and-forget: a slow subscriber drops messages rather than blocking the
// pipeline.
func (p *Publisher) PublishRunCompleted(report *pipeline.RunReport) error {
	event := RunCompletedEvent{
		RunID:      report.RunID,
		Kind:       string(report.Kind),
		StartedAt:  report.StartedAt,
		DurationMS: report.Duration.Milliseconds(),
		GraphNodes: report.GraphNodes,
		GraphEdges: report.GraphEdges,
	}
	for name, outcome := range report.Outcomes {
		event.Algorithms = append(event.Algorithms, name)
		if outcome.Metadata.Failed() {
			event.Failures = append(event.Failures, name)
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding run event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	msg := append([]byte(TopicRunCompleted+" "), payload...)
	if err := p.sock.Send(msg); err != nil {
		return fmt.Errorf("publishing run event: %w", err)
	}

	p.logger.Debug("published run event",
		logging.RunID(report.RunID),
		logging.Int("bytes", len(msg)),
	)
	return nil
}

// Close shuts down the socket. Publish calls after Close fail.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.sock.Close()
}
