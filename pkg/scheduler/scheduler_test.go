package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dd0wney/cluso-graph-analytics/pkg/pipeline"
)

func countingJob(name string, interval time.Duration, count *atomic.Int64, err error) Job {
	return Job{
		Name:     name,
		Interval: interval,
		Run: func(ctx context.Context) (*pipeline.RunReport, error) {
			count.Add(1)
			if err != nil {
				return nil, err
			}
			return &pipeline.RunReport{RunID: "r"}, nil
		},
	}
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	var count atomic.Int64
	s := New([]Job{countingJob("centrality", 20*time.Millisecond, &count, nil)}, nil, nil)

	s.Start(context.Background())
	time.Sleep(110 * time.Millisecond)
	s.Stop()

	got := count.Load()
	if got < 2 {
		t.Errorf("Expected at least 2 runs, got %d", got)
	}

	// No further runs after Stop
	time.Sleep(50 * time.Millisecond)
	if count.Load() != got {
		t.Errorf("Expected no runs after Stop, got %d more", count.Load()-got)
	}
}

func TestScheduler_FailuresDoNotStopJob(t *testing.T) {
	var count atomic.Int64
	s := New([]Job{countingJob("community", 20*time.Millisecond, &count, errors.New("boom"))}, nil, nil)

	s.Start(context.Background())
	time.Sleep(110 * time.Millisecond)
	s.Stop()

	if count.Load() < 2 {
		t.Errorf("Expected failing job to keep firing, got %d runs", count.Load())
	}
}

func TestScheduler_ContextCancelStops(t *testing.T) {
	var count atomic.Int64
	s := New([]Job{countingJob("centrality", 20*time.Millisecond, &count, nil)}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	s.Stop()

	got := count.Load()
	time.Sleep(50 * time.Millisecond)
	if count.Load() != got {
		t.Error("Expected no runs after context cancel")
	}
}

func TestScheduler_SkipsZeroInterval(t *testing.T) {
	var count atomic.Int64
	s := New([]Job{countingJob("disabled", 0, &count, nil)}, nil, nil)

	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if count.Load() != 0 {
		t.Errorf("Expected zero-interval job skipped, got %d runs", count.Load())
	}
}

func TestScheduler_StartIsIdempotent(t *testing.T) {
	var count atomic.Int64
	s := New([]Job{countingJob("centrality", 20*time.Millisecond, &count, nil)}, nil, nil)

	s.Start(context.Background())
	s.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	// A doubled Start would roughly double the count
	if count.Load() > 4 {
		t.Errorf("Expected single ticker, got %d runs", count.Load())
	}
}
