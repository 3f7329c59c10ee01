package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-graph-analytics/pkg/algorithms"
	"github.com/dd0wney/cluso-graph-analytics/pkg/api"
	"github.com/dd0wney/cluso-graph-analytics/pkg/config"
	"github.com/dd0wney/cluso-graph-analytics/pkg/events"
	"github.com/dd0wney/cluso-graph-analytics/pkg/export"
	"github.com/dd0wney/cluso-graph-analytics/pkg/graph"
	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
	"github.com/dd0wney/cluso-graph-analytics/pkg/metrics"
	"github.com/dd0wney/cluso-graph-analytics/pkg/pipeline"
	"github.com/dd0wney/cluso-graph-analytics/pkg/scheduler"
	"github.com/dd0wney/cluso-graph-analytics/pkg/store"
	"github.com/dd0wney/cluso-graph-analytics/pkg/writer"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: graph-analytics [flags] <command>

Commands:
  serve        Start the HTTP API (and scheduler when enabled)
  run          Run one pass: -kind centrality|community, or -algorithm <name>
  algorithms   List enabled algorithms
  schedule     Run the scheduler in the foreground

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	kind := flag.String("kind", "", "Algorithm family for the run command: centrality or community")
	algorithm := flag.String("algorithm", "", "Single algorithm name for the run command")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "graph-analytics: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr,
		logging.ParseLevel(cfg.Logging.Level),
		logging.ParseFormat(cfg.Logging.Format),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command, cfg, logger, *kind, *algorithm); err != nil {
		logger.Error("command failed", logging.String("command", command), logging.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, cfg *config.Config, logger logging.Logger, kind, algorithm string) error {
	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	registry := metrics.NewRegistry()
	p := buildPipeline(cfg, s, logger, registry)

	if url := cfg.Events.PublishURL; url != "" {
		publisher, err := events.NewPublisher(url, logger)
		if err != nil {
			return fmt.Errorf("starting event publisher: %w", err)
		}
		defer publisher.Close()
		p.SetPublisher(publisher)
	}
	if bucket := cfg.Export.Bucket; bucket != "" {
		archiver, err := export.New(ctx, bucket, cfg.Export.Prefix, cfg.Export.Region, logger)
		if err != nil {
			return fmt.Errorf("creating report archiver: %w", err)
		}
		p.SetArchiver(archiver)
	}

	switch command {
	case "serve":
		return serve(ctx, cfg, p, s, registry, logger)
	case "run":
		return runOnce(ctx, p, kind, algorithm)
	case "algorithms":
		return listAlgorithms(p)
	case "schedule":
		sched := newScheduler(cfg, p, logger, registry)
		sched.Start(ctx)
		<-ctx.Done()
		sched.Stop()
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "postgres":
		return store.NewPGStore(ctx, cfg.Store.ConnectionString, logger)
	default:
		return store.NewDgraphStore(cfg.Store.ConnectionString, 30*time.Second, logger)
	}
}

func buildPipeline(cfg *config.Config, s store.Store, logger logging.Logger, registry *metrics.Registry) *pipeline.Pipeline {
	centrality := algorithms.NewCentralityRegistry(cfg.CentralityToggles(), logger, registry)
	community := algorithms.NewCommunityRegistry(cfg.CommunityToggles(), logger, registry)

	var w algorithms.ResultWriter
	if cfg.WriteBack.Enabled {
		w = writer.New(s, logger,
			writer.WithBatchSize(cfg.WriteBack.BatchSize),
			writer.WithMetrics(registry),
		)
	}

	return pipeline.New(s, centrality, community, w, logger, registry, pipeline.Options{
		EntityType: cfg.Store.EntityType,
		FetchLimit: cfg.Store.FetchLimit,
		Build: graph.BuildOptions{
			Directed:         cfg.Graph.Directed,
			IncludeSelfLoops: cfg.Graph.IncludeSelfLoops,
			MinDegree:        cfg.Graph.MinDegree,
		},
		WriteBack:            cfg.WriteBack.Enabled,
		CreateCommunityNodes: cfg.WriteBack.CreateCommunityNodes,
	})
}

func newScheduler(cfg *config.Config, p *pipeline.Pipeline, logger logging.Logger, registry *metrics.Registry) *scheduler.Scheduler {
	return scheduler.New([]scheduler.Job{
		{Name: "centrality", Interval: cfg.Scheduler.CentralityInterval, Run: p.RunCentrality},
		{Name: "community", Interval: cfg.Scheduler.CommunityInterval, Run: p.RunCommunity},
	}, logger, registry)
}

func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, s store.Store, registry *metrics.Registry, logger logging.Logger) error {
	if cfg.Scheduler.Enabled {
		sched := newScheduler(cfg, p, logger, registry)
		sched.Start(ctx)
		defer sched.Stop()
	}

	server := api.NewServer(p, s, registry, logger, cfg.Server.Host, cfg.Server.Port)
	return server.Start(ctx)
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, kind, algorithm string) error {
	var report *pipeline.RunReport
	var err error

	switch {
	case algorithm != "":
		report, err = p.RunAlgorithm(ctx, algorithm)
	case kind == "centrality":
		report, err = p.RunCentrality(ctx)
	case kind == "community":
		report, err = p.RunCommunity(ctx)
	default:
		return fmt.Errorf("run requires -kind centrality|community or -algorithm <name>")
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func listAlgorithms(p *pipeline.Pipeline) error {
	centrality, community := p.Names()
	fmt.Println("centrality:")
	for _, name := range centrality {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("community:")
	for _, name := range community {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
