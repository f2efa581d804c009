// Package service runs one star chart build: load the goal table, partition
// it into galaxies, clusters and solar systems, and write the chart.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/starchart/internal/config"
	"github.com/okian/starchart/internal/density"
	"github.com/okian/starchart/internal/domain/fault"
	"github.com/okian/starchart/internal/domain/model"
	"github.com/okian/starchart/internal/embedding"
	"github.com/okian/starchart/internal/hierarchy"
	"github.com/okian/starchart/internal/ingest"
	"github.com/okian/starchart/internal/namegroup"
	"github.com/okian/starchart/internal/neighbors"
	"github.com/okian/starchart/internal/rounds"
	"github.com/okian/starchart/pkg/logger"
	"github.com/okian/starchart/pkg/metrics"
)

// Stage names used in logs and the stage duration metric.
const (
	StageValidate  = "validate"
	StageIngest    = "ingest"
	StagePartition = "partition"
	StageAssemble  = "assemble"
	StageWrite     = "write"
)

// Partitioner assigns galaxy, cluster and solar system labels to goals.
type Partitioner interface {
	Partition(ctx context.Context, goals []model.Goal) (hierarchy.Labels, error)
}

// Report summarizes a finished run.
type Report struct {
	RunID        string
	OutputPath   string
	Ingest       ingest.Stats
	Rows         int
	Galaxies     int
	Clusters     int
	SolarSystems int
	Elapsed      time.Duration
}

// Service wires the pipeline stages together.
type Service struct {
	cfg         *config.Config
	runID       string
	partitioner Partitioner
	logger      logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the run configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithRunID sets the identifier attached to every log line of the run.
func WithRunID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithPartitioner replaces the partitioner built from the configuration.
func WithPartitioner(p Partitioner) Option {
	return func(s *Service) {
		if p != nil {
			s.partitioner = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(lg logger.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// New constructs a Service. Without WithConfig the defaults from
// config.New are used.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg == nil {
		s.cfg = config.New()
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.With(logger.String("run_id", s.runID))
	return s
}

// RunID returns the identifier of this service's run.
func (s *Service) RunID() string { return s.runID }

// Run executes the pipeline once. Validation, ingest and write failures
// carry a fault kind; partition and assemble failures keep their cause with
// the stage name prefixed.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	rep := &Report{RunID: s.runID, OutputPath: s.cfg.OutputPath}

	s.logger.Info(ctx, "star chart run started",
		logger.String("input", s.cfg.InputPath),
		logger.String("output", s.cfg.OutputPath),
		logger.String("min_date", s.cfg.MinDate),
	)

	var minDate time.Time
	err := s.stage(ctx, StageValidate, func() error {
		if err := s.cfg.Validate(); err != nil {
			return fault.Config("config", err)
		}
		var err error
		minDate, err = s.cfg.MinDateTime()
		return err
	})
	if err != nil {
		return nil, err
	}

	var goals []model.Goal
	err = s.stage(ctx, StageIngest, func() error {
		loader := ingest.NewLoader(ingest.WithMinDate(minDate), ingest.WithLogger(s.logger.Named("ingest")))
		var err error
		goals, rep.Ingest, err = loader.LoadFile(ctx, s.cfg.InputPath)
		metrics.RecordRowsIngested(rep.Ingest.Read)
		for reason, n := range rep.Ingest.Dropped {
			metrics.RecordRowsDropped(reason, n)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	rep.Rows = len(goals)

	var labels hierarchy.Labels
	err = s.stage(ctx, StagePartition, func() error {
		p, err := s.buildPartitioner()
		if err != nil {
			return err
		}
		labels, err = p.Partition(ctx, goals)
		return err
	})
	if err != nil {
		return nil, err
	}

	var assignments []model.Assignment
	err = s.stage(ctx, StageAssemble, func() error {
		var err error
		assignments, err = hierarchy.Assemble(labels)
		return err
	})
	if err != nil {
		return nil, err
	}
	rep.Galaxies, rep.Clusters, rep.SolarSystems = distinct(assignments)

	err = s.stage(ctx, StageWrite, func() error {
		if err := hierarchy.WriteFile(s.cfg.OutputPath, goals, assignments); err != nil {
			return err
		}
		metrics.RecordRowsWritten(len(assignments))
		return nil
	})
	if err != nil {
		return nil, err
	}

	rep.Elapsed = time.Since(start)
	s.logger.Info(ctx, "star chart written",
		logger.String("output", rep.OutputPath),
		logger.Int("rows", rep.Rows),
		logger.Int("galaxies", rep.Galaxies),
		logger.Int("clusters", rep.Clusters),
		logger.Int("solar_systems", rep.SolarSystems),
		logger.Duration("elapsed", rep.Elapsed),
	)
	s.logMetrics(ctx)
	return rep, nil
}

// stage times fn and records its duration whether or not it fails.
func (s *Service) stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.RecordStageDuration(name, float64(elapsed.Microseconds())/1000)
	if err != nil {
		s.logger.Error(ctx, "stage failed",
			logger.String("stage", name),
			logger.String("kind", fault.KindOf(err)),
			logger.Error(err),
		)
		return fmt.Errorf("%s: %w", name, err)
	}
	s.logger.Debug(ctx, "stage finished",
		logger.String("stage", name),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}

// buildPartitioner returns the injected partitioner or assembles the
// default rounds from the configuration.
func (s *Service) buildPartitioner() (Partitioner, error) {
	if s.partitioner != nil {
		return s.partitioner, nil
	}
	cfg := s.cfg
	lg := s.logger
	galaxyCols, err := config.Columns("round1_features", cfg.Round1Features)
	if err != nil {
		return nil, fault.Config("round1_features", err)
	}
	clusterCols, err := config.Columns("round2_features", cfg.Round2Features)
	if err != nil {
		return nil, fault.Config("round2_features", err)
	}
	searcher := neighbors.NewSearcher(neighbors.WithWorkers(cfg.NeighborWorkers))

	return rounds.NewOrchestrator(
		rounds.WithLogger(lg.Named("rounds")),
		rounds.WithReducer(embedding.NewReducer(
			embedding.WithDim(cfg.EmbeddingDim),
			embedding.WithNeighbors(cfg.EmbeddingNeighbors),
			embedding.WithMinDist(cfg.EmbeddingMinDist),
			embedding.WithSeed(cfg.EmbeddingSeed),
			embedding.WithEpochs(cfg.EmbeddingEpochs),
			embedding.WithNegativeRate(cfg.EmbeddingNegativeRate),
			embedding.WithSearcher(searcher),
			embedding.WithLogger(lg.Named("embedding")),
		)),
		rounds.WithClustererFactory(func(minClusterSize int) rounds.Clusterer {
			return density.NewClusterer(
				density.WithMinClusterSize(minClusterSize),
				density.WithSearcher(searcher),
				density.WithLogger(lg.Named("density")),
			)
		}),
		rounds.WithNameGrouper(namegroup.NewAgglomerator(
			namegroup.WithThreshold(cfg.Round3SimilarityThreshold),
			namegroup.WithLogger(lg.Named("namegroup")),
		)),
		rounds.WithGalaxyColumns(galaxyCols),
		rounds.WithGalaxyMinClusterSize(cfg.Round1MinClusterSize),
		rounds.WithClusterColumns(clusterCols),
		rounds.WithClusterMinClusterSize(cfg.Round2MinClusterSize),
		rounds.WithSmallGalaxyThreshold(cfg.Round2SmallGalaxyThreshold),
		rounds.WithNameField(cfg.Round3NameField),
		rounds.WithNameWorkers(cfg.NameWorkers),
	), nil
}

func (s *Service) logMetrics(ctx context.Context) {
	samples, err := metrics.Snapshot(metrics.GetRegistry())
	if err != nil {
		s.logger.Warn(ctx, "metrics snapshot failed", logger.Error(err))
		return
	}
	fields := make([]logger.Field, len(samples))
	for i, smp := range samples {
		fields[i] = logger.Float64(smp.Name, smp.Value)
	}
	s.logger.Debug(ctx, "run metrics", fields...)
}

func distinct(assignments []model.Assignment) (galaxies, clusters, systems int) {
	g := map[int]struct{}{}
	c := map[int]struct{}{}
	ss := map[int]struct{}{}
	for i := range assignments {
		g[assignments[i].Galaxy] = struct{}{}
		c[assignments[i].Cluster] = struct{}{}
		ss[assignments[i].SolarSystem] = struct{}{}
	}
	return len(g), len(c), len(ss)
}
