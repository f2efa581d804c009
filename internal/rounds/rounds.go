// Package rounds drives the three partitioning rounds: galaxies from shot
// context, clusters from game state inside each galaxy, and solar systems
// from name similarity inside each cluster.
package rounds

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/starchart/internal/adapters/mq/queue"
	"github.com/okian/starchart/internal/adapters/mq/worker"
	"github.com/okian/starchart/internal/density"
	"github.com/okian/starchart/internal/domain/fault"
	"github.com/okian/starchart/internal/domain/model"
	"github.com/okian/starchart/internal/embedding"
	"github.com/okian/starchart/internal/features"
	"github.com/okian/starchart/internal/hierarchy"
	"github.com/okian/starchart/internal/namegroup"
	"github.com/okian/starchart/pkg/logger"
	"github.com/okian/starchart/pkg/metrics"
)

// Round names used in logs and metric labels.
const (
	RoundGalaxies     = "galaxies"
	RoundClusters     = "clusters"
	RoundSolarSystems = "solar_systems"
)

// Defaults for the round contracts.
const (
	DefaultGalaxyMinClusterSize  = 100
	DefaultClusterMinClusterSize = 30
	DefaultSmallGalaxyThreshold  = 50
	DefaultNameField             = "goalie_name"
)

// Reducer embeds a standardized feature matrix.
type Reducer interface {
	FitTransform(ctx context.Context, data mat.Matrix) (*mat.Dense, error)
}

// Clusterer labels embedded rows.
type Clusterer interface {
	Cluster(ctx context.Context, data mat.Matrix) (*density.Result, error)
}

// ClustererFactory builds a Clusterer for a minimum cluster size.
type ClustererFactory func(minClusterSize int) Clusterer

// NameGrouper groups the distinct names of one cluster. Clusters are
// grouped concurrently, so implementations must be safe for concurrent use.
type NameGrouper interface {
	Group(ctx context.Context, names []string) (*namegroup.Result, error)
}

// Round describes the contract of one density round.
type Round struct {
	Name           string
	Columns        []features.Column
	MinClusterSize int
}

// Orchestrator runs the rounds over a goal table.
type Orchestrator struct {
	galaxies     Round
	clusters     Round
	smallGalaxy  int
	nameField    string
	reducer      Reducer
	newClusterer ClustererFactory
	names        NameGrouper
	nameWorkers  int
	logger       logger.Logger
}

// NewOrchestrator creates an orchestrator with the default round contracts.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		galaxies: Round{
			Name:           RoundGalaxies,
			Columns:        []features.Column{features.ShotZone, features.ShotType, features.Situation},
			MinClusterSize: DefaultGalaxyMinClusterSize,
		},
		clusters: Round{
			Name:           RoundClusters,
			Columns:        []features.Column{features.GameTime, features.TeamScore, features.OpponentScore},
			MinClusterSize: DefaultClusterMinClusterSize,
		},
		smallGalaxy: DefaultSmallGalaxyThreshold,
		nameField:   DefaultNameField,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("rounds")
	}
	if o.reducer == nil {
		o.reducer = embedding.NewReducer(embedding.WithLogger(o.logger))
	}
	if o.newClusterer == nil {
		lg := o.logger
		o.newClusterer = func(minClusterSize int) Clusterer {
			return density.NewClusterer(density.WithMinClusterSize(minClusterSize), density.WithLogger(lg))
		}
	}
	if o.names == nil {
		o.names = namegroup.NewAgglomerator(namegroup.WithLogger(o.logger))
	}
	return o
}

// minter hands out ids for one level.
type minter struct{ next int }

func (m *minter) mint() int {
	id := m.next
	m.next++
	return id
}

// Partition assigns galaxy, cluster and solar system ids to every goal.
// Galaxies keep the density labels; cluster and solar system ids are minted
// globally, parents in ascending id order and children in ascending label
// order within a parent.
func (o *Orchestrator) Partition(ctx context.Context, goals []model.Goal) (hierarchy.Labels, error) {
	n := len(goals)
	out := hierarchy.Labels{
		Galaxy:      make([]int, n),
		Cluster:     make([]int, n),
		SolarSystem: make([]int, n),
	}
	if n == 0 {
		return out, nil
	}

	o.logger.Info(ctx, "partition started",
		logger.Int("rows", n),
		logger.String("galaxies", o.galaxies.Describe()),
		logger.String("clusters", o.clusters.Describe()),
		logger.String("name_field", o.nameField),
	)

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	galaxy, err := o.densityRound(ctx, goals, all, o.galaxies, "all")
	if err != nil {
		return out, err
	}
	copy(out.Galaxy, galaxy)
	galaxies := groupRows(out.Galaxy, all)
	metrics.UpdateGroupsFormed(RoundGalaxies, len(galaxies))

	var clusterIDs minter
	for _, g := range galaxies {
		if len(g.rows) < o.smallGalaxy {
			id := clusterIDs.mint()
			for _, r := range g.rows {
				out.Cluster[r] = id
			}
			continue
		}
		local, err := o.densityRound(ctx, goals, g.rows, o.clusters, hierarchy.GalaxyName(g.label))
		if err != nil {
			return out, err
		}
		byLocal := make([]int, n)
		for i, r := range g.rows {
			byLocal[r] = local[i]
		}
		for _, c := range groupRows(byLocal, g.rows) {
			id := clusterIDs.mint()
			for _, r := range c.rows {
				out.Cluster[r] = id
			}
		}
	}
	metrics.UpdateGroupsFormed(RoundClusters, clusterIDs.next)

	clusters := groupRows(out.Cluster, all)
	jobs := make([]queue.Job, len(clusters))
	for i, c := range clusters {
		names := make([]string, len(c.rows))
		for j, r := range c.rows {
			names[j] = goals[r].Name(o.nameField)
		}
		jobs[i] = queue.Job{Seq: i, Names: names}
	}
	pool := worker.NewPool(o.nameWorkers,
		queue.NewInMemoryQueue(queue.WithCapacity(len(jobs))),
		o.names,
		worker.WithName(RoundSolarSystems),
		worker.WithLogger(o.logger),
	)
	results, err := pool.Process(ctx, jobs)
	if err != nil {
		return out, err
	}

	var systemIDs minter
	for i, c := range clusters {
		res := results[i].Groups
		ids := make([]int, len(res.Groups))
		for g := range res.Groups {
			ids[g] = systemIDs.mint()
		}
		for j, r := range c.rows {
			name := jobs[i].Names[j]
			g, ok := res.GroupOf(name)
			if !ok {
				return out, fmt.Errorf("%s: %s: name %q was not grouped", RoundSolarSystems, hierarchy.ClusterName(c.label), name)
			}
			out.SolarSystem[r] = ids[g]
		}
	}
	metrics.UpdateGroupsFormed(RoundSolarSystems, systemIDs.next)

	o.logger.Info(ctx, "partition complete",
		logger.Int("rows", n),
		logger.Int("galaxies", len(galaxies)),
		logger.Int("clusters", clusterIDs.next),
		logger.Int("solar_systems", systemIDs.next),
	)
	return out, nil
}

// densityRound encodes, embeds and clusters goals[rows], returning one
// folded label per entry of rows.
func (o *Orchestrator) densityRound(ctx context.Context, goals []model.Goal, rows []int, round Round, scope string) ([]int, error) {
	data := features.Encode(goals, rows, round.Columns)
	features.Standardize(data)

	emb, err := o.reducer.FitTransform(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", round.Name, scope, err)
	}
	res, err := o.newClusterer(round.MinClusterSize).Cluster(ctx, emb)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", round.Name, scope, err)
	}

	metrics.RecordNoiseRows(round.Name, res.Noise)
	if res.Clusters <= 1 {
		metrics.RecordDegenerateRound(round.Name)
		o.logger.Warn(ctx, "round collapsed to a single bucket",
			logger.Error(fault.Degenerate(round.Name+" "+scope)),
			logger.Int("rows", len(rows)),
			logger.Int("clusters", res.Clusters),
			logger.Int("noise", res.Noise),
			logger.Int("min_cluster_size", round.MinClusterSize),
		)
	} else {
		o.logger.Debug(ctx, "round clustered",
			logger.String("round", round.Name),
			logger.String("scope", scope),
			logger.Int("rows", len(rows)),
			logger.Int("clusters", res.Clusters),
			logger.Int("noise", res.Noise),
		)
	}
	return res.Folded(), nil
}

type group struct {
	label int
	rows  []int
}

// groupRows buckets rows by labels[row], ascending by label; rows keep
// their order inside each bucket.
func groupRows(labels []int, rows []int) []group {
	byLabel := map[int][]int{}
	for _, r := range rows {
		byLabel[labels[r]] = append(byLabel[labels[r]], r)
	}
	keys := make([]int, 0, len(byLabel))
	for k := range byLabel {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]group, len(keys))
	for i, k := range keys {
		out[i] = group{label: k, rows: byLabel[k]}
	}
	return out
}

// Describe summarizes a round for logs.
func (r Round) Describe() string {
	cols := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		cols[i] = c.Name
	}
	return fmt.Sprintf("%s%v min=%d", r.Name, cols, r.MinClusterSize)
}
