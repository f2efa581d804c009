// Package hierarchy turns per-row round labels into the four-level star
// chart assignment and writes the output table.
package hierarchy

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/okian/starchart/internal/domain/model"
)

// Sentinel errors for inconsistent label vectors.
var (
	ErrLengthMismatch = errors.New("label vectors differ in length")
	ErrNotATree       = errors.New("labels do not form a tree")
)

// Level name prefixes. The solar system prefix contains a space.
const (
	RootName          = "root"
	GalaxyPrefix      = "galaxy_"
	ClusterPrefix     = "cluster_"
	SolarSystemPrefix = "solar system_"
	StarPrefix        = "star_"
)

// Labels holds one id per row for each clustered level.
type Labels struct {
	Galaxy      []int
	Cluster     []int
	SolarSystem []int
}

// GalaxyName formats a galaxy id.
func GalaxyName(id int) string { return GalaxyPrefix + strconv.Itoa(id) }

// ClusterName formats a cluster id.
func ClusterName(id int) string { return ClusterPrefix + strconv.Itoa(id) }

// SolarSystemName formats a solar system id.
func SolarSystemName(id int) string { return SolarSystemPrefix + strconv.Itoa(id) }

// StarName formats a star id local to its solar system.
func StarName(id int) string { return StarPrefix + strconv.Itoa(id) }

// Path joins the four level names under the root.
func Path(level0, level1, level2, level3 string) string {
	return RootName + "." + level0 + "." + level1 + "." + level2 + "." + level3
}

// Assemble numbers stars within each solar system in row order and builds
// one Assignment per row. Row i gets GoalIndex i.
func Assemble(l Labels) ([]model.Assignment, error) {
	n := len(l.Galaxy)
	if len(l.Cluster) != n || len(l.SolarSystem) != n {
		return nil, fmt.Errorf("%w: galaxy=%d cluster=%d solar_system=%d",
			ErrLengthMismatch, n, len(l.Cluster), len(l.SolarSystem))
	}

	clusterParent := map[int]int{}
	systemParent := map[int]int{}
	size := map[int]int{}
	for i := 0; i < n; i++ {
		if g, ok := clusterParent[l.Cluster[i]]; ok && g != l.Galaxy[i] {
			return nil, fmt.Errorf("%w: cluster %d spans galaxies %d and %d", ErrNotATree, l.Cluster[i], g, l.Galaxy[i])
		}
		clusterParent[l.Cluster[i]] = l.Galaxy[i]
		if c, ok := systemParent[l.SolarSystem[i]]; ok && c != l.Cluster[i] {
			return nil, fmt.Errorf("%w: solar system %d spans clusters %d and %d", ErrNotATree, l.SolarSystem[i], c, l.Cluster[i])
		}
		systemParent[l.SolarSystem[i]] = l.Cluster[i]
		size[l.SolarSystem[i]]++
	}

	next := map[int]int{}
	out := make([]model.Assignment, n)
	for i := 0; i < n; i++ {
		ss := l.SolarSystem[i]
		star := next[ss]
		next[ss]++

		a := model.Assignment{
			GoalIndex:   i,
			Galaxy:      l.Galaxy[i],
			Cluster:     l.Cluster[i],
			SolarSystem: ss,
			Star:        star,
			ClusterSize: size[ss],
			Level0:      GalaxyName(l.Galaxy[i]),
			Level1:      ClusterName(l.Cluster[i]),
			Level2:      SolarSystemName(ss),
			Level3:      StarName(star),
		}
		a.HierarchyPath = Path(a.Level0, a.Level1, a.Level2, a.Level3)
		out[i] = a
	}
	return out, nil
}
