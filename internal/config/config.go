// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Flat koanf keys so env vars map one-to-one (STARCHART_ROUND1_MIN_CLUSTER_SIZE -> round1_min_cluster_size).
// - New() builds a Config with the frozen defaults; Load layers file and env on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/starchart/internal/features"
)

// Name fields supported by the name-similarity round.
const (
	NameFieldGoalie = "goalie_name"
	NameFieldPlayer = "player_name"
)

// DateLayout is the layout of min_date and game_date values.
const DateLayout = "2006-01-02"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// InputPath is the goal table to read.
	InputPath string `koanf:"input_path"`

	// OutputPath is where the assignment table is written.
	OutputPath string `koanf:"output_path"`

	// MinDate drops rows played before it (inclusive lower bound).
	MinDate string `koanf:"min_date"`

	// Embedding reducer parameters.
	EmbeddingDim          int     `koanf:"embedding_dim"`
	EmbeddingNeighbors    int     `koanf:"embedding_neighbors"`
	EmbeddingMinDist      float64 `koanf:"embedding_min_dist"`
	EmbeddingSeed         int64   `koanf:"embedding_seed"`
	EmbeddingEpochs       int     `koanf:"embedding_epochs"` // 0 picks by dataset size
	EmbeddingNegativeRate int     `koanf:"embedding_negative_rate"`

	// Round 1: galaxies over the whole dataset.
	Round1MinClusterSize int      `koanf:"round1_min_cluster_size"`
	Round1Features       []string `koanf:"round1_features"`

	// Round 2: clusters within each galaxy.
	Round2MinClusterSize       int      `koanf:"round2_min_cluster_size"`
	Round2SmallGalaxyThreshold int      `koanf:"round2_small_galaxy_threshold"`
	Round2Features             []string `koanf:"round2_features"`

	// Round 3: solar systems by name similarity within each cluster.
	Round3SimilarityThreshold float64 `koanf:"round3_similarity_threshold"`
	Round3NameField           string  `koanf:"round3_name_field"`

	// NeighborWorkers bounds the goroutines used by nearest-neighbor search.
	NeighborWorkers int `koanf:"neighbor_workers"`

	// NameWorkers bounds how many clusters are name-grouped at once.
	NameWorkers int `koanf:"name_workers"`
}

// New creates a Config populated with the default contract values.
func New() *Config {
	return &Config{
		LogLevel:                   "info",
		InputPath:                  "goals.csv",
		OutputPath:                 "star_chart.csv",
		MinDate:                    "2023-10-09",
		EmbeddingDim:               15,
		EmbeddingNeighbors:         15,
		EmbeddingMinDist:           0.1,
		EmbeddingSeed:              42,
		EmbeddingEpochs:            0,
		EmbeddingNegativeRate:      5,
		Round1MinClusterSize:       100,
		Round1Features:             []string{"shot_zone", "shot_type", "situation"},
		Round2MinClusterSize:       30,
		Round2SmallGalaxyThreshold: 50,
		Round2Features:             []string{"game_time", "team_score", "opponent_score"},
		Round3SimilarityThreshold:  0.4,
		Round3NameField:            NameFieldGoalie,
		NeighborWorkers:            runtime.NumCPU(),
		NameWorkers:                runtime.NumCPU(),
	}
}

// MinDateTime parses MinDate.
func (c *Config) MinDateTime() (time.Time, error) {
	t, err := time.Parse(DateLayout, c.MinDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: min_date %q: %w", ErrInvalidConfig, c.MinDate, err)
	}
	return t, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := c.MinDateTime(); err != nil {
		return err
	}
	switch {
	case c.InputPath == "":
		return fmt.Errorf("%w: input_path must not be empty", ErrInvalidConfig)
	case c.OutputPath == "":
		return fmt.Errorf("%w: output_path must not be empty", ErrInvalidConfig)
	case c.EmbeddingDim <= 0:
		return fmt.Errorf("%w: embedding_dim must be positive", ErrInvalidConfig)
	case c.EmbeddingNeighbors < 2:
		return fmt.Errorf("%w: embedding_neighbors must be at least 2", ErrInvalidConfig)
	case c.EmbeddingMinDist < 0:
		return fmt.Errorf("%w: embedding_min_dist must not be negative", ErrInvalidConfig)
	case c.EmbeddingEpochs < 0:
		return fmt.Errorf("%w: embedding_epochs must not be negative", ErrInvalidConfig)
	case c.EmbeddingNegativeRate < 0:
		return fmt.Errorf("%w: embedding_negative_rate must not be negative", ErrInvalidConfig)
	case c.Round1MinClusterSize < 2:
		return fmt.Errorf("%w: round1_min_cluster_size must be at least 2", ErrInvalidConfig)
	case c.Round2MinClusterSize < 2:
		return fmt.Errorf("%w: round2_min_cluster_size must be at least 2", ErrInvalidConfig)
	case c.Round2SmallGalaxyThreshold < 0:
		return fmt.Errorf("%w: round2_small_galaxy_threshold must not be negative", ErrInvalidConfig)
	case c.Round3SimilarityThreshold < 0 || c.Round3SimilarityThreshold > 1:
		return fmt.Errorf("%w: round3_similarity_threshold must be within [0,1]", ErrInvalidConfig)
	case c.Round3NameField != NameFieldGoalie && c.Round3NameField != NameFieldPlayer:
		return fmt.Errorf("%w: round3_name_field %q is not supported", ErrInvalidConfig, c.Round3NameField)
	case c.NeighborWorkers <= 0:
		return fmt.Errorf("%w: neighbor_workers must be positive", ErrInvalidConfig)
	case c.NameWorkers <= 0:
		return fmt.Errorf("%w: name_workers must be positive", ErrInvalidConfig)
	}
	if _, err := Columns("round1_features", c.Round1Features); err != nil {
		return err
	}
	if _, err := Columns("round2_features", c.Round2Features); err != nil {
		return err
	}
	return nil
}

// Columns resolves the feature names configured under key.
func Columns(key string, names []string) ([]features.Column, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, key)
	}
	cols := make([]features.Column, len(names))
	for i, name := range names {
		c, err := features.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
		}
		cols[i] = c
	}
	return cols, nil
}
