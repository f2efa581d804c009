package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/starchart/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Round1MinClusterSize, convey.ShouldEqual, 100)
				convey.So(cfg.Round3NameField, convey.ShouldEqual, "goalie_name")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("STARCHART_INPUT_PATH", "/data/goals.csv")
			_ = os.Setenv("STARCHART_ROUND1_MIN_CLUSTER_SIZE", "50")
			_ = os.Setenv("STARCHART_ROUND3_SIMILARITY_THRESHOLD", "0.55")
			_ = os.Setenv("STARCHART_ROUND3_NAME_FIELD", "player_name")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.InputPath, convey.ShouldEqual, "/data/goals.csv")
				convey.So(cfg.Round1MinClusterSize, convey.ShouldEqual, 50)
				convey.So(cfg.Round3SimilarityThreshold, convey.ShouldEqual, 0.55)
				convey.So(cfg.Round3NameField, convey.ShouldEqual, "player_name")
			})
		})

		convey.Convey("When loading config with a YAML file and env on top", func() {
			tmpFile := createTempConfigFile(t, `
output_path: "/tmp/chart.csv"
round2_min_cluster_size: 12
embedding_seed: 7
`)
			_ = os.Setenv("STARCHART_CONFIG", tmpFile)
			_ = os.Setenv("STARCHART_EMBEDDING_SEED", "9")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides the file and the file overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OutputPath, convey.ShouldEqual, "/tmp/chart.csv")
				convey.So(cfg.Round2MinClusterSize, convey.ShouldEqual, 12)
				convey.So(cfg.EmbeddingSeed, convey.ShouldEqual, 9)
				convey.So(cfg.Round2SmallGalaxyThreshold, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config from a dotenv file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "pipeline.env")
			convey.So(os.WriteFile(path, []byte("STARCHART_MIN_DATE=2024-10-04\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("STARCHART_DOTENV", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then the dotenv values are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MinDate, convey.ShouldEqual, "2024-10-04")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("STARCHART_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("STARCHART_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("STARCHART_ROUND1_MIN_CLUSTER_SIZE", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When feature lists come from env and file", func() {
			tmpFile := createTempConfigFile(t, `
round2_features: [game_time, score_diff]
`)
			_ = os.Setenv("STARCHART_CONFIG", tmpFile)
			_ = os.Setenv("STARCHART_ROUND1_FEATURES", "x, y,shot_type")

			cfg, err := config.Load(ctx)

			convey.Convey("Then comma lists and YAML sequences both load", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Round1Features, convey.ShouldResemble, []string{"x", "y", "shot_type"})
				convey.So(cfg.Round2Features, convey.ShouldResemble, []string{"game_time", "score_diff"})
			})
		})

		convey.Convey("When a feature list names an unknown column", func() {
			_ = os.Setenv("STARCHART_ROUND1_FEATURES", "shot_zone,rebound")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "rebound")
			})
		})

		convey.Convey("When loading config with an unsupported name field", func() {
			_ = os.Setenv("STARCHART_ROUND3_NAME_FIELD", "team_name")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "team_name")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"STARCHART_CONFIG",
		"STARCHART_DOTENV",
		"STARCHART_INPUT_PATH",
		"STARCHART_OUTPUT_PATH",
		"STARCHART_MIN_DATE",
		"STARCHART_EMBEDDING_SEED",
		"STARCHART_ROUND1_MIN_CLUSTER_SIZE",
		"STARCHART_ROUND2_MIN_CLUSTER_SIZE",
		"STARCHART_ROUND3_SIMILARITY_THRESHOLD",
		"STARCHART_ROUND3_NAME_FIELD",
		"STARCHART_ROUND1_FEATURES",
		"STARCHART_ROUND2_FEATURES",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "starchart-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
