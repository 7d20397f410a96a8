package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("reads settings over the defaults", func(t *testing.T) {
		path := writeConfig(t, `
max_iterations: 500
strategy: mixed
heuristic_ratio: 0.3
rollouts: 4
workers: 2
`)
		s, err := Load(path)

		require.NoError(t, err, "A valid file should load")
		require.Equal(t, 500, s.MaxIterations, "Explicit settings win")
		require.Equal(t, "mixed", s.Strategy, "Explicit settings win")
		require.Equal(t, 0.3, s.HeuristicRatio, "Explicit settings win")
		require.Equal(t, 4, s.Rollouts, "Explicit settings win")
		require.Equal(t, Default().MaxSeconds, s.MaxSeconds, "Unset fields keep their defaults")
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err, "A missing file is an error")
	})

	t.Run("fails on malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "max_iterations: [not a number")
		_, err := Load(path)
		require.Error(t, err, "Malformed yaml is an error")
	})

	t.Run("fails validation on a bad ratio", func(t *testing.T) {
		path := writeConfig(t, "heuristic_ratio: 1.5")
		_, err := Load(path)
		require.Error(t, err, "Ratios outside [0,1] are rejected")
	})
}

func TestValidate(t *testing.T) {
	t.Run("accepts the defaults", func(t *testing.T) {
		require.NoError(t, Default().Validate(), "Defaults must be valid")
	})

	t.Run("requires a budget", func(t *testing.T) {
		s := Default()
		s.MaxIterations = 0
		s.MaxSeconds = 0
		require.Error(t, s.Validate(), "At least one budget is required")
	})

	t.Run("rejects unknown strategies", func(t *testing.T) {
		s := Default()
		s.Strategy = "minimax"
		require.Error(t, s.Validate(), "Unknown strategies are rejected")
	})

	t.Run("rejects negative worker counts", func(t *testing.T) {
		s := Default()
		s.Workers = -1
		require.Error(t, s.Validate(), "Negative worker counts are rejected")
	})
}
