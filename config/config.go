// Package config loads search settings for the command-line driver.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Search holds the per-agent search settings.
type Search struct {
	MaxIterations  int     `yaml:"max_iterations"`
	MaxSeconds     float64 `yaml:"max_seconds"`
	Strategy       string  `yaml:"strategy"`
	HeuristicRatio float64 `yaml:"heuristic_ratio"`
	Rollouts       int     `yaml:"rollouts"`
	Workers        int     `yaml:"workers"`
	Exploration    float64 `yaml:"exploration"`
}

// Default returns the settings used when no file is given.
func Default() Search {
	return Search{
		MaxIterations: 10000,
		MaxSeconds:    10,
		Strategy:      "random",
		Rollouts:      1,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Search, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "parse config %s", path)
	}
	if err := s.Validate(); err != nil {
		return s, errors.Wrapf(err, "invalid config %s", path)
	}
	return s, nil
}

// Validate checks the settings for consistency.
func (s Search) Validate() error {
	if s.MaxIterations <= 0 && s.MaxSeconds <= 0 {
		return errors.New("need max_iterations or max_seconds")
	}
	if s.HeuristicRatio < 0 || s.HeuristicRatio > 1 {
		return errors.Errorf("heuristic_ratio %f outside [0,1]", s.HeuristicRatio)
	}
	if s.Rollouts < 0 {
		return errors.Errorf("rollouts must not be negative, got %d", s.Rollouts)
	}
	if s.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", s.Workers)
	}
	switch s.Strategy {
	case "", "random", "heuristic", "mixed", "heavy":
	default:
		return errors.Errorf("unknown strategy %q", s.Strategy)
	}
	return nil
}
