package mcts

import (
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
)

// RolloutStrategy selects how simulations estimate a position's value.
type RolloutStrategy int

const (
	// StrategyRandom plays uniform random moves to a terminal position.
	StrategyRandom RolloutStrategy = iota
	// StrategyHeuristic uses the state's heuristic playout.
	StrategyHeuristic
	// StrategyMixed picks heuristic playouts with the configured ratio,
	// random ones otherwise, independently per simulation.
	StrategyMixed
	// StrategyHeavy always uses the heuristic playout; meant for domains
	// with costly, deep evaluators.
	StrategyHeavy
)

func (s RolloutStrategy) String() string {
	switch s {
	case StrategyRandom:
		return "random"
	case StrategyHeuristic:
		return "heuristic"
	case StrategyMixed:
		return "mixed"
	case StrategyHeavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a strategy name to its value, case-insensitively.
func ParseStrategy(name string) (RolloutStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "random", "":
		return StrategyRandom, nil
	case "heuristic":
		return StrategyHeuristic, nil
	case "mixed":
		return StrategyMixed, nil
	case "heavy":
		return StrategyHeavy, nil
	default:
		return StrategyRandom, errors.Errorf("unknown rollout strategy %q", name)
	}
}

// rolloutConfig is the per-tree rollout policy, mutable between growth
// calls. It replaces the original design's process-wide configuration so
// trees stay independently testable.
type rolloutConfig struct {
	strategy       RolloutStrategy
	heuristicRatio float64
	rollouts       int // simulations per expansion
}

// resolve picks the playout flavor for a single simulation. coin is a
// uniform draw in [0, 1) from the simulating worker's own generator.
func (c rolloutConfig) resolve(coin float64) RolloutStrategy {
	if c.strategy == StrategyMixed {
		if coin < c.heuristicRatio {
			return StrategyHeuristic
		}
		return StrategyRandom
	}
	return c.strategy
}

// runPlayout executes one simulation of the given flavor and clamps the
// outcome into [0, 1] so a misbehaving domain cannot corrupt node
// statistics.
func runPlayout(s game.State, flavor RolloutStrategy, rng *rand.Rand) float64 {
	var outcome float64
	switch flavor {
	case StrategyHeuristic, StrategyHeavy:
		outcome = game.HeuristicRollout(s, rng)
	default:
		outcome = s.Rollout(rng)
	}
	if outcome < 0.0 || outcome > 1.0 {
		log.Warn().Msgf("rollout outcome %f outside [0,1], clamping", outcome)
		if outcome < 0.0 {
			return 0.0
		}
		return 1.0
	}
	return outcome
}
