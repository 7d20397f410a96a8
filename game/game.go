package game

import (
	"math/rand"

	"github.com/pkg/errors"
)

// ErrIllegalMove is returned by State.NextState when the move cannot be
// applied to the state. The search engine treats it as recoverable: the
// offending move is dropped and the caller may try another one.
var ErrIllegalMove = errors.New("illegal move")

// Move identifies one transition between states. Implementations must be
// comparable by value through Equals and printable for diagnostics.
type Move interface {
	Equals(other Move) bool
	String() string
}

// State is one immutable game position. Operations on a State never mutate
// it; NextState returns a fresh value.
//
// Rollout must return the self side's winning chance in [0, 1] (1 self side
// wins, 0.5 draw, 0 self side loses) from a simulated playout to a terminal
// position. The generator is supplied by the caller so that concurrent
// rollouts each use an independent source.
type State interface {
	// LegalMoves enumerates every legal move in a stable order. The order
	// matters: the engine expands moves first-enumerated-first-tried and
	// breaks selection ties the same way.
	LegalMoves() []Move
	NextState(move Move) (State, error)
	IsTerminal() bool
	// IsSelfSideTurn reports whether the side the engine plays for is the
	// one to move. Supports 1-vs-N setups: everything that is not the self
	// side counts as opposition.
	IsSelfSideTurn() bool
	Rollout(rng *rand.Rand) float64
}

// HeuristicRoller is implemented by states that can run a heuristic-guided
// playout instead of a uniform random one.
type HeuristicRoller interface {
	HeuristicRollout(rng *rand.Rand) float64
}

// MoveEvaluator is implemented by states that can score candidate moves.
type MoveEvaluator interface {
	EvaluateMove(move Move) float64
}

// PositionEvaluator is implemented by states that can score the position
// itself, in [0, 1] from the self side's perspective.
type PositionEvaluator interface {
	EvaluatePosition() float64
}

// Cloner is implemented by states that need a deep copy for snapshotting.
// States are immutable, so the default is to reuse the value itself.
type Cloner interface {
	Clone() State
}

// HeuristicRollout runs the state's heuristic playout when available and
// falls back to the random one otherwise.
func HeuristicRollout(s State, rng *rand.Rand) float64 {
	if h, ok := s.(HeuristicRoller); ok {
		return h.HeuristicRollout(rng)
	}
	return s.Rollout(rng)
}

// EvaluateMove scores a move with the state's evaluator, defaulting to no
// preference.
func EvaluateMove(s State, m Move) float64 {
	if e, ok := s.(MoveEvaluator); ok {
		return e.EvaluateMove(m)
	}
	return 0.0
}

// EvaluatePosition scores the position with the state's evaluator,
// defaulting to neutral.
func EvaluatePosition(s State) float64 {
	if e, ok := s.(PositionEvaluator); ok {
		return e.EvaluatePosition()
	}
	return 0.5
}

// Clone deep-copies the state when it supports cloning and returns the value
// itself otherwise.
func Clone(s State) State {
	if c, ok := s.(Cloner); ok {
		return c.Clone()
	}
	return s
}
