package mcts

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
)

type mockMove struct {
	id int
}

func (m mockMove) Equals(other game.Move) bool {
	o, ok := other.(mockMove)
	return ok && o.id == m.id
}

func (m mockMove) String() string {
	return fmt.Sprintf("move%d", m.id)
}

// mockState is a uniform game tree: branching moves per position until
// maxDepth plies have been played, with a fixed rollout outcome. The side to
// move alternates every ply.
type mockState struct {
	depth     int
	maxDepth  int
	branching int
	selfTurn  bool
	outcome   float64
}

func newMockState(branching, maxDepth int, outcome float64) mockState {
	return mockState{
		maxDepth:  maxDepth,
		branching: branching,
		selfTurn:  true,
		outcome:   outcome,
	}
}

func (s mockState) LegalMoves() []game.Move {
	if s.IsTerminal() {
		return nil
	}
	moves := make([]game.Move, 0, s.branching)
	for i := 0; i < s.branching; i++ {
		moves = append(moves, mockMove{id: i})
	}
	return moves
}

func (s mockState) NextState(move game.Move) (game.State, error) {
	m, ok := move.(mockMove)
	if !ok || m.id < 0 || m.id >= s.branching || s.IsTerminal() {
		return nil, errors.Wrapf(game.ErrIllegalMove, "move %v", move)
	}
	next := s
	next.depth++
	next.selfTurn = !s.selfTurn
	return next, nil
}

func (s mockState) IsTerminal() bool { return s.depth >= s.maxDepth }

func (s mockState) IsSelfSideTurn() bool { return s.selfTurn }

func (s mockState) Rollout(rng *rand.Rand) float64 { return s.outcome }

// rejectingState refuses every move, for exercising the illegal-move path.
type rejectingState struct {
	mockState
}

func (s rejectingState) NextState(move game.Move) (game.State, error) {
	return nil, errors.Wrapf(game.ErrIllegalMove, "move %v", move)
}

// countingState tallies which playout flavor ran, for strategy tests.
type countingState struct {
	mockState
	randomRuns    *atomic.Int64
	heuristicRuns *atomic.Int64
}

func (s countingState) Rollout(rng *rand.Rand) float64 {
	s.randomRuns.Add(1)
	return s.outcome
}

func (s countingState) HeuristicRollout(rng *rand.Rand) float64 {
	s.heuristicRuns.Add(1)
	return s.outcome
}

func (s countingState) NextState(move game.Move) (game.State, error) {
	next, err := s.mockState.NextState(move)
	if err != nil {
		return nil, err
	}
	return countingState{
		mockState:     next.(mockState),
		randomRuns:    s.randomRuns,
		heuristicRuns: s.heuristicRuns,
	}, nil
}
