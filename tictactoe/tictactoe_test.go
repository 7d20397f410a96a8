package tictactoe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
)

/**
Tic-tac-toe rules and heuristics:
- legality: occupied cells and out-of-bounds cells are illegal
- winner detection across rows, columns, diagonals, and draws
- rollout outcomes stay in [0,1] and terminal boards score exactly
- heuristics: winning moves score highest, blocking next, heuristic
  rollouts finish a won position deterministically
*/

// play applies a sequence of moves, failing the test on an illegal one.
func play(t *testing.T, s *State, moves ...Move) *State {
	t.Helper()
	current := game.State(s)
	for _, m := range moves {
		next, err := current.NextState(m)
		require.NoError(t, err, "Move %v should be legal", m)
		current = next
	}
	return current.(*State)
}

func TestLegalMoves(t *testing.T) {
	t.Run("empty board offers nine moves for x", func(t *testing.T) {
		moves := New().LegalMoves()
		require.Len(t, moves, 9, "Every cell should be playable")
		for _, m := range moves {
			require.Equal(t, byte(X), m.(Move).Player, "x moves first")
		}
	})

	t.Run("terminal board offers none", func(t *testing.T) {
		s := play(t, New(),
			Move{0, 0, X}, Move{1, 0, O},
			Move{0, 1, X}, Move{1, 1, O},
			Move{0, 2, X})
		require.Empty(t, s.LegalMoves(), "A finished game has no moves")
	})
}

func TestNextState(t *testing.T) {
	t.Run("rejects an occupied cell", func(t *testing.T) {
		s := play(t, New(), Move{1, 1, X})
		_, err := s.NextState(Move{1, 1, O})
		require.ErrorIs(t, err, game.ErrIllegalMove, "Occupied cells are illegal")
	})

	t.Run("rejects out-of-bounds cells", func(t *testing.T) {
		_, err := New().NextState(Move{3, 0, X})
		require.ErrorIs(t, err, game.ErrIllegalMove, "Out-of-bounds cells are illegal")
	})

	t.Run("does not mutate the prior state", func(t *testing.T) {
		s := New()
		_, err := s.NextState(Move{0, 0, X})
		require.NoError(t, err)
		require.Equal(t, byte(Empty), s.Cell(0, 0), "States are immutable")
	})

	t.Run("alternates the turn", func(t *testing.T) {
		s := play(t, New(), Move{0, 0, X})
		require.Equal(t, byte(O), s.Turn(), "o moves after x")
		require.False(t, s.IsSelfSideTurn(), "o is not the self side")
	})
}

func TestWinnerDetection(t *testing.T) {
	t.Run("row win", func(t *testing.T) {
		s := play(t, New(),
			Move{0, 0, X}, Move{1, 0, O},
			Move{0, 1, X}, Move{1, 1, O},
			Move{0, 2, X})
		require.Equal(t, byte(X), s.Winner(), "x owns the top row")
	})

	t.Run("column win", func(t *testing.T) {
		s := play(t, New(),
			Move{0, 1, X}, Move{0, 0, O},
			Move{1, 1, X}, Move{1, 0, O},
			Move{0, 2, X}, Move{2, 0, O})
		require.Equal(t, byte(O), s.Winner(), "o owns the left column")
	})

	t.Run("diagonal win", func(t *testing.T) {
		s := play(t, New(),
			Move{0, 0, X}, Move{0, 1, O},
			Move{1, 1, X}, Move{0, 2, O},
			Move{2, 2, X})
		require.Equal(t, byte(X), s.Winner(), "x owns the main diagonal")
	})

	t.Run("draw on a full board", func(t *testing.T) {
		s := play(t, New(),
			Move{0, 0, X}, Move{0, 1, O},
			Move{0, 2, X}, Move{1, 1, O},
			Move{1, 0, X}, Move{1, 2, O},
			Move{2, 1, X}, Move{2, 0, O},
			Move{2, 2, X})
		require.Equal(t, byte(Draw), s.Winner(), "A full board without a line is a draw")
		require.True(t, s.IsTerminal(), "A draw ends the game")
	})
}

func TestRollout(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("terminal boards score exactly", func(t *testing.T) {
		xWins := play(t, New(),
			Move{0, 0, X}, Move{1, 0, O},
			Move{0, 1, X}, Move{1, 1, O},
			Move{0, 2, X})
		require.Equal(t, 1.0, xWins.Rollout(rng), "An x win scores 1")
		require.Equal(t, 1.0, xWins.HeuristicRollout(rng), "An x win scores 1")
	})

	t.Run("outcomes stay in the unit interval", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			outcome := New().Rollout(rng)
			require.GreaterOrEqual(t, outcome, 0.0, "Outcomes live in [0,1]")
			require.LessOrEqual(t, outcome, 1.0, "Outcomes live in [0,1]")
		}
	})

	t.Run("heuristic rollout finishes a won position for x", func(t *testing.T) {
		// x to move with two in the top row: the heuristic takes the win
		// before o can interfere.
		s := play(t, New(),
			Move{0, 0, X}, Move{1, 0, O},
			Move{0, 1, X}, Move{1, 1, O})
		for i := 0; i < 20; i++ {
			require.Equal(t, 1.0, s.HeuristicRollout(rng),
				"The heuristic must take an immediate win")
		}
	})
}

func TestEvaluateMove(t *testing.T) {
	t.Run("win, block, corner, and edge priorities", func(t *testing.T) {
		// x threatens the top row, o threatens the middle row.
		s := play(t, New(),
			Move{0, 0, X}, Move{1, 0, O},
			Move{0, 1, X}, Move{1, 1, O})

		require.Equal(t, 1.0, s.EvaluateMove(Move{0, 2, X}), "Completing a line scores 1.0")
		require.Equal(t, 0.8, s.EvaluateMove(Move{1, 2, X}), "Blocking a line scores 0.8")
		require.Equal(t, 0.4, s.EvaluateMove(Move{2, 2, X}), "A corner scores 0.4")
		require.Equal(t, 0.2, s.EvaluateMove(Move{2, 1, X}), "An edge scores 0.2")
		require.Equal(t, 0.0, s.EvaluateMove(Move{0, 0, X}), "Occupied cells score 0")
	})

	t.Run("center preference", func(t *testing.T) {
		s := play(t, New(), Move{0, 0, X}, Move{0, 1, O})
		require.Equal(t, 0.6, s.EvaluateMove(Move{1, 1, X}), "The center scores 0.6")
	})
}

func TestEvaluatePosition(t *testing.T) {
	t.Run("empty board is neutral", func(t *testing.T) {
		require.Equal(t, 0.5, New().EvaluatePosition(), "Both sides start even")
	})

	t.Run("a winning board scores its outcome", func(t *testing.T) {
		s := play(t, New(),
			Move{0, 0, X}, Move{1, 0, O},
			Move{0, 1, X}, Move{1, 1, O},
			Move{0, 2, X})
		require.Equal(t, 1.0, s.EvaluatePosition(), "A terminal x win scores 1")
	})

	t.Run("more open lines for x score above neutral", func(t *testing.T) {
		s := play(t, New(), Move{1, 1, X}, Move{0, 1, O})
		require.Greater(t, s.EvaluatePosition(), 0.5, "The center gives x the edge")
	})
}

func TestMove(t *testing.T) {
	t.Run("value equality", func(t *testing.T) {
		require.True(t, Move{1, 2, X}.Equals(Move{1, 2, X}), "Identical moves are equal")
		require.False(t, Move{1, 2, X}.Equals(Move{1, 2, O}), "The player is part of the identity")
		require.False(t, Move{1, 2, X}.Equals(Move{2, 1, X}), "The cell is part of the identity")
	})

	t.Run("renders player and cell", func(t *testing.T) {
		require.Equal(t, "x(1,2)", Move{1, 2, X}.String(), "Moves should print readably")
	})
}
