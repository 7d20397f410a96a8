package connectfour

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
)

/**
Connect Four rules and heuristics:
- drops stack from the bottom, full columns are illegal
- winner detection across all four line directions
- rollouts stay in [0,1] and terminal boards score exactly
- heuristics take immediate wins and blocks
*/

func play(t *testing.T, s *State, cols ...int) *State {
	t.Helper()
	current := game.State(s)
	for _, col := range cols {
		turn := current.(*State).Turn()
		next, err := current.NextState(Move{Col: col, Player: turn})
		require.NoError(t, err, "Dropping into column %d should be legal", col)
		current = next
	}
	return current.(*State)
}

func TestDrops(t *testing.T) {
	t.Run("pieces stack from the bottom", func(t *testing.T) {
		s := play(t, New(), 3, 3)
		require.Equal(t, byte(X), s.board[Rows-1][3], "The first piece lands on the floor")
		require.Equal(t, byte(O), s.board[Rows-2][3], "The second piece stacks on top")
	})

	t.Run("a full column is illegal", func(t *testing.T) {
		s := play(t, New(), 0, 0, 0, 0, 0, 0)
		_, err := s.NextState(Move{Col: 0, Player: s.Turn()})
		require.ErrorIs(t, err, game.ErrIllegalMove, "A full column cannot take a piece")
	})

	t.Run("out-of-bounds columns are illegal", func(t *testing.T) {
		_, err := New().NextState(Move{Col: 7, Player: X})
		require.ErrorIs(t, err, game.ErrIllegalMove, "Column 7 does not exist")
	})

	t.Run("full columns drop out of the legal moves", func(t *testing.T) {
		s := play(t, New(), 0, 0, 0, 0, 0, 0)
		require.Len(t, s.LegalMoves(), Cols-1, "One column is full")
	})
}

func TestWinnerDetection(t *testing.T) {
	t.Run("vertical win", func(t *testing.T) {
		s := play(t, New(), 0, 1, 0, 1, 0, 1, 0)
		require.Equal(t, byte(X), s.Winner(), "Four x in column 0")
		require.True(t, s.IsTerminal(), "A win ends the game")
	})

	t.Run("horizontal win", func(t *testing.T) {
		s := play(t, New(), 0, 0, 1, 1, 2, 2, 3)
		require.Equal(t, byte(X), s.Winner(), "Four x on the floor")
	})

	t.Run("diagonal win", func(t *testing.T) {
		// x builds the rising diagonal from column 0.
		s := play(t, New(), 0, 1, 1, 2, 2, 3, 2, 3, 3, 6, 3)
		require.Equal(t, byte(X), s.Winner(), "Four x on the diagonal")
	})

	t.Run("no premature winner", func(t *testing.T) {
		s := play(t, New(), 0, 1, 0, 1, 0, 1)
		require.Equal(t, byte(Empty), s.Winner(), "Three in a column is not a win")
	})
}

func TestRollout(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("terminal boards score exactly", func(t *testing.T) {
		xWins := play(t, New(), 0, 1, 0, 1, 0, 1, 0)
		require.Equal(t, 1.0, xWins.Rollout(rng), "An x win scores 1")
		require.Equal(t, 1.0, xWins.HeuristicRollout(rng), "An x win scores 1")
	})

	t.Run("outcomes stay in the unit interval", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			outcome := New().Rollout(rng)
			require.GreaterOrEqual(t, outcome, 0.0, "Outcomes live in [0,1]")
			require.LessOrEqual(t, outcome, 1.0, "Outcomes live in [0,1]")
		}
	})

	t.Run("heuristic rollout finishes a won position for x", func(t *testing.T) {
		// x has three in column 0 and moves next.
		s := play(t, New(), 0, 1, 0, 1, 0, 1)
		for i := 0; i < 20; i++ {
			require.Equal(t, 1.0, s.HeuristicRollout(rng),
				"The heuristic must take an immediate win")
		}
	})
}

func TestEvaluateMove(t *testing.T) {
	t.Run("winning and blocking drops dominate", func(t *testing.T) {
		// x threatens column 0, o threatens column 1.
		s := play(t, New(), 0, 1, 0, 1, 0, 1)
		require.Equal(t, 1.0, s.EvaluateMove(Move{Col: 0, Player: X}), "Completing four scores 1.0")
		require.Equal(t, 0.8, s.EvaluateMove(Move{Col: 1, Player: X}), "Blocking four scores 0.8")
	})

	t.Run("center drops beat edge drops", func(t *testing.T) {
		s := New()
		require.Greater(t,
			s.EvaluateMove(Move{Col: 3, Player: X}),
			s.EvaluateMove(Move{Col: 0, Player: X}),
			"The center column is preferred")
	})

	t.Run("full columns score 0", func(t *testing.T) {
		s := play(t, New(), 0, 0, 0, 0, 0, 0)
		require.Equal(t, 0.0, s.EvaluateMove(Move{Col: 0, Player: s.Turn()}), "No drop, no score")
	})
}

func TestMove(t *testing.T) {
	require.True(t, Move{Col: 3, Player: X}.Equals(Move{Col: 3, Player: X}), "Identical moves are equal")
	require.False(t, Move{Col: 3, Player: X}.Equals(Move{Col: 4, Player: X}), "The column is part of the identity")
	require.Equal(t, "x->col3", Move{Col: 3, Player: X}.String(), "Moves should print readably")
}
