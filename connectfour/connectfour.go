// Package connectfour implements 6x7 Connect Four as a plug-in for the
// search engine. The engine scores outcomes for 'x', so 'x' is the self
// side.
package connectfour

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
)

const (
	Rows = 6
	Cols = 7

	X     = 'x'
	O     = 'o'
	Draw  = 'd'
	Empty = ' '
)

// Move drops a piece into a column.
type Move struct {
	Col    int
	Player byte
}

func (m Move) Equals(other game.Move) bool {
	o, ok := other.(Move)
	return ok && o == m
}

func (m Move) String() string {
	return fmt.Sprintf("%c->col%d", m.Player, m.Col)
}

// State is one board position. Row 0 is the top; pieces stack from the
// bottom. States are immutable.
type State struct {
	board  [Rows][Cols]byte
	turn   byte
	winner byte
}

// New returns the empty board with 'x' to move.
func New() *State {
	s := &State{turn: X, winner: Empty}
	for i := 0; i < Rows; i++ {
		for j := 0; j < Cols; j++ {
			s.board[i][j] = Empty
		}
	}
	return s
}

// Turn returns the mark to move next.
func (s *State) Turn() byte { return s.turn }

// Winner returns 'x', 'o', 'd' for a draw, or ' ' while the game runs.
func (s *State) Winner() byte { return s.winner }

func (s *State) IsTerminal() bool { return s.winner != Empty }

func (s *State) IsSelfSideTurn() bool { return s.turn == X }

func (s *State) LegalMoves() []game.Move {
	if s.IsTerminal() {
		return nil
	}
	moves := make([]game.Move, 0, Cols)
	for col := 0; col < Cols; col++ {
		if s.board[0][col] == Empty {
			moves = append(moves, Move{Col: col, Player: s.turn})
		}
	}
	return moves
}

func (s *State) NextState(move game.Move) (game.State, error) {
	m, ok := move.(Move)
	if !ok {
		return nil, errors.Wrapf(game.ErrIllegalMove, "unexpected move type %T", move)
	}
	if m.Col < 0 || m.Col >= Cols {
		return nil, errors.Wrapf(game.ErrIllegalMove, "column %d out of bounds", m.Col)
	}
	row := s.dropRow(m.Col)
	if row < 0 {
		return nil, errors.Wrapf(game.ErrIllegalMove, "column %d is full", m.Col)
	}

	next := *s
	next.board[row][m.Col] = m.Player
	next.winner = next.calculateWinner(row, m.Col)
	next.turn = other(s.turn)
	return &next, nil
}

// dropRow returns the row a piece lands on in the column, -1 when full.
func (s *State) dropRow(col int) int {
	for row := Rows - 1; row >= 0; row-- {
		if s.board[row][col] == Empty {
			return row
		}
	}
	return -1
}

func other(player byte) byte {
	if player == X {
		return O
	}
	return X
}

var directions = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal down-left
}

// calculateWinner checks the four lines through the last placed piece, then
// for a full board.
func (s *State) calculateWinner(row, col int) byte {
	player := s.board[row][col]
	for _, dir := range directions {
		run := 1
		for _, sign := range [2]int{1, -1} {
			r, c := row+sign*dir[0], col+sign*dir[1]
			for r >= 0 && r < Rows && c >= 0 && c < Cols && s.board[r][c] == player {
				run++
				r += sign * dir[0]
				c += sign * dir[1]
			}
		}
		if run >= 4 {
			return player
		}
	}
	for c := 0; c < Cols; c++ {
		if s.board[0][c] == Empty {
			return Empty
		}
	}
	return Draw
}

func outcome(winner byte) float64 {
	switch winner {
	case X:
		return 1.0
	case Draw:
		return 0.5
	default:
		return 0.0
	}
}

// Rollout plays uniform random drops to the end of the game and scores the
// result for 'x'.
func (s *State) Rollout(rng *rand.Rand) float64 {
	if s.IsTerminal() {
		return outcome(s.winner)
	}

	current := s
	for !current.IsTerminal() {
		moves := current.LegalMoves()
		if len(moves) == 0 {
			log.Warn().Msg("ran out of moves on a non-terminal board")
			return 0.5
		}
		next, err := current.NextState(moves[rng.Intn(len(moves))])
		if err != nil {
			return 0.5
		}
		current = next.(*State)
	}
	return outcome(current.winner)
}

// HeuristicRollout plays to the end preferring an immediate win, then a
// block, then columns near the center.
func (s *State) HeuristicRollout(rng *rand.Rand) float64 {
	if s.IsTerminal() {
		return outcome(s.winner)
	}

	current := s
	for !current.IsTerminal() {
		moves := current.LegalMoves()
		if len(moves) == 0 {
			log.Warn().Msg("ran out of moves on a non-terminal board")
			return 0.5
		}
		next, err := current.NextState(current.bestHeuristicMove(moves, rng))
		if err != nil {
			return 0.5
		}
		current = next.(*State)
	}
	return outcome(current.winner)
}

func (s *State) bestHeuristicMove(moves []game.Move, rng *rand.Rand) game.Move {
	for _, m := range moves {
		if s.winsFor(m.(Move).Col, s.turn) {
			return m
		}
	}
	opponent := other(s.turn)
	for _, m := range moves {
		if s.winsFor(m.(Move).Col, opponent) {
			return m
		}
	}
	// Bias toward the center: one weighted draw over 4-|col-3|.
	total := 0
	for _, m := range moves {
		total += 4 - abs(m.(Move).Col-3)
	}
	pick := rng.Intn(total)
	for _, m := range moves {
		pick -= 4 - abs(m.(Move).Col-3)
		if pick < 0 {
			return m
		}
	}
	return moves[len(moves)-1]
}

// winsFor reports whether dropping player's piece in the column completes a
// line of four.
func (s *State) winsFor(col int, player byte) bool {
	row := s.dropRow(col)
	if row < 0 {
		return false
	}
	probe := *s
	probe.board[row][col] = player
	return probe.calculateWinner(row, col) == player
}

// EvaluateMove scores a candidate drop: winning 1.0, blocking 0.8,
// otherwise a small center-proximity bonus.
func (s *State) EvaluateMove(move game.Move) float64 {
	m, ok := move.(Move)
	if !ok || m.Col < 0 || m.Col >= Cols || s.dropRow(m.Col) < 0 {
		return 0.0
	}
	if s.winsFor(m.Col, s.turn) {
		return 1.0
	}
	if s.winsFor(m.Col, other(s.turn)) {
		return 0.8
	}
	return float64(4-abs(m.Col-3)) / 10.0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (s *State) String() string {
	var b strings.Builder
	for i := 0; i < Rows; i++ {
		b.WriteByte('|')
		for j := 0; j < Cols; j++ {
			b.WriteByte(s.board[i][j])
			b.WriteByte('|')
		}
		b.WriteByte('\n')
	}
	b.WriteString(" 0 1 2 3 4 5 6\n")
	return b.String()
}
