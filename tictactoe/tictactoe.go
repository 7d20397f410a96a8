// Package tictactoe implements the 3x3 game as a plug-in for the search
// engine. The engine scores outcomes for 'x', so 'x' is the self side.
package tictactoe

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
)

const (
	X     = 'x'
	O     = 'o'
	Draw  = 'd'
	Empty = ' '
)

// Move places a mark on a cell.
type Move struct {
	Row    int
	Col    int
	Player byte
}

func (m Move) Equals(other game.Move) bool {
	o, ok := other.(Move)
	return ok && o == m
}

func (m Move) String() string {
	return fmt.Sprintf("%c(%d,%d)", m.Player, m.Row, m.Col)
}

// State is one board position. States are immutable; NextState returns a
// fresh board.
type State struct {
	board  [3][3]byte
	turn   byte
	winner byte
}

// New returns the empty board with 'x' to move.
func New() *State {
	s := &State{turn: X, winner: Empty}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s.board[i][j] = Empty
		}
	}
	return s
}

// Turn returns the mark to move next.
func (s *State) Turn() byte { return s.turn }

// Winner returns 'x', 'o', 'd' for a draw, or ' ' while the game runs.
func (s *State) Winner() byte { return s.winner }

// Cell returns the mark at the given position.
func (s *State) Cell(row, col int) byte { return s.board[row][col] }

func (s *State) IsTerminal() bool { return s.winner != Empty }

func (s *State) IsSelfSideTurn() bool { return s.turn == X }

func (s *State) LegalMoves() []game.Move {
	if s.IsTerminal() {
		return nil
	}
	moves := make([]game.Move, 0, 9)
	for i := 0; i < 9; i++ {
		if s.board[i/3][i%3] == Empty {
			moves = append(moves, Move{Row: i / 3, Col: i % 3, Player: s.turn})
		}
	}
	return moves
}

func (s *State) NextState(move game.Move) (game.State, error) {
	m, ok := move.(Move)
	if !ok {
		return nil, errors.Wrapf(game.ErrIllegalMove, "unexpected move type %T", move)
	}
	if m.Row < 0 || m.Row > 2 || m.Col < 0 || m.Col > 2 {
		return nil, errors.Wrapf(game.ErrIllegalMove, "cell (%d,%d) out of bounds", m.Row, m.Col)
	}
	if s.board[m.Row][m.Col] != Empty {
		return nil, errors.Wrapf(game.ErrIllegalMove, "cell (%d,%d) occupied", m.Row, m.Col)
	}

	next := *s
	next.board[m.Row][m.Col] = m.Player
	next.winner = next.calculateWinner()
	next.turn = other(s.turn)
	return &next, nil
}

func other(player byte) byte {
	if player == X {
		return O
	}
	return X
}

func (s *State) playerWon(player byte) bool {
	b := &s.board
	for i := 0; i < 3; i++ {
		if b[i][0] == player && b[i][1] == player && b[i][2] == player {
			return true
		}
		if b[0][i] == player && b[1][i] == player && b[2][i] == player {
			return true
		}
	}
	return (b[0][0] == player && b[1][1] == player && b[2][2] == player) ||
		(b[0][2] == player && b[1][1] == player && b[2][0] == player)
}

func (s *State) calculateWinner() byte {
	if s.playerWon(X) {
		return X
	}
	if s.playerWon(O) {
		return O
	}
	for i := 0; i < 9; i++ {
		if s.board[i/3][i%3] == Empty {
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

// Rollout plays uniform random moves to the end of the game and scores the
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

// HeuristicRollout plays to the end preferring, in order: an immediate win,
// blocking the opponent's win, the center, a corner, then a random cell.
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
	// Win if possible.
	for _, m := range moves {
		move := m.(Move)
		if s.winsFor(move.Row, move.Col, s.turn) {
			return m
		}
	}
	// Block the opponent's win.
	opponent := other(s.turn)
	for _, m := range moves {
		move := m.(Move)
		if s.winsFor(move.Row, move.Col, opponent) {
			return m
		}
	}
	// Take the center.
	for _, m := range moves {
		move := m.(Move)
		if move.Row == 1 && move.Col == 1 {
			return m
		}
	}
	// Take a corner.
	for _, m := range moves {
		move := m.(Move)
		if move.Row != 1 && move.Col != 1 {
			return m
		}
	}
	return moves[rng.Intn(len(moves))]
}

// winsFor reports whether placing player's mark on the cell completes a
// line.
func (s *State) winsFor(row, col int, player byte) bool {
	probe := *s
	probe.board[row][col] = player
	return probe.playerWon(player)
}

// EvaluateMove scores a candidate move: winning 1.0, blocking 0.8, center
// 0.6, corner 0.4, edge 0.2.
func (s *State) EvaluateMove(move game.Move) float64 {
	m, ok := move.(Move)
	if !ok || m.Row < 0 || m.Row > 2 || m.Col < 0 || m.Col > 2 {
		return 0.0
	}
	if s.board[m.Row][m.Col] != Empty {
		return 0.0
	}
	if s.winsFor(m.Row, m.Col, s.turn) {
		return 1.0
	}
	if s.winsFor(m.Row, m.Col, other(s.turn)) {
		return 0.8
	}
	if m.Row == 1 && m.Col == 1 {
		return 0.6
	}
	if m.Row != 1 && m.Col != 1 {
		return 0.4
	}
	return 0.2
}

// EvaluatePosition scores the board for 'x' as x's share of the still-open
// winning lines. Terminal boards score their exact outcome.
func (s *State) EvaluatePosition() float64 {
	if s.IsTerminal() {
		return outcome(s.winner)
	}
	openX := s.countOpenLines(X)
	openO := s.countOpenLines(O)
	if openX+openO == 0 {
		return 0.5
	}
	return openX / (openX + openO)
}

var lines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

func (s *State) countOpenLines(player byte) float64 {
	opponent := other(player)
	count := 0.0
	for _, line := range lines {
		open := true
		for _, cell := range line {
			if s.board[cell[0]][cell[1]] == opponent {
				open = false
				break
			}
		}
		if open {
			count++
		}
	}
	return count
}

func (s *State) String() string {
	var b strings.Builder
	for i := 0; i < 3; i++ {
		b.WriteString(fmt.Sprintf(" %c | %c | %c \n",
			s.board[i][0], s.board[i][1], s.board[i][2]))
		if i < 2 {
			b.WriteString("---+---+---\n")
		}
	}
	return b.String()
}
