package game

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrForeignCallback marks a State or Move callback that panicked. It shows
// up only behind SafeState/SafeMove; the engine core never sees the panic.
var ErrForeignCallback = errors.New("foreign callback failure")

// SafeState shields the engine from a State implementation it cannot trust,
// typically one backed by a dynamically-typed host environment. Every
// callback that panics is recovered, logged, and replaced by a neutral
// result, so engine invariants survive arbitrary foreign failures.
type SafeState struct {
	inner State
}

// Safe wraps a state in a SafeState. Already-wrapped states pass through.
func Safe(s State) State {
	if _, ok := s.(*SafeState); ok {
		return s
	}
	return &SafeState{inner: s}
}

// Unwrap returns the guarded state.
func (s *SafeState) Unwrap() State { return s.inner }

func (s *SafeState) LegalMoves() (moves []Move) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("LegalMoves panicked, treating as no legal moves: %v", r)
			moves = nil
		}
	}()
	return s.inner.LegalMoves()
}

func (s *SafeState) NextState(move Move) (next State, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("NextState panicked for move %v: %v", move, r)
			next = nil
			err = errors.Wrapf(ErrForeignCallback, "next state: %v", r)
		}
	}()
	next, err = s.inner.NextState(move)
	if next != nil {
		next = Safe(next)
	}
	return next, err
}

// IsTerminal reports true when the callback panics: a state that cannot
// answer must not be searched any deeper.
func (s *SafeState) IsTerminal() (terminal bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("IsTerminal panicked, treating state as terminal: %v", r)
			terminal = true
		}
	}()
	return s.inner.IsTerminal()
}

func (s *SafeState) IsSelfSideTurn() (selfSide bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("IsSelfSideTurn panicked, assuming self side: %v", r)
			selfSide = true
		}
	}()
	return s.inner.IsSelfSideTurn()
}

func (s *SafeState) Rollout(rng *rand.Rand) (outcome float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("Rollout panicked, substituting neutral outcome: %v", r)
			outcome = 0.5
		}
	}()
	return s.inner.Rollout(rng)
}

func (s *SafeState) HeuristicRollout(rng *rand.Rand) (outcome float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("HeuristicRollout panicked, substituting neutral outcome: %v", r)
			outcome = 0.5
		}
	}()
	return HeuristicRollout(s.inner, rng)
}

func (s *SafeState) EvaluateMove(move Move) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("EvaluateMove panicked, substituting no preference: %v", r)
			score = 0.0
		}
	}()
	return EvaluateMove(s.inner, move)
}

func (s *SafeState) EvaluatePosition() (score float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("EvaluatePosition panicked, substituting neutral score: %v", r)
			score = 0.5
		}
	}()
	return EvaluatePosition(s.inner)
}

func (s *SafeState) Clone() (clone State) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("Clone panicked, reusing state value: %v", r)
			clone = s
		}
	}()
	return Safe(Clone(s.inner))
}

func (s *SafeState) String() (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = "<unprintable state>"
		}
	}()
	if str, ok := s.inner.(fmt.Stringer); ok {
		return str.String()
	}
	return fmt.Sprintf("%v", s.inner)
}

// SafeMove shields the engine from a Move implementation supplied across a
// foreign boundary.
type SafeMove struct {
	inner Move
}

// SafeWrapMove wraps a move in a SafeMove. Already-wrapped moves pass
// through.
func SafeWrapMove(m Move) Move {
	if _, ok := m.(*SafeMove); ok {
		return m
	}
	return &SafeMove{inner: m}
}

// Unwrap returns the guarded move.
func (m *SafeMove) Unwrap() Move { return m.inner }

// Equals reports false when the comparison panics: a move that cannot be
// compared matches nothing.
func (m *SafeMove) Equals(other Move) (equal bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("Move.Equals panicked, treating moves as unequal: %v", r)
			equal = false
		}
	}()
	if wrapped, ok := other.(*SafeMove); ok {
		other = wrapped.inner
	}
	return m.inner.Equals(other)
}

func (m *SafeMove) String() (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = "<unprintable move>"
		}
	}()
	return m.inner.String()
}
