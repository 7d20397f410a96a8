package mcts

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
)

// ErrNoMatchingChild is returned by AdvanceTree when the committed move was
// never expanded as a child of the current root. The tree recovers by
// rebuilding from scratch, losing its statistics.
var ErrNoMatchingChild = errors.New("no child matches move")

// Node is one vertex of the search tree. A node exclusively owns its state,
// the move that produced it, its children, and the moves it has not tried
// yet. Children plus untried moves always add up to the legal moves captured
// when the node was created, except for moves dropped as illegal.
type Node struct {
	parent      *Node
	move        game.Move // nil at the root
	state       game.State
	terminal    bool
	children    []*Node
	untried     []game.Move
	size        int // subtree size, this node included
	simulations int
	score       float64 // accumulated outcomes, self-side perspective
}

func newNode(parent *Node, state game.State, move game.Move) *Node {
	terminal := state.IsTerminal()
	var untried []game.Move
	if !terminal {
		untried = state.LegalMoves()
		if len(untried) == 0 {
			// Domain bug: a non-terminal position must have moves. The node
			// becomes a dead end the tree policy stops at.
			log.Warn().Msg("non-terminal state reports no legal moves")
		}
	}
	return &Node{
		parent:   parent,
		move:     move,
		state:    state,
		terminal: terminal,
		children: make([]*Node, 0, len(untried)),
		untried:  untried,
		size:     1,
	}
}

// Move returns the move that led from the parent's state to this node's
// state, nil at the root.
func (n *Node) Move() game.Move { return n.move }

// State returns the node's position. Callers must treat it as read-only.
func (n *Node) State() game.State { return n.state }

// Size returns the number of nodes in this subtree, this node included.
func (n *Node) Size() int { return n.size }

// Simulations returns how many rollout outcomes have been accumulated here.
func (n *Node) Simulations() int { return n.simulations }

// IsTerminal reports whether the node's state is a finished game.
func (n *Node) IsTerminal() bool { return n.terminal }

// IsFullyExpanded reports whether every untried move has been expanded.
func (n *Node) IsFullyExpanded() bool { return len(n.untried) == 0 }

// Expand claims the next untried move, in first-enumerated-first-tried
// order, and grows a child for it. An illegal move is dropped with a warning
// and reported so the caller can try the next one; node statistics stay
// consistent either way.
func (n *Node) Expand() (*Node, error) {
	if len(n.untried) == 0 {
		panic("expand called on fully expanded node")
	}

	move := n.untried[0]
	n.untried = n.untried[1:]

	next, err := n.state.NextState(move)
	if err != nil {
		log.Warn().Msgf("dropping illegal move %v: %v", move, err)
		return nil, errors.Wrapf(err, "expand move %v", move)
	}

	child := newNode(n, next, move)
	n.children = append(n.children, child)
	for ancestor := n; ancestor != nil; ancestor = ancestor.parent {
		ancestor.size++
	}
	return child, nil
}

// Winrate estimates the winning chance for the side indicated by
// selfSideTurn. Outcomes are accumulated from the self side's perspective,
// so the opponent's view is the complement. An unvisited node reports 0.5.
func (n *Node) Winrate(selfSideTurn bool) float64 {
	if n.simulations == 0 {
		return 0.5
	}
	winrate := n.score / float64(n.simulations)
	if selfSideTurn {
		return winrate
	}
	return 1.0 - winrate
}

// SelectBestChild picks the child maximizing the UCT score
// winrate + c*sqrt(ln(parentVisits)/childVisits) from the perspective of the
// side to move at this node. An unvisited child has infinite priority; ties
// break by enumeration order.
func (n *Node) SelectBestChild(c float64) *Node {
	if len(n.children) == 0 {
		return nil
	}
	if n.simulations == 0 {
		return n.children[0]
	}

	selfSideTurn := n.state.IsSelfSideTurn()
	logParent := math.Log(float64(n.simulations))

	var best *Node
	bestScore := math.Inf(-1)
	for _, child := range n.children {
		if child.simulations == 0 {
			return child
		}
		score := child.Winrate(selfSideTurn) +
			c*math.Sqrt(logParent/float64(child.simulations))
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

// AdvanceTree detaches and returns the child produced by the given move,
// transferring ownership of that subtree to the caller. Every sibling
// subtree is implicitly discarded when the caller drops this node. Returns
// ErrNoMatchingChild when no child matches.
func (n *Node) AdvanceTree(move game.Move) (*Node, error) {
	for _, child := range n.children {
		if child.move != nil && child.move.Equals(move) {
			child.parent = nil
			return child, nil
		}
	}
	return nil, errors.Wrapf(ErrNoMatchingChild, "move %v", move)
}

// backpropagate applies one expansion's aggregated outcome along the path to
// the root: score is the summed outcome of visits simulations, applied as a
// single atomic update from the tree's perspective.
func (n *Node) backpropagate(score float64, visits int) {
	for node := n; node != nil; node = node.parent {
		node.score += score
		node.simulations += visits
	}
}
