package mcts

import (
	"io"
	"os"
	"time"

	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
)

// AgentOption configures an Agent.
type AgentOption func(a *Agent)

// WithMaxIterations caps the number of search iterations per move. Zero or
// negative disables the cap.
func WithMaxIterations(iterations int) AgentOption {
	return func(a *Agent) {
		a.maxIterations = iterations
	}
}

// WithMaxDuration caps the wall-clock search time per move. Zero or
// negative disables the cap.
func WithMaxDuration(duration time.Duration) AgentOption {
	return func(a *Agent) {
		a.maxDuration = duration
	}
}

// WithTreeOptions forwards options to the agent's tree.
func WithTreeOptions(options ...Option) AgentOption {
	return func(a *Agent) {
		a.treeOptions = append(a.treeOptions, options...)
	}
}

// WithFeedbackWriter redirects Feedback output, which defaults to stdout.
func WithFeedbackWriter(w io.Writer) AgentOption {
	return func(a *Agent) {
		if w != nil {
			a.out = w
		}
	}
}

// Agent binds a tree to a fixed search budget and offers one-call move
// generation. The budgets default to 100000 iterations and 30 seconds,
// whichever runs out first.
type Agent struct {
	tree          *Tree
	maxIterations int
	maxDuration   time.Duration
	treeOptions   []Option
	out           io.Writer
}

// NewAgent builds an agent searching from the starting state.
func NewAgent(state game.State, options ...AgentOption) *Agent {
	a := &Agent{
		maxIterations: 100000,
		maxDuration:   30 * time.Second,
		out:           os.Stdout,
	}
	for _, option := range options {
		option(a)
	}
	if a.maxIterations <= 0 && a.maxDuration <= 0 {
		panic("NewAgent requires an iteration or time budget")
	}
	a.tree = NewTree(state, a.treeOptions...)
	return a
}

// Genmove advances the tree by the opponent's move when given, grows the
// tree within the agent's budget, commits the most-visited child's move and
// returns it. Returns a nil move when the game is already over.
func (a *Agent) Genmove(enemyMove game.Move) (game.Move, error) {
	if enemyMove != nil {
		if _, err := a.tree.AdvanceTree(enemyMove); err != nil {
			return nil, err
		}
	}

	if a.tree.CurrentState().IsTerminal() {
		return nil, nil
	}

	a.tree.GrowTree(a.maxIterations, a.maxDuration)

	best := a.tree.SelectBestChild()
	if best == nil {
		return nil, nil
	}
	move := best.Move()
	if _, err := a.tree.AdvanceTree(move); err != nil {
		return nil, err
	}
	return move, nil
}

// Feedback prints presentation-only diagnostics for the current tree.
func (a *Agent) Feedback() {
	a.tree.PrintStats(a.out)
}

// Tree exposes the underlying tree for callers that need direct control.
func (a *Agent) Tree() *Tree { return a.tree }

// CurrentState returns the agent's view of the game. Callers must treat it
// as read-only.
func (a *Agent) CurrentState() game.State { return a.tree.CurrentState() }

// SetRolloutStrategy changes the simulation strategy for subsequent moves.
func (a *Agent) SetRolloutStrategy(strategy RolloutStrategy) {
	a.tree.SetRolloutStrategy(strategy)
}

// RolloutStrategy returns the active simulation strategy.
func (a *Agent) RolloutStrategy() RolloutStrategy { return a.tree.RolloutStrategy() }

// SetHeuristicRatio changes the heuristic share for StrategyMixed.
func (a *Agent) SetHeuristicRatio(ratio float64) {
	a.tree.SetHeuristicRatio(ratio)
}

// HeuristicRatio returns the heuristic share used by StrategyMixed.
func (a *Agent) HeuristicRatio() float64 { return a.tree.HeuristicRatio() }
