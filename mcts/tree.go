package mcts

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/seehuhn/mt19937"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"

	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
	"github.com/Lobotuerk/MonteCarloTreeSearch/pool"
)

// DefaultExplorationConstant is the UCT exploration constant, sqrt(2).
const DefaultExplorationConstant = math.Sqrt2

// Option configures a Tree.
type Option func(t *Tree)

// WithExplorationConstant sets the UCT exploration constant used by the
// tree policy. Non-positive values are ignored.
func WithExplorationConstant(c float64) Option {
	return func(t *Tree) {
		if c > 0 {
			t.exploration = c
		}
	}
}

// WithRolloutStrategy sets the simulation strategy.
func WithRolloutStrategy(strategy RolloutStrategy) Option {
	return func(t *Tree) {
		t.config.strategy = strategy
	}
}

// WithHeuristicRatio sets the heuristic share for StrategyMixed, clamped to
// [0, 1].
func WithHeuristicRatio(ratio float64) Option {
	return func(t *Tree) {
		t.config.heuristicRatio = clampRatio(ratio)
	}
}

// WithRollouts sets how many simulations each expansion runs. Counts above
// one require a pool to take effect.
func WithRollouts(rollouts int) Option {
	return func(t *Tree) {
		if rollouts > 0 {
			t.config.rollouts = rollouts
		}
	}
}

// WithPool attaches a worker pool for parallel rollouts. The tree does not
// own the pool; closing it is the caller's job.
func WithPool(p *pool.Pool) Option {
	return func(t *Tree) {
		t.pool = p
	}
}

// WithSeed makes the tree's own generator deterministic. It does not affect
// pool workers, which keep their independent generators.
func WithSeed(seed int64) Option {
	return func(t *Tree) {
		t.rng = rand.New(newTwister(seed))
	}
}

// WithMetrics enables search statistics collection.
func WithMetrics() Option {
	return func(t *Tree) {
		t.metrics = NewMetricsCollector()
	}
}

// Tree owns the root node and with it the whole search tree. A Tree must be
// grown and advanced by a single goroutine at a time; only rollout bodies
// run concurrently, and those touch no tree structure.
type Tree struct {
	root        *Node
	exploration float64
	config      rolloutConfig
	pool        *pool.Pool
	rng         *rand.Rand
	metrics     MetricsCollector
}

// NewTree builds a single-node tree around the starting state.
func NewTree(state game.State, options ...Option) *Tree {
	if state == nil {
		panic("NewTree requires a starting state")
	}
	t := &Tree{
		exploration: DefaultExplorationConstant,
		config:      rolloutConfig{strategy: StrategyRandom, rollouts: 1},
		metrics:     NewNoMetricsCollector(),
	}
	for _, option := range options {
		option(t)
	}
	if t.rng == nil {
		t.rng = rand.New(newTwister(time.Now().UnixNano()))
	}
	t.root = newNode(nil, state, nil)
	return t
}

func newTwister(seed int64) rand.Source {
	src := mt19937.New()
	src.Seed(seed)
	return src
}

func clampRatio(ratio float64) float64 {
	if ratio < 0.0 {
		return 0.0
	}
	if ratio > 1.0 {
		return 1.0
	}
	return ratio
}

// Select walks the tree policy from the root: follow the best UCT child
// until reaching a node that still has untried moves, is terminal, or is a
// dead end.
func (t *Tree) Select(c float64) *Node {
	node := t.root
	for node.IsFullyExpanded() && !node.IsTerminal() {
		next := node.SelectBestChild(c)
		if next == nil {
			// Dead end: non-terminal node without children, see newNode.
			break
		}
		node = next
	}
	return node
}

// GrowTree runs select-expand-rollout-backpropagate cycles until either
// budget is exhausted. A zero or negative budget disables that limit; at
// least one limit must be set. The time budget is checked between
// iterations only, so one slow rollout can overrun it.
func (t *Tree) GrowTree(maxIterations int, maxDuration time.Duration) SearchMetric {
	if maxIterations <= 0 && maxDuration <= 0 {
		panic("GrowTree requires an iteration or time budget")
	}

	t.metrics.Start()
	start := time.Now()
	for i := 0; maxIterations <= 0 || i < maxIterations; i++ {
		if maxDuration > 0 && time.Since(start) >= maxDuration {
			break
		}

		node := t.Select(t.exploration)
		if node.IsTerminal() {
			// Terminal frontier: simulate in place, the outcome is
			// deterministic.
			t.metrics.AddTerminalVisit()
		} else if !node.IsFullyExpanded() {
			child, err := node.Expand()
			if err != nil {
				// Illegal move dropped; spend the iteration and move on.
				t.metrics.AddIteration()
				continue
			}
			node = child
		}
		t.rollout(node)
		t.metrics.AddIteration()
	}
	return t.metrics.Complete()
}

// rollout runs the configured number of simulations for one expansion and
// backpropagates their aggregate as a single update.
func (t *Tree) rollout(n *Node) {
	k := t.config.rollouts
	if k <= 1 || t.pool == nil {
		flavor := t.config.resolve(t.rng.Float64())
		outcome := runPlayout(n.state, flavor, t.rng)
		n.backpropagate(outcome, 1)
		t.metrics.AddRollouts(1)
		return
	}

	// Each job simulates from an immutable snapshot and writes to its own
	// slot, so the only synchronization needed is the completion barrier.
	snapshot := game.Clone(n.state)
	scores := make([]float64, k)
	handles := make([]pool.Handle, k)
	config := t.config
	for i := 0; i < k; i++ {
		i := i
		handles[i] = t.pool.Submit(func(rng *rand.Rand) {
			flavor := config.resolve(rng.Float64())
			scores[i] = runPlayout(snapshot, flavor, rng)
		})
	}
	pool.AwaitAll(handles)

	mean := stat.Mean(scores, nil)
	n.backpropagate(mean*float64(k), k)
	t.metrics.AddRollouts(int64(k))
}

// SelectBestChild returns the root child with the most visits — the robust
// recommendation once search has converged — or nil when the root has none.
func (t *Tree) SelectBestChild() *Node {
	var best *Node
	maxVisits := -1
	for _, child := range t.root.children {
		if child.simulations > maxVisits {
			maxVisits = child.simulations
			best = child
		}
	}
	return best
}

// AdvanceTree commits a move. When the root has a matching child, that
// subtree becomes the whole tree and its statistics are kept (reused=true).
// Otherwise the tree is rebuilt from scratch by applying the move to the
// root state (reused=false) — recovery is silent apart from a warning, but
// observable through the return value for callers that want strict move
// validation. An error is returned only when the rebuild itself fails, in
// which case the tree is left unchanged.
func (t *Tree) AdvanceTree(move game.Move) (reused bool, err error) {
	if move == nil {
		return false, errors.New("advance requires a move")
	}

	child, err := t.root.AdvanceTree(move)
	if err == nil {
		t.root = child
		t.metrics.SetTreeReused(true)
		return true, nil
	}

	log.Warn().Msgf("no subtree for move %v, rebuilding tree from scratch", move)
	next, err := t.root.state.NextState(move)
	if err != nil {
		return false, errors.Wrapf(err, "rebuild tree with move %v", move)
	}
	t.root = newNode(nil, next, nil)
	t.metrics.SetTreeReused(false)
	return false, nil
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int { return t.root.size }

// Root returns the root node for inspection.
func (t *Tree) Root() *Node { return t.root }

// CurrentState returns the root position. Callers must treat it as
// read-only.
func (t *Tree) CurrentState() game.State { return t.root.state }

// SetRolloutStrategy changes the simulation strategy for subsequent growth
// calls.
func (t *Tree) SetRolloutStrategy(strategy RolloutStrategy) {
	t.config.strategy = strategy
}

// RolloutStrategy returns the active simulation strategy.
func (t *Tree) RolloutStrategy() RolloutStrategy { return t.config.strategy }

// SetHeuristicRatio changes the heuristic share for StrategyMixed, clamped
// to [0, 1].
func (t *Tree) SetHeuristicRatio(ratio float64) {
	t.config.heuristicRatio = clampRatio(ratio)
}

// HeuristicRatio returns the heuristic share used by StrategyMixed.
func (t *Tree) HeuristicRatio() float64 { return t.config.heuristicRatio }

// PrintStats writes a diagnostic summary of the root and its children,
// most-visited first.
func (t *Tree) PrintStats(w io.Writer) {
	root := t.root
	selfSideTurn := root.state.IsSelfSideTurn()
	fmt.Fprintf(w, "tree size: %d | root visits: %d | root winrate: %.3f\n",
		root.size, root.simulations, root.Winrate(selfSideTurn))

	children := slices.Clone(root.children)
	slices.SortFunc(children, func(a, b *Node) int {
		return b.simulations - a.simulations
	})

	winrates := make([]float64, 0, len(children))
	for _, child := range children {
		winrate := child.Winrate(selfSideTurn)
		winrates = append(winrates, winrate)
		fmt.Fprintf(w, "  %-12v visits: %-7d winrate: %.3f\n",
			child.move, child.simulations, winrate)
	}
	if len(winrates) > 1 {
		fmt.Fprintf(w, "winrate spread: %.3f\n", stat.StdDev(winrates, nil))
	}
}
