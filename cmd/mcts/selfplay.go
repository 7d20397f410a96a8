package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lobotuerk/MonteCarloTreeSearch/config"
	"github.com/Lobotuerk/MonteCarloTreeSearch/connectfour"
	"github.com/Lobotuerk/MonteCarloTreeSearch/game"
	"github.com/Lobotuerk/MonteCarloTreeSearch/mcts"
	"github.com/Lobotuerk/MonteCarloTreeSearch/pool"
	"github.com/Lobotuerk/MonteCarloTreeSearch/tictactoe"
)

var selfplayCmd = &cobra.Command{
	Use:   "selfplay",
	Short: "Play one or more games of engine vs engine",
	Run: func(cmd *cobra.Command, args []string) {
		settings := config.Default()
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			loaded, err := config.Load(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			settings = loaded
		}
		if cmd.Flags().Changed("iterations") {
			settings.MaxIterations, _ = cmd.Flags().GetInt("iterations")
		}
		if cmd.Flags().Changed("seconds") {
			settings.MaxSeconds, _ = cmd.Flags().GetFloat64("seconds")
		}
		if cmd.Flags().Changed("strategy") {
			settings.Strategy, _ = cmd.Flags().GetString("strategy")
		}
		if cmd.Flags().Changed("ratio") {
			settings.HeuristicRatio, _ = cmd.Flags().GetFloat64("ratio")
		}
		if cmd.Flags().Changed("rollouts") {
			settings.Rollouts, _ = cmd.Flags().GetInt("rollouts")
		}
		if cmd.Flags().Changed("workers") {
			settings.Workers, _ = cmd.Flags().GetInt("workers")
		}
		if err := settings.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		gameName, _ := cmd.Flags().GetString("game")
		oStrategy, _ := cmd.Flags().GetString("o-strategy")
		if oStrategy == "" {
			oStrategy = settings.Strategy
		}
		games, _ := cmd.Flags().GetInt("games")
		showBoards, _ := cmd.Flags().GetBool("boards")
		showFeedback, _ := cmd.Flags().GetBool("feedback")

		var workers *pool.Pool
		if settings.Rollouts > 1 {
			workers = pool.New(settings.Workers)
			defer workers.Close()
		}

		tally := map[byte]int{}
		for i := 0; i < games; i++ {
			start, err := newGame(gameName)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			winner, err := playGame(start, settings, oStrategy, workers, showBoards, showFeedback)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Printf("game %d: winner %c\n", i+1, winner)
			tally[winner]++
		}
		if games > 1 {
			fmt.Printf("x: %d  o: %d  draws: %d\n", tally['x'], tally['o'], tally['d'])
		}
	},
}

func init() {
	rootCmd.AddCommand(selfplayCmd)

	selfplayCmd.Flags().String("game", "tictactoe", "Game to play: tictactoe or connectfour")
	selfplayCmd.Flags().String("config", "", "YAML file with search settings")
	selfplayCmd.Flags().Int("iterations", 0, "Search iterations per move (0 disables the cap)")
	selfplayCmd.Flags().Float64("seconds", 0, "Search seconds per move (0 disables the cap)")
	selfplayCmd.Flags().String("strategy", "", "Rollout strategy for x: random, heuristic, mixed, heavy")
	selfplayCmd.Flags().String("o-strategy", "", "Rollout strategy for o (defaults to x's)")
	selfplayCmd.Flags().Float64("ratio", 0, "Heuristic share for the mixed strategy")
	selfplayCmd.Flags().Int("rollouts", 0, "Parallel rollouts per expansion")
	selfplayCmd.Flags().Int("workers", 0, "Worker count (0 uses hardware concurrency)")
	selfplayCmd.Flags().Int("games", 1, "Number of games to play")
	selfplayCmd.Flags().Bool("boards", false, "Print the board after every move")
	selfplayCmd.Flags().Bool("feedback", false, "Print tree diagnostics after every move")
}

// winnerState is implemented by the bundled games.
type winnerState interface {
	Winner() byte
}

func newGame(name string) (game.State, error) {
	switch name {
	case "tictactoe":
		return tictactoe.New(), nil
	case "connectfour":
		return connectfour.New(), nil
	default:
		return nil, fmt.Errorf("unknown game %q", name)
	}
}

func newAgent(state game.State, settings config.Search, strategy string, workers *pool.Pool) (*mcts.Agent, error) {
	parsed, err := mcts.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	treeOptions := []mcts.Option{
		mcts.WithRolloutStrategy(parsed),
		mcts.WithHeuristicRatio(settings.HeuristicRatio),
		mcts.WithMetrics(),
	}
	if settings.Exploration > 0 {
		treeOptions = append(treeOptions, mcts.WithExplorationConstant(settings.Exploration))
	}
	if workers != nil {
		treeOptions = append(treeOptions,
			mcts.WithRollouts(settings.Rollouts), mcts.WithPool(workers))
	}
	return mcts.NewAgent(state,
		mcts.WithMaxIterations(settings.MaxIterations),
		mcts.WithMaxDuration(time.Duration(settings.MaxSeconds*float64(time.Second))),
		mcts.WithTreeOptions(treeOptions...),
	), nil
}

func playGame(start game.State, settings config.Search, oStrategy string, workers *pool.Pool, showBoards, showFeedback bool) (byte, error) {
	agentX, err := newAgent(start, settings, settings.Strategy, workers)
	if err != nil {
		return 0, err
	}
	agentO, err := newAgent(start, settings, oStrategy, workers)
	if err != nil {
		return 0, err
	}

	var lastMove game.Move
	mover, waiter := agentX, agentO
	for {
		move, err := mover.Genmove(lastMove)
		if err != nil {
			return 0, err
		}
		if move == nil {
			// mover just advanced by the final move, so it holds the
			// terminal position.
			break
		}
		if showBoards {
			fmt.Printf("%v plays:\n%v\n", move, mover.CurrentState())
		}
		if showFeedback {
			mover.Feedback()
		}
		lastMove = move
		mover, waiter = waiter, mover
	}

	final, ok := mover.CurrentState().(winnerState)
	if !ok {
		return 0, fmt.Errorf("game does not report a winner")
	}
	return final.Winner(), nil
}
