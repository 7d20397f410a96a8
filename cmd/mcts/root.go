package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcts",
	Short: "Monte Carlo Tree Search demo driver",
	Long: `Runs the generic MCTS engine against the bundled example games
(tic-tac-toe and Connect Four) in self-play.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Log recoverable engine events")
}
