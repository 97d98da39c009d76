package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "compound-sim",
	Short: "Compound Poisson process lab",
	Long:  "compound-sim is an interactive teaching tool for the compound Poisson process: explore a sample path and the Monte Carlo distribution of its terminal value.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
}
