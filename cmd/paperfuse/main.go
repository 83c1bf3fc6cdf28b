// Package main is the entry point for the paperfuse CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "paperfuse",
	Short: "Research-paper recommendation fusion engine",
	Long: `paperfuse ranks a pool of candidate research papers against a single user's
interest profile. Each enabled scoring strategy produces its own ranking,
filter strategies veto or downweight candidates, and Reciprocal Rank Fusion
merges what remains into one ordered list.

Candidates and the profile come from Postgres or from JSON documents. "run"
executes one pass and prints it; "daemon" repeats passes on a schedule,
recording surfacings and publishing an event per pass.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
