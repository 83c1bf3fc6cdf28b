package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mistward/paperfuse/internal/app"
	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/internal/output"
)

var (
	runCandidates string
	runProfile    string
	runOutput     string
	runMark       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one fusion pass and print the ranking",
	Long: `Run loads the candidate pool and profile, executes one fusion pass and
prints the ranked result. With --candidates the pool is read from a JSON
document instead of Postgres; --profile does the same for the profile.
Without --mark the pass is a dry run: nothing is recorded or published.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		application, err := app.New(cfg, app.Options{
			CandidatesFile: runCandidates,
			ProfileFile:    runProfile,
			Mark:           runMark,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		result, runErr := application.Runner().RunPass(ctx)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Shutdown(shutdownCtx); err != nil {
			application.Logger.WithError(err).Error("Error during shutdown")
		}

		if runErr != nil {
			return runErr
		}

		return output.Render(cmd.OutOrStdout(), result, runOutput)
	},
}

func init() {
	runCmd.Flags().StringVar(&runCandidates, "candidates", "", "candidate pool JSON document (default: Postgres)")
	runCmd.Flags().StringVar(&runProfile, "profile", "", "user profile JSON document")
	runCmd.Flags().StringVar(&runOutput, "output", "table", "output format: table or json")
	runCmd.Flags().BoolVar(&runMark, "mark", false, "record surfacing and publish the pass event")

	rootCmd.AddCommand(runCmd)
}
