package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tandem/internal/orchestrator"
	"tandem/internal/orchestrator/adapters"
	"tandem/internal/runner"
)

func newRunCmd() *cobra.Command {
	var (
		driverScript    string
		navigatorScript string
		workDir         string
	)

	cmd := &cobra.Command{
		Use:   "run <instruction>",
		Short: "Run one session with scripted collaborators",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			factory := orchestrator.NewFactory(cfg, logger)
			store, closeStore, err := factory.CreateStore()
			if err != nil {
				return err
			}
			defer closeStore()

			driver, err := loadScripted(driverScript)
			if err != nil {
				return err
			}
			navigator, err := loadScripted(navigatorScript)
			if err != nil {
				return err
			}

			executor := adapters.NewLocalExecutor(workDir, nil)
			scheduler, err := factory.CreateScheduler(driver, navigator, executor, store)
			if err != nil {
				return err
			}

			result, err := scheduler.Run(ctx, args[0])
			if result != nil {
				logger.Info().
					Str("session_id", result.SessionID).
					Str("reason", result.Reason).
					Int("turns", result.TurnsUsed).
					Msg("session finished")
				fmt.Fprintf(cmd.OutOrStdout(), "session %s terminated: %s (%d turns)\n",
					result.SessionID, result.Reason, result.TurnsUsed)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&driverScript, "driver-script", "", "YAML transcript for the driver (required)")
	cmd.Flags().StringVar(&navigatorScript, "navigator-script", "", "YAML transcript for the navigator (required)")
	cmd.Flags().StringVar(&workDir, "workdir", ".", "working directory for executed commands")
	cmd.MarkFlagRequired("driver-script")
	cmd.MarkFlagRequired("navigator-script")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var (
		workDir string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "batch <tasklist.yaml>",
		Short: "Run a YAML task list as independent sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			list, err := runner.LoadTaskList(args[0])
			if err != nil {
				return err
			}

			factory := orchestrator.NewFactory(cfg, logger)
			store, closeStore, err := factory.CreateStore()
			if err != nil {
				return err
			}
			defer closeStore()

			executor := adapters.NewLocalExecutor(workDir, nil)
			results := runner.NewRunner(factory, executor, store, workers).Run(ctx, list)

			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					logger.Error().Err(res.Err).Str("task", res.Task.Name).Msg("task failed")
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: session %s terminated: %s (%d turns)\n",
					res.Task.Name, res.SessionID, res.Reason, res.TurnsUsed)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d tasks failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workDir, "workdir", ".", "working directory for executed commands")
	cmd.Flags().IntVar(&workers, "workers", 4, "maximum concurrent sessions")
	return cmd
}

func loadScripted(path string) (*adapters.ScriptedCollaborator, error) {
	script, err := adapters.LoadScript(path)
	if err != nil {
		return nil, err
	}
	return adapters.NewScriptedCollaborator(script), nil
}
