package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tandem/internal/conversation"
	"tandem/internal/orchestrator"
	"tandem/internal/trajectory"
)

func newReplayCmd() *cobra.Command {
	var viewer string

	cmd := &cobra.Command{
		Use:   "replay <session-id>",
		Short: "Print a stored session, optionally as one participant saw it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			factory := orchestrator.NewFactory(cfg, logger)
			store, closeStore, err := factory.CreateStore()
			if err != nil {
				return err
			}
			defer closeStore()

			artifact, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			messages := artifact.Messages
			if viewer != "" {
				role := conversation.Author(viewer)
				if !role.Valid() {
					return fmt.Errorf("invalid viewer %q: must be driver or navigator", viewer)
				}
				messages = artifact.View(role)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "session %s — %s (%d turns)\n\n",
				artifact.SessionID, artifact.SessionInfo.TerminationReason, artifact.SessionInfo.TurnsUsed)
			for _, msg := range messages {
				author := string(msg.Author)
				if author == "" {
					author = "session"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%3d] %-9s %-15s %s\n",
					msg.TurnIndex, author, msg.Kind, msg.Content)
				if len(msg.Auxiliary) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "      reasoning: %s\n", string(msg.Auxiliary))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&viewer, "as", "", "project the view of one participant (driver|navigator)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <artifact.json>",
		Short: "Validate a trajectory artifact against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := trajectory.Validate(json.RawMessage(data)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (format %s)\n", args[0], trajectory.FormatVersion)
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and validate trajectory artifacts as they land",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cfg.Trajectory.Dir
			if len(args) == 1 {
				dir = args[0]
			}

			events, err := trajectory.Watch(cmd.Context(), dir, os.ReadFile)
			if err != nil {
				return err
			}

			logger.Info().Str("dir", dir).Msg("watching for trajectories")
			for ev := range events {
				if ev.Err != nil {
					logger.Error().Err(ev.Err).Str("session_id", ev.SessionID).Msg("invalid trajectory")
					continue
				}
				logger.Info().Str("session_id", ev.SessionID).Str("path", ev.Path).Msg("trajectory recorded")
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored session IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			factory := orchestrator.NewFactory(cfg, logger)
			store, closeStore, err := factory.CreateStore()
			if err != nil {
				return err
			}
			defer closeStore()

			ids, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
