// Command tandem runs, replays, and inspects two-party orchestration
// sessions.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tandem/internal/config"
)

var (
	cfgPath string
	cfg     *config.Config
	logger  zerolog.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "tandem",
		Short:         "Two-party driver/navigator session orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded

			level, err := zerolog.ParseLevel(cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
			}
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Str("app", config.DefaultAppName).Logger()
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")

	root.AddCommand(
		newRunCmd(),
		newBatchCmd(),
		newReplayCmd(),
		newValidateCmd(),
		newWatchCmd(),
		newListCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
