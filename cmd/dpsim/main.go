package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/dpsim/internal/config"
	"github.com/san-kum/dpsim/internal/logging"
	"github.com/san-kum/dpsim/internal/storage"
	"github.com/san-kum/dpsim/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	theme      string

	log = logrus.New()
)

// main registers the dpsim commands and executes the root command. With no
// subcommand the preset picker and live view are started.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("command failed")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dpsim",
		Short:         "double pendulum simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logLevel
			if !cmd.Flags().Changed("log-level") && configFile != "" {
				if cfg, err := config.Load(configFile); err == nil && cfg.LogLevel != "" {
					level = cfg.LogLevel
				}
			}
			log = logging.New(level, os.Stderr)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker(theme)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dpsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme for the live view")

	rootCmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newShowCmd(),
		newPlotCmd(),
		newPoincareCmd(),
		newEnergyCmd(),
		newRenderCmd(),
		newDeleteCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newCompareCmd(),
		newConvergeCmd(),
		newLyapunovCmd(),
		newSweepCmd(),
		newLiveCmd(),
		newPresetsCmd(),
		newInitConfigCmd(),
		newBatchCmd(),
		newFlipMapCmd(),
	)
	return rootCmd
}

// openStore opens the catalog under --data; callers close it.
func openStore(ctx context.Context) (*storage.Store, error) {
	st := storage.New(dataDir).WithLogger(log)
	if err := st.Init(ctx); err != nil {
		return nil, fmt.Errorf("open store %s: %w", dataDir, err)
	}
	return st, nil
}

// withRun resolves an id prefix and hands the open store and full id to fn.
func withRun(ctx context.Context, prefix string, fn func(st *storage.Store, id string) error) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Resolve(ctx, prefix)
	if err != nil {
		return err
	}
	return fn(st, id)
}
