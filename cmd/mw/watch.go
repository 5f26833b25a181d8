package main

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindwell/mindwell/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		configPath  string
		cronExpr    string
		intervalSec int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the session history in real-time",
		Long:  "Refreshes the session history on a schedule and reports changes as they land. Ctrl+C to stop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatchCmd(cmd, configPath, cronExpr, intervalSec)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "5-field cron schedule overriding the configured interval")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "refresh interval in seconds (overrides config)")
	return cmd
}

func runWatchCmd(cmd *cobra.Command, configPath, cronExpr string, intervalSec int) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.history()
	if err != nil {
		return err
	}

	if cronExpr == "" {
		cronExpr = a.cfg.Watch.Cron
	}
	if intervalSec == 0 {
		intervalSec = a.cfg.Watch.IntervalSec
	}
	w, err := watch.New(watch.Opts{
		Store:    store,
		Out:      cmd.OutOrStdout(),
		Interval: time.Duration(intervalSec) * time.Second,
		Cron:     cronExpr,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
