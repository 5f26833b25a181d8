package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindwell/mindwell/internal/models"
)

func newStatsCmd() *cobra.Command {
	var (
		configPath string
		periodName string
		remote     bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show mood statistics",
		Long:  "Computes streak, session counts, and average mood from the session history. Use --remote for the server-side aggregates instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, configPath, periodName, remote)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().StringVar(&periodName, "period", "all", "calendar window: week, month, year, or all")
	cmd.Flags().BoolVar(&remote, "remote", false, "show server-computed statistics")
	return cmd
}

func runStats(cmd *cobra.Command, configPath, periodName string, remote bool) error {
	period, err := models.ParsePeriod(periodName)
	if err != nil {
		return err
	}

	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if remote {
		stats, err := a.gw.MoodStatistics(cmd.Context())
		if err != nil {
			return fmt.Errorf("load statistics: %w", err)
		}
		fmt.Fprintf(out, "Sessions:   %d\n", stats.TotalSessions)
		fmt.Fprintf(out, "This month: %d\n", stats.SessionsThisMonth)
		fmt.Fprintf(out, "Streak:     %d day(s)\n", stats.StreakDays)
		fmt.Fprintf(out, "Average:    %.1f\n", stats.AverageScore)
		return nil
	}

	store, err := a.history()
	if err != nil {
		return err
	}
	if _, err := loadHistory(cmd.Context(), store); err != nil {
		return err
	}

	fmt.Fprintf(out, "Sessions (%s): %d\n", period, store.SessionsCount(period))
	fmt.Fprintf(out, "This month:    %d\n", store.SessionsThisMonth())
	fmt.Fprintf(out, "Streak:        %d day(s)\n", store.StreakDays())
	fmt.Fprintf(out, "Average mood:  %.1f\n", store.AverageMoodScore())
	return nil
}
