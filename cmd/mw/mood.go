package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindwell/mindwell/internal/models"
)

func newMoodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mood",
		Short: "Manage the local mood journal",
	}

	cmd.AddCommand(newMoodAddCmd())
	cmd.AddCommand(newMoodListCmd())
	cmd.AddCommand(newMoodDeleteCmd())
	return cmd
}

func newMoodAddCmd() *cobra.Command {
	var (
		configPath string
		note       string
	)

	cmd := &cobra.Command{
		Use:   "add <rating>",
		Short: "Record a mood check-in (rating 1-5)",
		Long:  "Saves a mood entry locally and mirrors it to the server best-effort. The local entry stays even when the server is unreachable.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("rating must be a number 1-5, got %q", args[0])
			}
			return runMoodAdd(cmd, configPath, rating, note)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().StringVarP(&note, "note", "n", "", "optional note")
	return cmd
}

func runMoodAdd(cmd *cobra.Command, configPath string, rating int, note string) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	j, err := a.journal()
	if err != nil {
		return err
	}

	entry, err := j.Add(cmd.Context(), rating, note)
	if err != nil {
		return err
	}

	// The process exits right after this command; give the upstream mirror a
	// bounded window to get its request out. Failures stay log-only.
	flushCtx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
	defer cancel()
	j.Flush(flushCtx)

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s (%s)\n", entry.Mood().Title(), entry.ID[:8])
	return nil
}

func newMoodListCmd() *cobra.Command {
	var (
		configPath string
		periodName string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mood check-ins",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMoodList(cmd, configPath, periodName)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().StringVar(&periodName, "period", "all", "calendar window: week, month, year, or all")
	return cmd
}

func runMoodList(cmd *cobra.Command, configPath, periodName string) error {
	period, err := models.ParsePeriod(periodName)
	if err != nil {
		return err
	}

	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	j, err := a.journal()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	entries := j.List(period)
	if len(entries) == 0 {
		fmt.Fprintln(out, "No mood entries")
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-10s %s", e.Date.Format("2006-01-02 15:04"), e.Mood().Title(), e.ID[:8])
		if e.Note != "" {
			line += "  " + e.Note
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "%d entries, %d good day(s), streak %d\n", len(entries), j.GoodDaysCount(period), j.StreakDays())
	return nil
}

func newMoodDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a mood check-in",
		Long:  "Removes a local entry by id (prefixes accepted). The server copy, if any, is left alone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMoodDelete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	return cmd
}

func runMoodDelete(cmd *cobra.Command, configPath, id string) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	j, err := a.journal()
	if err != nil {
		return err
	}

	full, err := resolveEntryID(j, id)
	if err != nil {
		return err
	}
	if err := j.Delete(full); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}

// resolveEntryID expands a unique id prefix to the full entry id.
func resolveEntryID(j interface {
	List(models.Period) []models.MoodEntry
}, prefix string) (string, error) {
	var match string
	for _, e := range j.List(models.PeriodAll) {
		if e.ID == prefix {
			return e.ID, nil
		}
		if len(prefix) >= 4 && len(e.ID) >= len(prefix) && e.ID[:len(prefix)] == prefix {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = e.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no entry with id %q", prefix)
	}
	return match, nil
}
