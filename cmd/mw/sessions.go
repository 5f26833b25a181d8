package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mindwell/mindwell/internal/history"
	"github.com/mindwell/mindwell/internal/models"
)

func newSessionsCmd() *cobra.Command {
	var (
		configPath string
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List counseling sessions",
		Long:  "Shows the session history, newest first. Use --refresh to bypass the local cache.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(cmd, configPath, refresh)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and reload from the server")
	return cmd
}

func runSessions(cmd *cobra.Command, configPath string, refresh bool) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.history()
	if err != nil {
		return err
	}

	var snap history.Snapshot
	if refresh {
		snap, err = refreshHistory(cmd.Context(), store)
	} else {
		snap, err = loadHistory(cmd.Context(), store)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(snap.Sessions) == 0 {
		fmt.Fprintln(out, "No sessions yet")
		return nil
	}

	for _, s := range snap.Sessions {
		printSession(out, s)
	}
	fmt.Fprintf(out, "%d sessions\n", len(snap.Sessions))
	return nil
}

func printSession(out io.Writer, s models.Session) {
	fmt.Fprintf(out, "%s  #%-5d %-10s %s\n", s.Date.Format("2006-01-02"), s.ID, s.Mood.Title(), s.Note)
}
