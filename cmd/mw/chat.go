package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindwell/mindwell/internal/models"
)

func newChatCmd() *cobra.Command {
	var (
		configPath string
		rating     int
		note       string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open or resume a counseling session",
		Long:  "Opens a chat session on the server. For a brand-new session, --mood records the pre-session check-in.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, configPath, rating, note)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().IntVar(&rating, "mood", 0, "pre-session mood rating 1-5")
	cmd.Flags().StringVarP(&note, "note", "n", "", "optional note for the mood check-in")
	return cmd
}

func runChat(cmd *cobra.Command, configPath string, rating int, note string) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.history()
	if err != nil {
		return err
	}

	var mood *models.MoodLevel
	if rating != 0 {
		if rating < 1 || rating > 5 {
			return fmt.Errorf("mood rating %d out of range 1-5", rating)
		}
		m := models.MoodFromScore(rating)
		mood = &m
	}

	info, err := store.StartChatSession(cmd.Context(), mood, note)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if info.IsNew {
		fmt.Fprintf(out, "Started session #%d\n", info.ID)
	} else {
		fmt.Fprintf(out, "Resumed session #%d\n", info.ID)
	}
	return nil
}
