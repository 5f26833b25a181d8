package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	var (
		configPath   string
		withSessions bool
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the account profile",
		Long:  "Shows the server-side account summary plus the locally purchased session balance.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd, configPath, withSessions)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().BoolVar(&withSessions, "sessions", false, "include the good/bad session timeline")
	return cmd
}

func runProfile(cmd *cobra.Command, configPath string, withSessions bool) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	profile, err := a.gw.FetchProfile(cmd.Context())
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	fmt.Fprintf(out, "Name:    %s\n", profile.FullName)
	if profile.Email != "" {
		fmt.Fprintf(out, "Email:   %s\n", profile.Email)
	}
	if profile.Phone != "" {
		fmt.Fprintf(out, "Phone:   %s\n", profile.Phone)
	}
	fmt.Fprintf(out, "Balance: %d session(s) on the server\n", profile.SessionBalance)

	pm, err := newPaymentManager(a)
	if err != nil {
		return err
	}
	local, err := pm.LocalBalance()
	if err != nil {
		return err
	}
	if local > 0 {
		fmt.Fprintf(out, "         %d session(s) purchased locally\n", local)
	}

	if withSessions {
		store, err := a.history()
		if err != nil {
			return err
		}
		if _, err := loadHistory(cmd.Context(), store); err != nil {
			return err
		}
		for _, s := range store.SessionsForProfile() {
			fmt.Fprintf(out, "%s  #%-5d %s\n", s.Date.Format("2006-01-02"), s.ID, s.Status.Icon())
		}
	}
	return nil
}
