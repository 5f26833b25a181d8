package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mindwell/mindwell/internal/prefs"
)

func newLoginCmd() *cobra.Command {
	var (
		configPath string
		login      string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the counseling backend",
		Long:  "Authenticates against the backend and saves the session locally. Prompts for credentials not given as flags.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, configPath, login, password)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().StringVarP(&login, "user", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func runLogin(cmd *cobra.Command, configPath, login, password string) error {
	out := cmd.OutOrStdout()

	if login == "" {
		fmt.Fprint(out, "Login: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read login: %w", err)
		}
		login = strings.TrimSpace(line)
	}
	if password == "" {
		fmt.Fprint(out, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.gw.Login(cmd.Context(), login, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := a.store.SetJSON(prefs.KeyAuthToken, result.Token); err != nil {
		return err
	}
	if err := a.store.SetJSON(prefs.KeyAuthID, result.ID); err != nil {
		return err
	}

	fmt.Fprintf(out, "Signed in as %s\n", login)
	return showFirstRunNotice(a, out)
}

// showFirstRunNotice prints the wellbeing disclaimer once, on the first
// successful login on this machine. Signing in past the notice records
// acceptance.
func showFirstRunNotice(a *app, out io.Writer) error {
	seen, err := a.store.GetBool(prefs.KeySeenOnboarding)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Mindwell is a self-help companion, not a medical service.")
	fmt.Fprintln(out, "If you are in crisis, contact your local emergency services.")

	if err := a.store.SetBool(prefs.KeySeenOnboarding, true); err != nil {
		return err
	}
	return a.store.SetBool(prefs.KeyAcceptedDisclaimer, true)
}

func newRegisterCmd() *cobra.Command {
	var (
		configPath string
		login      string
		password   string
		fullName   string
		email      string
		phone      string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			fields := map[string]string{
				"login":    login,
				"password": password,
				"fullName": fullName,
				"email":    email,
				"phone":    phone,
			}
			if err := a.gw.Register(cmd.Context(), fields); err != nil {
				return fmt.Errorf("register: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created; run `mw login` to sign in\n", strings.TrimSpace(login))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	cmd.Flags().StringVarP(&login, "user", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Delete(prefs.KeyAuthToken); err != nil {
				return err
			}
			if err := a.store.Delete(prefs.KeyAuthID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	return cmd
}
