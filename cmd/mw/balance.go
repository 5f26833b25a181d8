package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindwell/mindwell/internal/payment"
)

// newPaymentManager builds the payment manager over the app's store and
// gateway.
func newPaymentManager(a *app) (*payment.Manager, error) {
	return payment.New(payment.Opts{Store: a.store, Confirmer: a.gw})
}

func newBalanceCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the local session balance and purchase history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalance(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")

	cmd.AddCommand(newBalanceBuyCmd())
	cmd.AddCommand(newBalanceRestoreCmd())
	return cmd
}

func runBalance(cmd *cobra.Command, configPath string) error {
	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	pm, err := newPaymentManager(a)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	balance, err := pm.LocalBalance()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Local balance: %d session(s)\n", balance)

	history, err := pm.History()
	if err != nil {
		return err
	}
	for _, rec := range history {
		fmt.Fprintf(out, "%s  %-16s %2d sessions  %s\n", rec.Date.Format("2006-01-02"), rec.Name, rec.Sessions, rec.Price)
	}

	fmt.Fprintln(out, "\nAvailable packages:")
	for _, p := range payment.Catalog {
		marker := " "
		if p.Popular {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-16s %2d sessions  %s  (%s)\n", marker, p.Name, p.Sessions, p.Display, p.ID)
	}
	return nil
}

func newBalanceBuyCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "buy <package-id>",
		Short: "Purchase a session package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			pm, err := newPaymentManager(a)
			if err != nil {
				return err
			}
			rec, err := pm.Purchase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			balance, err := pm.LocalBalance()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purchased %s (+%d sessions); balance is now %d\n", rec.Name, rec.Sessions, balance)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	return cmd
}

func newBalanceRestoreCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Recompute the balance from purchase history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			pm, err := newPaymentManager(a)
			if err != nil {
				return err
			}
			total, err := pm.Restore()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored balance: %d session(s)\n", total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mindwell config file")
	return cmd
}
