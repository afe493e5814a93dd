package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"bank-ledger/app"
	"bank-ledger/domain"
	"bank-ledger/shared"
)

// newAccountCmd represents the account command group
func (c *cli) newAccountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage bank accounts",
		Long:  `Provides commands to open accounts and list the existing ones.`,
	}
	accountCmd.AddCommand(c.newCreateCmd(), c.newListCmd())
	return accountCmd
}

func (c *cli) newCreateCmd() *cobra.Command {
	var (
		accountID  string
		holder     string
		balanceStr string
		pin        string
		kindStr    string
		rateStr    string
	)

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new account",
		Long: `Opens a new account with a holder name, initial balance and PIN.
If --id is not provided, a new UUID will be generated.
Passing --rate opens a savings account unless --kind says otherwise,
e.g., create --holder Asha --balance 500 --pin 1234 --rate 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initialBalance, err := domain.ParseAmount(balanceStr)
			if err != nil {
				return err
			}

			tag := shared.Basic
			if cmd.Flags().Changed("rate") {
				tag = shared.Savings
			}
			if kindStr != "" {
				if tag, err = shared.ParseKindTag(kindStr); err != nil {
					return err
				}
			}

			kind := shared.BasicKind()
			if tag == shared.Savings {
				rate := decimal.Zero
				if rateStr != "" {
					if rate, err = domain.ParseAmount(rateStr); err != nil {
						return fmt.Errorf("invalid interest rate: %w", err)
					}
				}
				kind = shared.SavingsKind(rate)
			} else if cmd.Flags().Changed("rate") {
				return fmt.Errorf("--rate only applies to savings accounts")
			}

			id, err := c.service.CreateAccount(app.CreateAccountCommand{
				AccountID:      accountID,
				HolderName:     holder,
				InitialBalance: initialBalance,
				Secret:         pin,
				Kind:           kind,
			})
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created: %s (%s)\n", id, kind)
			return nil
		},
	}

	createCmd.Flags().StringVar(&accountID, "id", "", "Optional unique ID for the account (UUID generated if empty)")
	createCmd.Flags().StringVar(&holder, "holder", "", "Account holder name")
	createCmd.Flags().StringVarP(&balanceStr, "balance", "b", "0", "Initial balance")
	createCmd.Flags().StringVar(&pin, "pin", "", "PIN protecting the account")
	createCmd.Flags().StringVar(&kindStr, "kind", "", "Account kind: basic or savings")
	createCmd.Flags().StringVar(&rateStr, "rate", "", "Yearly interest rate in percent (savings only)")
	_ = createCmd.MarkFlagRequired("holder")
	_ = createCmd.MarkFlagRequired("pin")
	return createCmd
}

func (c *cli) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show existing accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			accounts := c.service.ListAccounts()
			if len(accounts) == 0 {
				fmt.Fprintln(out, "No accounts available.")
				return nil
			}
			fmt.Fprintln(out, "Existing accounts:")
			for _, a := range accounts {
				fmt.Fprintf(out, "Account Number: %s, Holder Name: %s\n", a.ID, a.HolderName)
			}
			return nil
		},
	}
}
