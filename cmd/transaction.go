package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bank-ledger/app"
	"bank-ledger/domain"
)

// newTransactionCmd represents the transaction command group
func (c *cli) newTransactionCmd() *cobra.Command {
	transactionCmd := &cobra.Command{
		Use:   "transaction",
		Short: "Perform account transactions",
		Long:  `Provides commands for depositing, withdrawing, transferring funds and adding interest.`,
	}
	transactionCmd.AddCommand(
		c.newDepositCmd(),
		c.newWithdrawCmd(),
		c.newTransferCmd(),
		c.newInterestCmd(),
	)
	return transactionCmd
}

func (c *cli) newDepositCmd() *cobra.Command {
	var accountID, pin, amountStr string

	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit funds into an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseAmount(amountStr)
			if err != nil {
				return err
			}
			err = c.service.Deposit(app.DepositMoneyCommand{AccountID: accountID, Secret: pin, Amount: amount})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deposited: %s\n", c.money(amount))
			return nil
		},
	}

	accountFlags(depositCmd, &accountID, &pin)
	depositCmd.Flags().StringVarP(&amountStr, "amount", "a", "", "Amount to deposit")
	_ = depositCmd.MarkFlagRequired("amount")
	return depositCmd
}

func (c *cli) newWithdrawCmd() *cobra.Command {
	var accountID, pin, amountStr string

	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw funds from an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseAmount(amountStr)
			if err != nil {
				return err
			}
			err = c.service.Withdraw(app.WithdrawMoneyCommand{AccountID: accountID, Secret: pin, Amount: amount})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Withdrawn: %s\n", c.money(amount))
			return nil
		},
	}

	accountFlags(withdrawCmd, &accountID, &pin)
	withdrawCmd.Flags().StringVarP(&amountStr, "amount", "a", "", "Amount to withdraw")
	_ = withdrawCmd.MarkFlagRequired("amount")
	return withdrawCmd
}

func (c *cli) newTransferCmd() *cobra.Command {
	var fromID, pin, toID, amountStr string

	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer funds between two accounts",
		Long:  `Moves funds from a source account to a target account. Only the source PIN is required.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := domain.ParseAmount(amountStr)
			if err != nil {
				return err
			}
			_, err = c.service.TransferMoney(app.TransferMoneyCommand{
				SourceAccountID: fromID,
				SourceSecret:    pin,
				TargetAccountID: toID,
				Amount:          amount,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transferred %s from %s to %s\n", c.money(amount), fromID, toID)
			return nil
		},
	}

	transferCmd.Flags().StringVar(&fromID, "from", "", "Source account ID")
	transferCmd.Flags().StringVar(&pin, "pin", "", "Source account PIN")
	transferCmd.Flags().StringVar(&toID, "to", "", "Target account ID")
	transferCmd.Flags().StringVarP(&amountStr, "amount", "a", "", "Amount to transfer")
	for _, name := range []string{"from", "pin", "to", "amount"} {
		_ = transferCmd.MarkFlagRequired(name)
	}
	return transferCmd
}

func (c *cli) newInterestCmd() *cobra.Command {
	var accountID, pin string

	interestCmd := &cobra.Command{
		Use:   "interest",
		Short: "Add interest to a savings account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interest, err := c.service.AccrueInterest(app.AccrueInterestCommand{AccountID: accountID, Secret: pin})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Interest added: %s\n", c.money(interest))
			return nil
		},
	}

	accountFlags(interestCmd, &accountID, &pin)
	return interestCmd
}

// accountFlags registers the required --id and --pin flags.
func accountFlags(cmd *cobra.Command, accountID, pin *string) {
	cmd.Flags().StringVar(accountID, "id", "", "Account ID")
	cmd.Flags().StringVar(pin, "pin", "", "Account PIN")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("pin")
}
