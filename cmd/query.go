package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"bank-ledger/app"
	"bank-ledger/domain"
	"bank-ledger/events"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// newQueryCmd represents the query command group
func (c *cli) newQueryCmd() *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Query account information",
		Long:  `Provides commands to show an account balance and its transaction history.`,
	}
	queryCmd.AddCommand(c.newBalanceCmd(), c.newHistoryCmd())
	return queryCmd
}

func (c *cli) newBalanceCmd() *cobra.Command {
	var accountID, pin string

	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the balance of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := c.service.GetBalance(app.GetBalanceQuery{AccountID: accountID, Secret: pin})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s\n", c.money(balance))
			return nil
		},
	}

	accountFlags(balanceCmd, &accountID, &pin)
	return balanceCmd
}

func (c *cli) newHistoryCmd() *cobra.Command {
	var (
		accountID string
		pin       string
		limit     int
		skip      int
	)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show the transaction history of an account",
		Long: `Prints every recorded event of an account, oldest first.
Use --skip and --limit to page through long histories.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := c.service.GetTransactionHistory(app.GetHistoryQuery{
				AccountID: accountID,
				Secret:    pin,
				Limit:     limit,
				Skip:      skip,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Transaction History:")
			for _, event := range history {
				fmt.Fprintln(out, c.formatEvent(event))
			}
			return nil
		},
	}

	accountFlags(historyCmd, &accountID, &pin)
	historyCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries to show (0 for all)")
	historyCmd.Flags().IntVar(&skip, "skip", 0, "Number of leading entries to skip")
	return historyCmd
}

func (c *cli) formatEvent(event events.Event) string {
	base := event.GetBase()
	return fmt.Sprintf("[%s] %s", base.Timestamp.Local().Format(historyTimeLayout), event.Describe(c.cfg.CurrencySymbol))
}

func (c *cli) money(amount decimal.Decimal) string {
	return domain.FormatMoney(c.cfg.CurrencySymbol, amount)
}
