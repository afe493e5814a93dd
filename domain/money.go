package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts operator input into an amount. It only checks the
// syntax; sign rules belong to the individual operations.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return amount, nil
}

// FormatMoney renders an amount with two decimals behind the currency symbol.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

func requirePositive(operation string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s amount must be positive: %s", ErrInvalidAmount, operation, amount.String())
	}
	return nil
}

// interestOn returns balance * ratePercent / 100.
func interestOn(balance, ratePercent decimal.Decimal) decimal.Decimal {
	return balance.Mul(ratePercent).Div(hundred)
}
