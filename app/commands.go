package app

import (
	"github.com/shopspring/decimal"

	"bank-ledger/shared"
)

// --- Command Struct Definitions ---
// Commands carry the account secret; the service checks it before touching
// the account.

type CreateAccountCommand struct {
	AccountID      string
	HolderName     string
	InitialBalance decimal.Decimal
	Secret         string
	Kind           shared.Kind
}

type DepositMoneyCommand struct {
	AccountID string
	Secret    string
	Amount    decimal.Decimal
}

type WithdrawMoneyCommand struct {
	AccountID string
	Secret    string
	Amount    decimal.Decimal
}

// TransferMoneyCommand authenticates the source account only.
type TransferMoneyCommand struct {
	SourceAccountID string
	SourceSecret    string
	TargetAccountID string
	Amount          decimal.Decimal
}

type AccrueInterestCommand struct {
	AccountID string
	Secret    string
}

// --- Query Structures (Input for Read Operations) ---

type GetBalanceQuery struct {
	AccountID string
	Secret    string
}

type GetHistoryQuery struct {
	AccountID string
	Secret    string
	Limit     int
	Skip      int
}
