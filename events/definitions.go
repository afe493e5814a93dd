package events

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bank-ledger/shared"
)

type AccountCreatedEvent struct {
	BaseEvent
	HolderName     string          `json:"holderName"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Kind           shared.KindTag  `json:"kind"`
	InterestRate   decimal.Decimal `json:"interestRate"`
}

func (e AccountCreatedEvent) Describe(symbol string) string {
	return fmt.Sprintf("Account created with initial balance: %s%s", symbol, e.InitialBalance.StringFixed(2))
}

type DepositMadeEvent struct {
	BaseEvent
	Amount decimal.Decimal `json:"amount"`
}

func (e DepositMadeEvent) Describe(symbol string) string {
	return fmt.Sprintf("Deposited: %s%s", symbol, e.Amount.StringFixed(2))
}

type WithdrawalMadeEvent struct {
	BaseEvent
	Amount decimal.Decimal `json:"amount"`
}

func (e WithdrawalMadeEvent) Describe(symbol string) string {
	return fmt.Sprintf("Withdrawn: %s%s", symbol, e.Amount.StringFixed(2))
}

// InterestAccruedEvent credits interest to a savings account. It is the
// deposit-style entry of an accrual.
type InterestAccruedEvent struct {
	BaseEvent
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"`
}

func (e InterestAccruedEvent) Describe(symbol string) string {
	return fmt.Sprintf("Interest added at %s%%: %s%s", e.Rate.String(), symbol, e.Amount.StringFixed(2))
}

// TransferSentEvent annotates the source side of a transfer. The balance
// effect is carried by the WithdrawalMadeEvent recorded just before it.
type TransferSentEvent struct {
	BaseEvent
	TransferID      string          `json:"transferId"`
	TargetAccountID string          `json:"targetAccountId"`
	Amount          decimal.Decimal `json:"amount"`
}

func (e TransferSentEvent) Describe(symbol string) string {
	return fmt.Sprintf("Transferred %s%s to account %s", symbol, e.Amount.StringFixed(2), e.TargetAccountID)
}

// TransferReceivedEvent annotates the target side of a transfer. The balance
// effect is carried by the DepositMadeEvent recorded just before it.
type TransferReceivedEvent struct {
	BaseEvent
	TransferID      string          `json:"transferId"`
	SourceAccountID string          `json:"sourceAccountId"`
	Amount          decimal.Decimal `json:"amount"`
}

func (e TransferReceivedEvent) Describe(symbol string) string {
	return fmt.Sprintf("Received %s%s from account %s", symbol, e.Amount.StringFixed(2), e.SourceAccountID)
}
