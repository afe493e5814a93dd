package domain

import (
	"iter"

	"github.com/shopspring/decimal"

	"bank-ledger/events"
)

// Session is proof that the caller presented the account secret. It is only
// produced by Account.Open and is the sole way to move funds on a single
// account.
type Session struct {
	account *Account
}

func (s *Session) AccountID() string {
	return s.account.id
}

func (s *Session) Balance() decimal.Decimal {
	return s.account.balance
}

// Deposit adds a positive amount to the balance.
func (s *Session) Deposit(amount decimal.Decimal) error {
	return s.account.handleDeposit(amount)
}

// Withdraw removes a positive amount no larger than the balance.
func (s *Session) Withdraw(amount decimal.Decimal) error {
	return s.account.handleWithdraw(amount)
}

// AccrueInterest credits balance * rate / 100 to a savings account and
// returns the credited interest.
func (s *Session) AccrueInterest() (decimal.Decimal, error) {
	return s.account.handleAccrueInterest()
}

func (s *Session) History() iter.Seq[events.Event] {
	return s.account.History()
}
