package domain

import (
	"crypto/subtle"
	"fmt"
	"iter"

	"github.com/shopspring/decimal"

	"bank-ledger/events"
	"bank-ledger/shared"
)

// Account is the aggregate root for one holder's funds. Its state is only
// ever changed by applying events, and every applied event is kept in the
// account history.
type Account struct {
	id         string
	holderName string
	balance    decimal.Decimal
	kind       shared.Kind
	secret     string
	version    int

	history []events.Event
}

// NewAccount opens an account and records its creation event.
func NewAccount(id, holderName string, initialBalance decimal.Decimal, secret string, kind shared.Kind) (*Account, error) {
	if id == "" {
		return nil, NewDomainError("account ID cannot be empty")
	}
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance cannot be negative: %s", ErrInvalidAmount, initialBalance.String())
	}
	rate, savings := kind.InterestRate()
	if savings && rate.IsNegative() {
		return nil, NewDomainError("interest rate cannot be negative: %s", rate.String())
	}

	a := &Account{secret: secret}
	event := events.AccountCreatedEvent{
		BaseEvent:      events.NewBaseEvent(id, 1, events.AccountCreatedType),
		HolderName:     holderName,
		InitialBalance: initialBalance,
		Kind:           kind.Tag(),
		InterestRate:   rate,
	}
	if err := a.ApplyEvent(event); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Account) ID() string               { return a.id }
func (a *Account) HolderName() string       { return a.holderName }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) Kind() shared.Kind        { return a.kind }
func (a *Account) Version() int             { return a.version }
func (a *Account) HistoryLen() int          { return len(a.history) }

// Authenticate reports whether candidate is the account secret. It never
// changes the account.
func (a *Account) Authenticate(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(a.secret), []byte(candidate)) == 1
}

// Open authenticates the caller and returns the capability needed for every
// state-changing operation on the account.
func (a *Account) Open(candidate string) (*Session, error) {
	if !a.Authenticate(candidate) {
		return nil, fmt.Errorf("%w: account %s", ErrAuthenticationFailed, a.id)
	}
	return &Session{account: a}, nil
}

// History yields the recorded events in the order they were applied. Each
// range over the sequence starts from the first event and stops at the last
// event present when the range began.
func (a *Account) History() iter.Seq[events.Event] {
	return func(yield func(events.Event) bool) {
		n := len(a.history)
		for i := 0; i < n; i++ {
			if !yield(a.history[i]) {
				return
			}
		}
	}
}

// --- Command Handlers ---

func (a *Account) handleDeposit(amount decimal.Decimal) error {
	if err := requirePositive("deposit", amount); err != nil {
		return err
	}
	return a.ApplyEvent(events.DepositMadeEvent{
		BaseEvent: events.NewBaseEvent(a.id, a.version+1, events.DepositMadeType),
		Amount:    amount,
	})
}

func (a *Account) handleWithdraw(amount decimal.Decimal) error {
	if err := requirePositive("withdrawal", amount); err != nil {
		return err
	}
	if err := a.checkFunds(amount); err != nil {
		return err
	}
	return a.ApplyEvent(events.WithdrawalMadeEvent{
		BaseEvent: events.NewBaseEvent(a.id, a.version+1, events.WithdrawalMadeType),
		Amount:    amount,
	})
}

func (a *Account) handleAccrueInterest() (decimal.Decimal, error) {
	rate, ok := a.kind.InterestRate()
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: account %s is %s, interest needs a savings account", ErrWrongAccountType, a.id, a.kind)
	}

	interest := interestOn(a.balance, rate)
	if err := requirePositive("interest", interest); err != nil {
		return decimal.Zero, err
	}

	err := a.ApplyEvent(events.InterestAccruedEvent{
		BaseEvent: events.NewBaseEvent(a.id, a.version+1, events.InterestAccruedType),
		Amount:    interest,
		Rate:      rate,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return interest, nil
}

func (a *Account) checkFunds(amount decimal.Decimal) error {
	if a.balance.LessThan(amount) {
		return fmt.Errorf("%w: requested %s, available %s in account %s",
			ErrInsufficientFunds, amount.String(), a.balance.String(), a.id)
	}
	return nil
}

// ApplyEvent folds one event into the account state and appends it to the
// history. Events must arrive in version order.
func (a *Account) ApplyEvent(event events.Event) error {
	base := event.GetBase()

	if base.Version != a.version+1 {
		return fmt.Errorf("apply failed: event version mismatch for account %s: expected %d, got %d for event %T (%s)",
			a.id, a.version+1, base.Version, event, base.EventID)
	}
	if a.version > 0 && base.AccountID != a.id {
		return fmt.Errorf("apply failed: event %s belongs to account %s, not %s", base.EventID, base.AccountID, a.id)
	}

	if a.version == 0 {
		if _, ok := event.(events.AccountCreatedEvent); !ok {
			return fmt.Errorf("apply failed: first event of account %s must be %s, got %T", base.AccountID, events.AccountCreatedType, event)
		}
	}

	switch e := event.(type) {
	case events.AccountCreatedEvent:
		if a.version != 0 {
			return fmt.Errorf("%w: %s", ErrAccountExists, a.id)
		}
		if e.InitialBalance.IsNegative() {
			return fmt.Errorf("invariant violation: negative initial balance %s for account %s", e.InitialBalance.String(), e.AccountID)
		}
		switch e.Kind {
		case shared.Savings:
			if e.InterestRate.IsNegative() {
				return fmt.Errorf("apply failed: negative interest rate %s for account %s", e.InterestRate.String(), e.AccountID)
			}
			a.kind = shared.SavingsKind(e.InterestRate)
		case shared.Basic, "":
			a.kind = shared.BasicKind()
		default:
			return fmt.Errorf("apply failed: unknown account kind %q for account %s", e.Kind, e.AccountID)
		}
		a.id = e.AccountID
		a.holderName = e.HolderName
		a.balance = e.InitialBalance
	case events.DepositMadeEvent:
		a.balance = a.balance.Add(e.Amount)
	case events.InterestAccruedEvent:
		a.balance = a.balance.Add(e.Amount)
	case events.WithdrawalMadeEvent:
		newBalance := a.balance.Sub(e.Amount)
		if newBalance.IsNegative() {
			return fmt.Errorf("invariant violation: withdrawing %s from balance %s of account %s (v%d)",
				e.Amount.String(), a.balance.String(), a.id, base.Version)
		}
		a.balance = newBalance
	case events.TransferSentEvent, events.TransferReceivedEvent:
		// Annotations only; the paired withdrawal/deposit moved the funds.
	default:
		return fmt.Errorf("apply failed: unknown event type %T for account %s", event, a.id)
	}

	a.version = base.Version
	a.history = append(a.history, event)
	return nil
}

func (a *Account) ApplyEvents(history []events.Event) error {
	for _, event := range history {
		if err := a.ApplyEvent(event); err != nil {
			base := event.GetBase()
			return fmt.Errorf("failed to apply event %s (%T) at version %d during reconstruction: %w", base.EventID, event, base.Version, err)
		}
	}
	return nil
}

// clone returns an independent copy for staging multi-event changes.
func (a *Account) clone() *Account {
	cp := *a
	cp.history = make([]events.Event, len(a.history), len(a.history)+2)
	copy(cp.history, a.history)
	return &cp
}
