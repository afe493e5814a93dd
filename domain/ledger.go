package domain

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/events"
)

// Ledger holds every account of a session keyed by account ID. It performs
// no locking; callers sharing a Ledger between goroutines must serialise
// access themselves.
type Ledger struct {
	accounts map[string]*Account
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[string]*Account)}
}

// SnapshotSink receives a serialised ledger.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
}

// SnapshotSource yields the most recent serialised ledger, if any.
type SnapshotSource interface {
	GetLatestSnapshot(ctx context.Context) (snapshot *Snapshot, found bool, err error)
}

// CreateAccount registers a new account. An ID that is already taken is
// rejected; the existing account is left untouched.
func (l *Ledger) CreateAccount(account *Account) error {
	if account == nil {
		return NewDomainError("cannot register a nil account")
	}
	if _, exists := l.accounts[account.id]; exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, account.id)
	}
	l.accounts[account.id] = account
	return nil
}

func (l *Ledger) GetAccount(id string) (*Account, error) {
	account, ok := l.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return account, nil
}

func (l *Ledger) Len() int {
	return len(l.accounts)
}

// TransferFunds moves amount from one account to another. Either both
// accounts change or neither does. Each side records its generic
// withdrawal/deposit entry followed by a transfer annotation that names the
// counterparty. The returned ID is shared by both annotations.
func (l *Ledger) TransferFunds(fromID, toID string, amount decimal.Decimal) (string, error) {
	from, err := l.GetAccount(fromID)
	if err != nil {
		return "", fmt.Errorf("source: %w", err)
	}
	to, err := l.GetAccount(toID)
	if err != nil {
		return "", fmt.Errorf("target: %w", err)
	}
	if err := requirePositive("transfer", amount); err != nil {
		return "", err
	}
	if fromID == toID {
		return "", fmt.Errorf("%w: %s", ErrSameAccount, fromID)
	}
	if err := from.checkFunds(amount); err != nil {
		return "", err
	}

	// Stage on copies so a failure half way leaves both originals intact.
	nextFrom, nextTo := from.clone(), to.clone()
	transferID := uuid.NewString()

	if err := nextFrom.handleWithdraw(amount); err != nil {
		return "", err
	}
	if err := nextTo.handleDeposit(amount); err != nil {
		return "", err
	}
	err = nextFrom.ApplyEvent(events.TransferSentEvent{
		BaseEvent:       events.NewBaseEvent(fromID, nextFrom.version+1, events.TransferSentType),
		TransferID:      transferID,
		TargetAccountID: toID,
		Amount:          amount,
	})
	if err != nil {
		return "", err
	}
	err = nextTo.ApplyEvent(events.TransferReceivedEvent{
		BaseEvent:       events.NewBaseEvent(toID, nextTo.version+1, events.TransferReceivedType),
		TransferID:      transferID,
		SourceAccountID: fromID,
		Amount:          amount,
	})
	if err != nil {
		return "", err
	}

	*from = *nextFrom
	*to = *nextTo
	return transferID, nil
}

// ListAccounts yields (id, holder name) pairs ordered by ID. The set of
// accounts is captured when the range begins.
func (l *Ledger) ListAccounts() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		ids := make([]string, 0, len(l.accounts))
		for id := range l.accounts {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = l.accounts[id].holderName
		}

		for i, id := range ids {
			if !yield(id, names[i]) {
				return
			}
		}
	}
}

// SaveSnapshot serialises every account and hands the result to sink.
func (l *Ledger) SaveSnapshot(ctx context.Context, sink SnapshotSink) error {
	snapshot, err := CreateSnapshot(l)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := sink.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// LoadSnapshot replaces the ledger contents with the latest snapshot from
// source. On any failure the ledger keeps its previous accounts.
func (l *Ledger) LoadSnapshot(ctx context.Context, source SnapshotSource) error {
	snapshot, found, err := source.GetLatestSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if !found {
		return ErrSnapshotNotFound
	}

	accounts, err := ApplySnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	l.accounts = accounts
	return nil
}
