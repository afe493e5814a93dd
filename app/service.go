package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/domain"
	"bank-ledger/events"
	"bank-ledger/shared"
	"bank-ledger/store"
)

// LedgerService is the application layer in front of a single in-memory
// Ledger. It checks account secrets, serialises access to the ledger and
// moves whole-ledger snapshots to and from the configured SnapshotStore.
type LedgerService struct {
	mu        sync.Mutex
	ledger    *domain.Ledger
	snapshots store.SnapshotStore
	logger    *slog.Logger
	dirty     bool
}

func NewLedgerService(ss store.SnapshotStore, logger *slog.Logger) *LedgerService {
	if ss == nil {
		panic("app: SnapshotStore must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		ledger:    domain.NewLedger(),
		snapshots: ss,
		logger:    logger,
	}
}

// --- Command Handlers ---

func (s *LedgerService) CreateAccount(cmd CreateAccountCommand) (string, error) {
	accountID := cmd.AccountID
	if accountID == "" {
		accountID = uuid.NewString()
		s.logger.Info("no account ID provided, generated one", "account", accountID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := domain.NewAccount(accountID, cmd.HolderName, cmd.InitialBalance, cmd.Secret, cmd.Kind)
	if err != nil {
		s.logger.Warn("account creation rejected", "account", accountID, "error", err)
		return "", fmt.Errorf("account creation failed validation: %w", err)
	}
	if err := s.ledger.CreateAccount(account); err != nil {
		s.logger.Warn("account creation rejected", "account", accountID, "error", err)
		return "", err
	}

	s.dirty = true
	s.logger.Info("account created",
		"account", accountID, "kind", account.Kind().String(), "balance", account.Balance().String())
	return accountID, nil
}

func (s *LedgerService) Deposit(cmd DepositMoneyCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.openSession(cmd.AccountID, cmd.Secret)
	if err != nil {
		return err
	}
	if err := session.Deposit(cmd.Amount); err != nil {
		s.logger.Warn("deposit rejected", "account", cmd.AccountID, "amount", cmd.Amount.String(), "error", err)
		return fmt.Errorf("deposit failed for account %s: %w", cmd.AccountID, err)
	}

	s.dirty = true
	s.logger.Info("deposit successful",
		"account", cmd.AccountID, "amount", cmd.Amount.String(), "balance", session.Balance().String())
	return nil
}

func (s *LedgerService) Withdraw(cmd WithdrawMoneyCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.openSession(cmd.AccountID, cmd.Secret)
	if err != nil {
		return err
	}
	if err := session.Withdraw(cmd.Amount); err != nil {
		s.logger.Warn("withdrawal rejected", "account", cmd.AccountID, "amount", cmd.Amount.String(), "error", err)
		return fmt.Errorf("withdrawal failed for account %s: %w", cmd.AccountID, err)
	}

	s.dirty = true
	s.logger.Info("withdrawal successful",
		"account", cmd.AccountID, "amount", cmd.Amount.String(), "balance", session.Balance().String())
	return nil
}

// TransferMoney moves funds between two accounts as one step and returns
// the transfer ID recorded on both sides.
func (s *LedgerService) TransferMoney(cmd TransferMoneyCommand) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.openSession(cmd.SourceAccountID, cmd.SourceSecret); err != nil {
		return "", err
	}

	transferID, err := s.ledger.TransferFunds(cmd.SourceAccountID, cmd.TargetAccountID, cmd.Amount)
	if err != nil {
		s.logger.Warn("transfer rejected",
			"from", cmd.SourceAccountID, "to", cmd.TargetAccountID, "amount", cmd.Amount.String(), "error", err)
		return "", fmt.Errorf("transfer from %s to %s failed: %w", cmd.SourceAccountID, cmd.TargetAccountID, err)
	}

	s.dirty = true
	s.logger.Info("transfer completed",
		"transfer", transferID, "from", cmd.SourceAccountID, "to", cmd.TargetAccountID, "amount", cmd.Amount.String())
	return transferID, nil
}

func (s *LedgerService) AccrueInterest(cmd AccrueInterestCommand) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.openSession(cmd.AccountID, cmd.Secret)
	if err != nil {
		return decimal.Zero, err
	}
	interest, err := session.AccrueInterest()
	if err != nil {
		s.logger.Warn("interest accrual rejected", "account", cmd.AccountID, "error", err)
		return decimal.Zero, fmt.Errorf("interest accrual failed for account %s: %w", cmd.AccountID, err)
	}

	s.dirty = true
	s.logger.Info("interest accrued",
		"account", cmd.AccountID, "interest", interest.String(), "balance", session.Balance().String())
	return interest, nil
}

// --- Query Handlers ---

func (s *LedgerService) GetBalance(query GetBalanceQuery) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.openSession(query.AccountID, query.Secret)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot get balance: %w", err)
	}
	return session.Balance(), nil
}

// GetTransactionHistory returns the account history oldest first. Skip drops
// that many leading entries; a non-positive Limit means no limit.
func (s *LedgerService) GetTransactionHistory(query GetHistoryQuery) ([]events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.openSession(query.AccountID, query.Secret)
	if err != nil {
		return nil, fmt.Errorf("cannot get history: %w", err)
	}

	start := max(query.Skip, 0)
	history := []events.Event{}
	i := 0
	for event := range session.History() {
		if i >= start {
			if query.Limit > 0 && len(history) >= query.Limit {
				break
			}
			history = append(history, event)
		}
		i++
	}
	return history, nil
}

// ListAccounts returns every account ordered by ID. It needs no secret and
// never exposes balances.
func (s *LedgerService) ListAccounts() []shared.AccountSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]shared.AccountSummary, 0, s.ledger.Len())
	for id, holder := range s.ledger.ListAccounts() {
		summaries = append(summaries, shared.AccountSummary{ID: id, HolderName: holder})
	}
	return summaries
}

// --- Persistence ---

// SaveSnapshot writes the whole ledger to the snapshot store.
func (s *LedgerService) SaveSnapshot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.SaveSnapshot(ctx, s.snapshots); err != nil {
		s.logger.Error("failed to save ledger snapshot", "accounts", s.ledger.Len(), "error", err)
		return err
	}
	s.dirty = false
	s.logger.Info("ledger snapshot saved", "accounts", s.ledger.Len())
	return nil
}

// LoadSnapshot replaces the ledger with the latest stored snapshot. When no
// snapshot exists or it cannot be read, the current ledger is kept and the
// error is returned.
func (s *LedgerService) LoadSnapshot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.LoadSnapshot(ctx, s.snapshots); err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			s.logger.Info("no ledger snapshot found, starting empty")
		} else {
			s.logger.Error("failed to load ledger snapshot", "error", err)
		}
		return err
	}
	s.dirty = false
	s.logger.Info("ledger snapshot loaded", "accounts", s.ledger.Len())
	return nil
}

// Dirty reports whether the ledger changed since it was last saved or
// loaded.
func (s *LedgerService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *LedgerService) openSession(accountID, secret string) (*domain.Session, error) {
	account, err := s.ledger.GetAccount(accountID)
	if err != nil {
		s.logger.Warn("account lookup failed", "account", accountID)
		return nil, err
	}
	session, err := account.Open(secret)
	if err != nil {
		s.logger.Warn("authentication failed", "account", accountID)
		return nil, err
	}
	return session, nil
}
