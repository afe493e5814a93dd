package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/events"
	"bank-ledger/shared"
)

// SnapshotFormatVersion is bumped whenever the encoded State layout changes.
const SnapshotFormatVersion = 1

// Snapshot is a full serialised copy of a ledger.
type Snapshot struct {
	FormatVersion int       `json:"formatVersion"`
	AccountCount  int       `json:"accountCount"`
	State         []byte    `json:"state"`
	Timestamp     time.Time `json:"timestamp"`
}

type accountRecord struct {
	ID           string          `json:"id"`
	HolderName   string          `json:"holderName"`
	Balance      decimal.Decimal `json:"balance"`
	Secret       string          `json:"secret"`
	Kind         shared.KindTag  `json:"kind"`
	InterestRate decimal.Decimal `json:"interestRate"`
	Version      int             `json:"version"`
	History      []events.Event  `json:"history"`
}

type storedAccountRecord struct {
	accountRecord
	History []json.RawMessage `json:"history"`
}

type ledgerState struct {
	Accounts []accountRecord `json:"accounts"`
}

type storedLedgerState struct {
	Accounts []storedAccountRecord `json:"accounts"`
}

func CreateSnapshot(l *Ledger) (*Snapshot, error) {
	state := ledgerState{Accounts: make([]accountRecord, 0, len(l.accounts))}
	for id := range l.ListAccounts() {
		a := l.accounts[id]
		rate, _ := a.kind.InterestRate()
		state.Accounts = append(state.Accounts, accountRecord{
			ID:           a.id,
			HolderName:   a.holderName,
			Balance:      a.balance,
			Secret:       a.secret,
			Kind:         a.kind.Tag(),
			InterestRate: rate,
			Version:      a.version,
			History:      a.history,
		})
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger state for snapshot (%d accounts): %w", len(state.Accounts), err)
	}

	return &Snapshot{
		FormatVersion: SnapshotFormatVersion,
		AccountCount:  len(state.Accounts),
		State:         stateJSON,
		Timestamp:     time.Now().UTC(),
	}, nil
}

// ApplySnapshot decodes a snapshot into a fresh account map. Each account is
// rebuilt by replaying its history and must agree with the stored fields.
func ApplySnapshot(snap *Snapshot) (map[string]*Account, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	if snap.FormatVersion != SnapshotFormatVersion {
		return nil, fmt.Errorf("unsupported snapshot format version %d (want %d)", snap.FormatVersion, SnapshotFormatVersion)
	}

	var state storedLedgerState
	if err := json.Unmarshal(snap.State, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot state: %w", err)
	}
	if len(state.Accounts) != snap.AccountCount {
		return nil, fmt.Errorf("snapshot declares %d accounts but holds %d", snap.AccountCount, len(state.Accounts))
	}

	accounts := make(map[string]*Account, len(state.Accounts))
	for _, rec := range state.Accounts {
		account, err := restoreAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", rec.ID, err)
		}
		if _, dup := accounts[account.id]; dup {
			return nil, fmt.Errorf("duplicate account %q in snapshot", account.id)
		}
		accounts[account.id] = account
	}
	return accounts, nil
}

func restoreAccount(rec storedAccountRecord) (*Account, error) {
	history, err := events.DecodeAll(rec.History)
	if err != nil {
		return nil, err
	}

	account := &Account{secret: rec.Secret}
	if err := account.ApplyEvents(history); err != nil {
		return nil, err
	}
	if account.version == 0 {
		return nil, fmt.Errorf("empty history")
	}

	switch {
	case account.id != rec.ID:
		return nil, fmt.Errorf("history belongs to account %q", account.id)
	case account.holderName != rec.HolderName:
		return nil, fmt.Errorf("holder name %q does not match history (%q)", rec.HolderName, account.holderName)
	case account.version != rec.Version:
		return nil, fmt.Errorf("version %d does not match history (%d)", rec.Version, account.version)
	case !account.balance.Equal(rec.Balance):
		return nil, fmt.Errorf("balance %s does not match history (%s)", rec.Balance.String(), account.balance.String())
	case !account.kind.Equal(kindOf(rec.Kind, rec.InterestRate)):
		return nil, fmt.Errorf("kind %s does not match history (%s)", kindOf(rec.Kind, rec.InterestRate), account.kind)
	}
	return account, nil
}

func kindOf(tag shared.KindTag, rate decimal.Decimal) shared.Kind {
	if tag == shared.Savings {
		return shared.SavingsKind(rate)
	}
	return shared.BasicKind()
}
