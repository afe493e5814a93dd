package domain_test

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"bank-ledger/domain"
	"bank-ledger/shared"
	"bank-ledger/store"
)

type stubSource struct {
	snapshot *domain.Snapshot
	found    bool
	err      error
}

func (s stubSource) GetLatestSnapshot(context.Context) (*domain.Snapshot, bool, error) {
	return s.snapshot, s.found, s.err
}

type failingSink struct{}

func (failingSink) SaveSnapshot(context.Context, *domain.Snapshot) error {
	return errors.New("disk full")
}

func populatedLedger(t *testing.T) *domain.Ledger {
	t.Helper()
	basic := newAccount(t, "A1", "500", shared.BasicKind())
	savings := newAccount(t, "S1", "1000", shared.SavingsKind(dec("5")))
	ledger := newLedger(t, basic, savings)

	if err := open(t, basic).Deposit(dec("100")); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if _, err := open(t, savings).AccrueInterest(); err != nil {
		t.Fatalf("AccrueInterest failed: %v", err)
	}
	if _, err := ledger.TransferFunds("S1", "A1", dec("49.99")); err != nil {
		t.Fatalf("TransferFunds failed: %v", err)
	}
	return ledger
}

func assertSameLedger(t *testing.T, want, got *domain.Ledger) {
	t.Helper()
	if want.Len() != got.Len() {
		t.Fatalf("account count mismatch: want %d, got %d", want.Len(), got.Len())
	}
	for id, holder := range want.ListAccounts() {
		w, _ := want.GetAccount(id)
		g, err := got.GetAccount(id)
		if err != nil {
			t.Fatalf("account %s missing after round trip: %v", id, err)
		}
		if g.HolderName() != holder {
			t.Errorf("%s: holder mismatch: %q vs %q", id, holder, g.HolderName())
		}
		if !g.Balance().Equal(w.Balance()) {
			t.Errorf("%s: balance mismatch: %s vs %s", id, w.Balance(), g.Balance())
		}
		if !g.Kind().Equal(w.Kind()) {
			t.Errorf("%s: kind mismatch: %s vs %s", id, w.Kind(), g.Kind())
		}
		if g.Version() != w.Version() {
			t.Errorf("%s: version mismatch: %d vs %d", id, w.Version(), g.Version())
		}
		if !g.Authenticate("1234") || g.Authenticate("0000") {
			t.Errorf("%s: secret not preserved", id)
		}

		wantHistory := slices.Collect(w.History())
		gotHistory := slices.Collect(g.History())
		if len(wantHistory) != len(gotHistory) {
			t.Fatalf("%s: history length mismatch: %d vs %d", id, len(wantHistory), len(gotHistory))
		}
		for i := range wantHistory {
			wb, gb := wantHistory[i].GetBase(), gotHistory[i].GetBase()
			if wb.EventID != gb.EventID || wb.Type != gb.Type || wb.Version != gb.Version || !wb.Timestamp.Equal(gb.Timestamp) {
				t.Errorf("%s: entry %d base mismatch: %+v vs %+v", id, i, wb, gb)
			}
			if wantHistory[i].Describe("") != gotHistory[i].Describe("") {
				t.Errorf("%s: entry %d narrative mismatch", id, i)
			}
		}
	}
}

func TestLedger_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	original := populatedLedger(t)
	ss := store.NewInMemorySnapshotStore()

	if err := original.SaveSnapshot(ctx, ss); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	restored := domain.NewLedger()
	if err := restored.LoadSnapshot(ctx, ss); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	assertSameLedger(t, original, restored)

	t.Run("RestoredAccountsKeepWorking", func(t *testing.T) {
		acc, _ := restored.GetAccount("S1")
		before := acc.Balance()
		if _, err := open(t, acc).AccrueInterest(); err != nil {
			t.Fatalf("AccrueInterest after restore failed: %v", err)
		}
		if !acc.Balance().GreaterThan(before) {
			t.Errorf("interest not credited after restore")
		}
	})

	t.Run("EmptyLedger", func(t *testing.T) {
		empty := domain.NewLedger()
		if err := empty.SaveSnapshot(ctx, ss); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
		target := populatedLedger(t)
		if err := target.LoadSnapshot(ctx, ss); err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}
		if target.Len() != 0 {
			t.Errorf("expected empty ledger after loading an empty snapshot, got %d accounts", target.Len())
		}
	})
}

func TestLedger_SaveSnapshotFailure(t *testing.T) {
	err := populatedLedger(t).SaveSnapshot(context.Background(), failingSink{})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}
}

func TestLedger_LoadSnapshotFailuresKeepState(t *testing.T) {
	valid, err := domain.CreateSnapshot(populatedLedger(t))
	if err != nil {
		t.Fatalf("CreateSnapshot failed: %v", err)
	}

	tamper := func(mutate func(state map[string]any)) *domain.Snapshot {
		var state map[string]any
		if err := json.Unmarshal(valid.State, &state); err != nil {
			t.Fatalf("unmarshal state: %v", err)
		}
		mutate(state)
		raw, err := json.Marshal(state)
		if err != nil {
			t.Fatalf("marshal state: %v", err)
		}
		cp := *valid
		cp.State = raw
		return &cp
	}
	firstAccount := func(state map[string]any) map[string]any {
		return state["accounts"].([]any)[0].(map[string]any)
	}

	wrongVersion := *valid
	wrongVersion.FormatVersion = 99
	wrongCount := *valid
	wrongCount.AccountCount = 7

	cases := []struct {
		name    string
		source  domain.SnapshotSource
		wantErr error
	}{
		{"Missing", stubSource{found: false}, domain.ErrSnapshotNotFound},
		{"SourceError", stubSource{err: errors.New("read failed")}, domain.ErrPersistence},
		{"Garbage", stubSource{found: true, snapshot: &domain.Snapshot{FormatVersion: domain.SnapshotFormatVersion, State: []byte("{not json")}}, domain.ErrPersistence},
		{"UnknownFormat", stubSource{found: true, snapshot: &wrongVersion}, domain.ErrPersistence},
		{"CountMismatch", stubSource{found: true, snapshot: &wrongCount}, domain.ErrPersistence},
		{"BalanceTampered", stubSource{found: true, snapshot: tamper(func(s map[string]any) {
			firstAccount(s)["balance"] = "1000000"
		})}, domain.ErrPersistence},
		{"HistoryTruncated", stubSource{found: true, snapshot: tamper(func(s map[string]any) {
			acc := firstAccount(s)
			history := acc["history"].([]any)
			acc["history"] = history[:len(history)-1]
		})}, domain.ErrPersistence},
		{"UnknownEvent", stubSource{found: true, snapshot: tamper(func(s map[string]any) {
			history := firstAccount(s)["history"].([]any)
			history[0].(map[string]any)["type"] = "Mystery"
		})}, domain.ErrPersistence},
		{"NegativeSavingsRate", stubSource{found: true, snapshot: tamper(func(s map[string]any) {
			for _, raw := range s["accounts"].([]any) {
				acc := raw.(map[string]any)
				if acc["id"] != "S1" {
					continue
				}
				acc["interestRate"] = "-50"
				acc["history"].([]any)[0].(map[string]any)["interestRate"] = "-50"
			}
		})}, domain.ErrPersistence},
		{"DuplicateAccount", stubSource{found: true, snapshot: tamper(func(s map[string]any) {
			accounts := s["accounts"].([]any)
			s["accounts"] = []any{accounts[0], accounts[0]}
		})}, domain.ErrPersistence},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := newLedger(t, newAccount(t, "keep", "42", shared.BasicKind()))

			err := ledger.LoadSnapshot(context.Background(), tc.source)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if ledger.Len() != 1 || !balanceOf(t, ledger, "keep").Equal(dec("42")) {
				t.Errorf("failed load changed the ledger")
			}
		})
	}
}
