package store

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"bank-ledger/domain"
)

// SnapshotStore persists serialised ledgers. Only the most recent snapshot
// is ever read back.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot) error

	GetLatestSnapshot(ctx context.Context) (snapshot *domain.Snapshot, found bool, err error)
}

type InMemorySnapshotStore struct {
	sync.RWMutex
	latest *domain.Snapshot
	saves  int
}

var _ SnapshotStore = (*InMemorySnapshotStore)(nil)

func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{}
}

func (s *InMemorySnapshotStore) SaveSnapshot(_ context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return errors.New("cannot save nil snapshot")
	}
	s.Lock()
	defer s.Unlock()

	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	s.latest = copySnapshot(snapshot)
	s.saves++
	return nil
}

func (s *InMemorySnapshotStore) GetLatestSnapshot(_ context.Context) (*domain.Snapshot, bool, error) {
	s.RLock()
	defer s.RUnlock()

	if s.latest == nil {
		return nil, false, nil
	}
	return copySnapshot(s.latest), true, nil
}

// Saves reports how many snapshots have been written.
func (s *InMemorySnapshotStore) Saves() int {
	s.RLock()
	defer s.RUnlock()
	return s.saves
}

func copySnapshot(snapshot *domain.Snapshot) *domain.Snapshot {
	stateCopy := make([]byte, len(snapshot.State))
	copy(stateCopy, snapshot.State)

	return &domain.Snapshot{
		FormatVersion: snapshot.FormatVersion,
		AccountCount:  snapshot.AccountCount,
		State:         stateCopy,
		Timestamp:     snapshot.Timestamp,
	}
}
