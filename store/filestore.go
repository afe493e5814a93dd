package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"bank-ledger/domain"
)

// FileSnapshotStore keeps the latest snapshot as a single JSON document.
// Writes go to a temporary file that is renamed over the target, so a crash
// mid-write leaves the previous document in place.
type FileSnapshotStore struct {
	mu   sync.Mutex
	path string
}

var _ SnapshotStore = (*FileSnapshotStore)(nil)

type snapshotDocument struct {
	FormatVersion int             `json:"formatVersion"`
	AccountCount  int             `json:"accountCount"`
	Timestamp     time.Time       `json:"timestamp"`
	State         json.RawMessage `json:"state"`
}

func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path}
}

func (s *FileSnapshotStore) Path() string {
	return s.path
}

func (s *FileSnapshotStore) SaveSnapshot(_ context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return errors.New("cannot save nil snapshot")
	}
	if !json.Valid(snapshot.State) {
		return errors.Errorf("snapshot state is not valid JSON (%d bytes)", len(snapshot.State))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create snapshot directory %s", dir)
		}
	}

	doc := snapshotDocument{
		FormatVersion: snapshot.FormatVersion,
		AccountCount:  snapshot.AccountCount,
		Timestamp:     snapshot.Timestamp,
		State:         json.RawMessage(snapshot.State),
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "encode snapshot to %s", tmp)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "sync %s", tmp)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "close %s", tmp)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "replace %s", s.path)
	}
	return nil
}

// GetLatestSnapshot reads the document back. A missing file means nothing
// has been saved yet and is not an error.
func (s *FileSnapshotStore) GetLatestSnapshot(_ context.Context) (*domain.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "read %s", s.path)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, errors.Wrapf(err, "decode %s", s.path)
	}
	if len(doc.State) == 0 {
		return nil, false, errors.Errorf("%s holds no ledger state", s.path)
	}

	return &domain.Snapshot{
		FormatVersion: doc.FormatVersion,
		AccountCount:  doc.AccountCount,
		State:         []byte(doc.State),
		Timestamp:     doc.Timestamp,
	}, true, nil
}
