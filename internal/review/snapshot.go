package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/flipledger/flipledger/internal/model"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

var (
	bucketReview = []byte("review")
	keyCurrent   = []byte("current")
)

// ErrSnapshotVersion is returned when a stored snapshot has an unknown version.
var ErrSnapshotVersion = errors.New("unsupported review snapshot version")

// Snapshot is the persisted review state, enough to resume review after a restart.
type Snapshot struct {
	Version                  int                       `json:"version"`
	RunID                    string                    `json:"runId"`
	ReviewTransactions       []model.ReviewTransaction `json:"reviewTransactions"`
	ReferenceData            model.ReferenceData       `json:"referenceData"`
	SelectedAccountID        int64                     `json:"selectedAccountId"`
	Warnings                 []string                  `json:"warnings,omitempty"`
	HiddenStats              model.HiddenStats         `json:"hiddenStats"`
	PendingTransactionsIndex map[int64]int64           `json:"pendingTransactionsIndex,omitempty"` // pending line id -> transaction id
	SourceFile               string                    `json:"sourceFile,omitempty"`
	SavedAt                  time.Time                 `json:"savedAt"`
}

// Set returns the review set held by the snapshot.
func (s Snapshot) Set() *Set {
	return &Set{Items: s.ReviewTransactions}
}

// SnapshotStore persists the review snapshot in a bbolt file.
type SnapshotStore struct {
	db  *bolt.DB
	now func() time.Time
}

// OpenSnapshotStore opens (creating if needed) the snapshot file.
func OpenSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening review snapshot: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReview)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating review bucket: %w", err)
	}
	return &SnapshotStore{db: db, now: time.Now}, nil
}

// Close closes the snapshot file.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Save stores snap as the current snapshot, stamping version and time.
func (s *SnapshotStore) Save(snap Snapshot) error {
	snap.Version = SnapshotVersion
	snap.SavedAt = s.now().UTC()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling review snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReview).Put(keyCurrent, data)
	})
}

// Load returns the current snapshot; ok is false when none is stored.
func (s *SnapshotStore) Load() (snap Snapshot, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketReview).Get(keyCurrent)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("decoding review snapshot: %w", err)
		}
		ok = true
		return nil
	})
	if err != nil {
		return Snapshot{}, false, err
	}
	if ok && snap.Version != SnapshotVersion {
		return Snapshot{}, false, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	return snap, ok, nil
}

// Clear removes the current snapshot.
func (s *SnapshotStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReview).Delete(keyCurrent)
	})
}
