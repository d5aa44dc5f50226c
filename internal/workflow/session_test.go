package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipledger/flipledger/internal/commit"
	"github.com/flipledger/flipledger/internal/config"
	"github.com/flipledger/flipledger/internal/match"
	"github.com/flipledger/flipledger/internal/model"
	"github.com/flipledger/flipledger/internal/review"
)

var (
	today    = time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	checking = model.Account{ID: 1, Code: "10100", Name: "Checking", Type: model.AccountTypeAsset}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeLedger struct {
	pending, cleared []model.LedgerEntry
	ref              model.ReferenceData
	err              error
}

func (f *fakeLedger) PendingEntries(context.Context, int64, time.Time) ([]model.LedgerEntry, error) {
	return f.pending, f.err
}

func (f *fakeLedger) ClearedEntries(context.Context, int64, time.Time) ([]model.LedgerEntry, error) {
	return f.cleared, nil
}

func (f *fakeLedger) RecentHistory(context.Context, time.Time, int) ([]model.LedgerEntry, error) {
	return nil, nil
}

func (f *fakeLedger) ReferenceData(context.Context) (model.ReferenceData, error) {
	return f.ref, nil
}

func (f *fakeLedger) AccountByID(_ context.Context, id int64) (model.Account, error) {
	if id != checking.ID {
		return model.Account{}, errors.New("not found")
	}
	return checking, nil
}

type memSnapshots struct {
	snap    *review.Snapshot
	saves   int
	saveErr error
}

func (m *memSnapshots) Save(s review.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = &s
	m.saves++
	return nil
}

func (m *memSnapshots) Load() (review.Snapshot, bool, error) {
	if m.snap == nil {
		return review.Snapshot{}, false, nil
	}
	return *m.snap, true, nil
}

func (m *memSnapshots) Clear() error {
	m.snap = nil
	return nil
}

type fakeCommitter struct {
	fail    bool
	account model.Account
	got     []model.ReviewTransaction
}

func (f *fakeCommitter) Commit(_ context.Context, _ string, account model.Account, reviewed []model.ReviewTransaction) commit.Summary {
	f.account = account
	f.got = reviewed
	var sum commit.Summary
	for i, rt := range reviewed {
		if !rt.Selected {
			continue
		}
		if f.fail {
			sum.Failures = append(sum.Failures, commit.Failure{Index: i, Err: errors.New("boom")})
			continue
		}
		sum.Cleared++
		sum.Committed = append(sum.Committed, i)
	}
	return sum
}

func entry(lineID, txID int64, amount, desc string, cleared bool) model.LedgerEntry {
	return model.LedgerEntry{
		LineID: lineID, TransactionID: txID, AccountID: checking.ID,
		Date: today.AddDate(0, 0, -4), Description: desc, Amount: dec(amount), Cleared: cleared,
	}
}

func candidate(amount, desc string) model.CandidateTransaction {
	return model.CandidateTransaction{
		Date: today.AddDate(0, 0, -4), Description: desc, Amount: dec(amount), BankStatus: model.BankPosted,
	}
}

func newTestSession(ledger *fakeLedger, snaps *memSnapshots, committer *fakeCommitter) *Session {
	cfg := match.DefaultConfig()
	cfg.Now = func() time.Time { return today }
	s := NewSession(ledger, snaps, match.New(cfg, nil), committer, config.Default("", "").Matching, nil)
	s.now = func() time.Time { return today }
	return s
}

func testLedger() *fakeLedger {
	return &fakeLedger{
		pending: []model.LedgerEntry{entry(10, 100, "-45.37", "MARIETTA DINER", false)},
		cleared: []model.LedgerEntry{entry(20, 200, "-12.00", "PARKING", true)},
	}
}

func TestProcess_EntersReview(t *testing.T) {
	snaps := &memSnapshots{}
	s := newTestSession(testLedger(), snaps, &fakeCommitter{})

	snap, err := s.Process(context.Background(), checking, []model.CandidateTransaction{
		candidate("-45.37", "MARIETTA DINER"),
		candidate("-12.00", "PARKING"),
	}, "june.csv")
	require.NoError(t, err)

	assert.Equal(t, StateReview, s.State())
	require.Len(t, snap.ReviewTransactions, 1)
	assert.Equal(t, model.MatchPending, snap.ReviewTransactions[0].MatchType)
	assert.Equal(t, 1, snap.HiddenStats.AlreadyCleared)
	assert.Equal(t, int64(100), snap.PendingTransactionsIndex[10])
	assert.Equal(t, "june.csv", snap.SourceFile)
	require.NotNil(t, snaps.snap, "review is persisted")
	assert.Equal(t, snap.RunID, snaps.snap.RunID)
}

func TestProcess_NothingActionable(t *testing.T) {
	snaps := &memSnapshots{}
	s := newTestSession(testLedger(), snaps, &fakeCommitter{})

	snap, err := s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-12.00", "PARKING")}, "")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, snap.ReviewTransactions)
	assert.Nil(t, snaps.snap)
}

func TestProcess_LoadErrorReturnsToIdle(t *testing.T) {
	ledger := testLedger()
	ledger.err = errors.New("database is locked")
	s := newTestSession(ledger, &memSnapshots{}, &fakeCommitter{})

	_, err := s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-1.00", "X")}, "")
	assert.ErrorContains(t, err, "database is locked")
	assert.Equal(t, StateIdle, s.State())
}

func TestProcess_SaveErrorReturnsToIdle(t *testing.T) {
	snaps := &memSnapshots{saveErr: errors.New("disk full")}
	s := newTestSession(testLedger(), snaps, &fakeCommitter{})

	_, err := s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-45.37", "MARIETTA DINER")}, "")
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, StateIdle, s.State())
	_, err = s.Review()
	assert.ErrorIs(t, err, ErrNoReview)

	snaps.saveErr = nil
	_, err = s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-45.37", "MARIETTA DINER")}, "")
	require.NoError(t, err)
	assert.Equal(t, StateReview, s.State())
}

func TestProcess_RefusedDuringReview(t *testing.T) {
	s := newTestSession(testLedger(), &memSnapshots{}, &fakeCommitter{})
	_, err := s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-45.37", "MARIETTA DINER")}, "")
	require.NoError(t, err)

	_, err = s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-3.00", "X")}, "")
	assert.True(t, errors.Is(err, ErrTransition))
}

func TestRestore(t *testing.T) {
	snaps := &memSnapshots{}
	first := newTestSession(testLedger(), snaps, &fakeCommitter{})
	_, err := first.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-45.37", "MARIETTA DINER")}, "")
	require.NoError(t, err)

	second := newTestSession(testLedger(), snaps, &fakeCommitter{})
	ok, err := second.Restore()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateReview, second.State())

	snap, err := second.Review()
	require.NoError(t, err)
	assert.Len(t, snap.ReviewTransactions, 1)

	empty := newTestSession(testLedger(), &memSnapshots{}, &fakeCommitter{})
	ok, err = empty.Restore()
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = empty.Review()
	assert.ErrorIs(t, err, ErrNoReview)
}

func TestUpdate_PersistsSelection(t *testing.T) {
	snaps := &memSnapshots{}
	s := newTestSession(testLedger(), snaps, &fakeCommitter{})
	_, err := s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-45.37", "MARIETTA DINER")}, "")
	require.NoError(t, err)

	require.NoError(t, s.Update(func(set *review.Set, _ model.ReferenceData) error {
		return set.Select(0, false)
	}))
	assert.False(t, snaps.snap.ReviewTransactions[0].Selected)

	saves := snaps.saves
	err = s.Update(func(set *review.Set, _ model.ReferenceData) error {
		return set.Select(5, true)
	})
	assert.True(t, errors.Is(err, model.ErrValidation))
	assert.Equal(t, saves, snaps.saves, "failed update is not saved")
}

func TestCommit_ClearsReviewOnSuccess(t *testing.T) {
	snaps := &memSnapshots{}
	committer := &fakeCommitter{}
	s := newTestSession(testLedger(), snaps, committer)
	_, err := s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-45.37", "MARIETTA DINER")}, "")
	require.NoError(t, err)

	sum, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Cleared)
	assert.Equal(t, checking.ID, committer.account.ID)
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, snaps.snap)
}

func TestCommit_KeepsReviewWhenAllFail(t *testing.T) {
	snaps := &memSnapshots{}
	s := newTestSession(testLedger(), snaps, &fakeCommitter{fail: true})
	_, err := s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-45.37", "MARIETTA DINER")}, "")
	require.NoError(t, err)

	sum, err := s.Commit(context.Background())
	require.NoError(t, err)
	assert.Len(t, sum.Failures, 1)
	assert.Equal(t, StateReview, s.State())
	require.NotNil(t, snaps.snap)
	assert.Len(t, snaps.snap.ReviewTransactions, 1)
}

func TestCommit_WithoutReview(t *testing.T) {
	s := newTestSession(testLedger(), &memSnapshots{}, &fakeCommitter{})
	_, err := s.Commit(context.Background())
	assert.ErrorIs(t, err, ErrNoReview)
}

func TestCancel(t *testing.T) {
	snaps := &memSnapshots{}
	s := newTestSession(testLedger(), snaps, &fakeCommitter{})

	err := s.Cancel()
	assert.True(t, errors.Is(err, ErrTransition), "cancel from idle")

	_, err = s.Process(context.Background(), checking, []model.CandidateTransaction{candidate("-45.37", "MARIETTA DINER")}, "")
	require.NoError(t, err)
	require.NoError(t, s.Cancel())
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, snaps.snap)
}
