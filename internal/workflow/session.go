package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flipledger/flipledger/internal/commit"
	"github.com/flipledger/flipledger/internal/config"
	"github.com/flipledger/flipledger/internal/match"
	"github.com/flipledger/flipledger/internal/model"
	"github.com/flipledger/flipledger/internal/review"
)

// ErrNoReview is returned by review operations when nothing is under review.
var ErrNoReview = errors.New("no reconciliation under review")

// Ledger is the read side of the ledger store used to build a run snapshot.
type Ledger interface {
	PendingEntries(ctx context.Context, accountID int64, since time.Time) ([]model.LedgerEntry, error)
	ClearedEntries(ctx context.Context, accountID int64, since time.Time) ([]model.LedgerEntry, error)
	RecentHistory(ctx context.Context, since time.Time, limit int) ([]model.LedgerEntry, error)
	ReferenceData(ctx context.Context) (model.ReferenceData, error)
	AccountByID(ctx context.Context, id int64) (model.Account, error)
}

// Snapshots persists review state between invocations.
type Snapshots interface {
	Save(snap review.Snapshot) error
	Load() (review.Snapshot, bool, error)
	Clear() error
}

// Committer applies reviewed items.
type Committer interface {
	Commit(ctx context.Context, runID string, account model.Account, reviewed []model.ReviewTransaction) commit.Summary
}

// Session is one reviewer's reconciliation workflow.
type Session struct {
	machine   Machine
	ledger    Ledger
	snapshots Snapshots
	matcher   *match.Matcher
	committer Committer
	windows   config.MatchingConfig
	log       *slog.Logger
	now       func() time.Time

	current *review.Snapshot
}

// NewSession creates a Session in the idle state. Call Restore to resume a
// persisted review.
func NewSession(ledger Ledger, snapshots Snapshots, matcher *match.Matcher, committer Committer, windows config.MatchingConfig, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		ledger:    ledger,
		snapshots: snapshots,
		matcher:   matcher,
		committer: committer,
		windows:   windows,
		log:       log,
		now:       time.Now,
	}
}

// State returns the current workflow state.
func (s *Session) State() State {
	return s.machine.State()
}

// Restore moves straight to review when a snapshot is persisted.
func (s *Session) Restore() (bool, error) {
	snap, ok, err := s.snapshots.Load()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := s.machine.Transition(StateReview); err != nil {
		return false, err
	}
	s.current = &snap
	s.log.Debug("restored review", "run", snap.RunID, "items", len(snap.ReviewTransactions))
	return true, nil
}

// Process loads ledger context for account, classifies the candidates and
// enters review when anything is actionable. The returned snapshot is also
// returned when nothing is actionable, with the workflow back at idle.
func (s *Session) Process(ctx context.Context, account model.Account, candidates []model.CandidateTransaction, sourceFile string) (review.Snapshot, error) {
	if s.State() == StateReview {
		return review.Snapshot{}, fmt.Errorf("%w: a review is in progress; commit or cancel it first", ErrTransition)
	}
	if err := s.machine.Transition(StateLoadingContext); err != nil {
		return review.Snapshot{}, err
	}

	snap, err := s.loadContext(ctx, account)
	if err != nil {
		_ = s.machine.Transition(StateIdle)
		return review.Snapshot{}, err
	}
	if err := s.machine.Transition(StateProcessing); err != nil {
		return review.Snapshot{}, err
	}

	run := s.matcher.Match(candidates, snap, account)
	actionable, hidden := match.Filter(run.Results)
	pendingIndex := make(map[int64]int64, len(snap.Pending))
	for _, e := range snap.Pending {
		pendingIndex[e.LineID] = e.TransactionID
	}
	out := review.Snapshot{
		RunID:                    run.ID,
		ReviewTransactions:       review.NewSet(actionable).Items,
		ReferenceData:            snap.Reference,
		SelectedAccountID:        account.ID,
		Warnings:                 run.Warnings,
		HiddenStats:              hidden,
		PendingTransactionsIndex: pendingIndex,
		SourceFile:               sourceFile,
	}
	s.log.Info("processed statement",
		"run", run.ID, "account", account.Code, "candidates", len(candidates),
		"actionable", len(actionable), "hidden", hidden.Total(), "warnings", len(run.Warnings))

	if len(out.ReviewTransactions) == 0 {
		if err := s.machine.Transition(StateIdle); err != nil {
			return review.Snapshot{}, err
		}
		return out, nil
	}
	if err := s.snapshots.Save(out); err != nil {
		_ = s.machine.Transition(StateIdle)
		return review.Snapshot{}, fmt.Errorf("saving review: %w", err)
	}
	if err := s.machine.Transition(StateReview); err != nil {
		return review.Snapshot{}, err
	}
	s.current = &out
	return out, nil
}

func (s *Session) loadContext(ctx context.Context, account model.Account) (match.Snapshot, error) {
	today := s.now()
	days := func(n int) time.Time { return today.AddDate(0, 0, -n) }

	pending, err := s.ledger.PendingEntries(ctx, account.ID, days(s.windows.PendingWindowDays))
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("loading pending entries: %w", err)
	}
	cleared, err := s.ledger.ClearedEntries(ctx, account.ID, days(s.windows.ClearedLookbackDays))
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("loading cleared entries: %w", err)
	}
	history, err := s.ledger.RecentHistory(ctx, days(s.windows.HistoryDays), s.windows.HistoryLimit)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("loading history: %w", err)
	}
	ref, err := s.ledger.ReferenceData(ctx)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("loading reference data: %w", err)
	}
	return match.Snapshot{Pending: pending, Cleared: cleared, History: history, Reference: ref}, nil
}

// Review returns the snapshot under review.
func (s *Session) Review() (review.Snapshot, error) {
	if s.State() != StateReview || s.current == nil {
		return review.Snapshot{}, ErrNoReview
	}
	return *s.current, nil
}

// Update applies fn to the review set and persists the result. Nothing is
// saved when fn fails.
func (s *Session) Update(fn func(set *review.Set, ref model.ReferenceData) error) error {
	if s.State() != StateReview || s.current == nil {
		return ErrNoReview
	}
	set := review.Set{Items: append([]model.ReviewTransaction(nil), s.current.ReviewTransactions...)}
	if err := fn(&set, s.current.ReferenceData); err != nil {
		return err
	}
	next := *s.current
	next.ReviewTransactions = set.Items
	if err := s.snapshots.Save(next); err != nil {
		return fmt.Errorf("saving review: %w", err)
	}
	s.current = &next
	return nil
}

// Commit applies the selected items. Review state is cleared when something
// was written or nothing is left; otherwise the uncommitted items stay under
// review.
func (s *Session) Commit(ctx context.Context) (commit.Summary, error) {
	if s.State() != StateReview || s.current == nil {
		return commit.Summary{}, ErrNoReview
	}
	account, err := s.ledger.AccountByID(ctx, s.current.SelectedAccountID)
	if err != nil {
		return commit.Summary{}, fmt.Errorf("loading account: %w", err)
	}
	if err := s.machine.Transition(StateCommitting); err != nil {
		return commit.Summary{}, err
	}

	sum := s.committer.Commit(ctx, s.current.RunID, account, s.current.ReviewTransactions)

	done := make(map[int]bool, len(sum.Committed))
	for _, i := range sum.Committed {
		done[i] = true
	}
	var keep []int
	for i := range s.current.ReviewTransactions {
		if !done[i] {
			keep = append(keep, i)
		}
	}

	if sum.ShouldClearReview(len(keep)) {
		if err := s.snapshots.Clear(); err != nil {
			return sum, fmt.Errorf("clearing review: %w", err)
		}
		s.current = nil
		return sum, s.machine.Transition(StateIdle)
	}

	set := s.current.Set()
	set.Retain(keep)
	next := *s.current
	next.ReviewTransactions = set.Items
	if err := s.snapshots.Save(next); err != nil {
		_ = s.machine.Transition(StateReview)
		return sum, fmt.Errorf("saving review: %w", err)
	}
	s.current = &next
	return sum, s.machine.Transition(StateReview)
}

// Cancel discards the review. Only allowed while reviewing.
func (s *Session) Cancel() error {
	if s.State() != StateReview {
		return fmt.Errorf("%w: cancel is only allowed during review (state %s)", ErrTransition, s.State())
	}
	if err := s.snapshots.Clear(); err != nil {
		return fmt.Errorf("clearing review: %w", err)
	}
	s.current = nil
	return s.machine.Transition(StateIdle)
}
