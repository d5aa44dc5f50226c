// Package commit applies reviewed reconciliation items and manual postings to
// the ledger.
package commit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/commitlog"
	"github.com/flipledger/flipledger/internal/id"
	"github.com/flipledger/flipledger/internal/model"
	"github.com/flipledger/flipledger/internal/posting"
)

// Store is the subset of the ledger store the orchestrator writes through.
type Store interface {
	MarkCleared(ctx context.Context, txID int64, date time.Time) error
	ScaleTransaction(ctx context.Context, txID int64, factor decimal.Decimal, date time.Time) error
	CreateTransaction(ctx context.Context, p model.Posting) (int64, error)
	EntriesBetween(ctx context.Context, accountID int64, from, to time.Time) ([]model.LedgerEntry, error)
}

// Failure is one item that could not be committed.
type Failure struct {
	Index       int
	Date        time.Time
	Description string
	Err         error
}

// Summary reports the outcome of a commit.
type Summary struct {
	Cleared     int
	Created     int
	TipAdjusted int
	Skipped     int
	Failures    []Failure
	Committed   []int // indexes written successfully
}

// Succeeded returns the number of items written.
func (s Summary) Succeeded() int {
	return s.Cleared + s.Created + s.TipAdjusted
}

// ShouldClearReview reports whether the review state should be discarded:
// something was written, or nothing is left to review.
func (s Summary) ShouldClearReview(remaining int) bool {
	return s.Succeeded() > 0 || remaining == 0
}

// Options configures an Orchestrator.
type Options struct {
	CommitLogPath string // empty disables the commit log
	Duplicates    posting.DuplicateRule
	Now           func() time.Time
}

// Orchestrator dispatches reviewed items to the store one at a time.
type Orchestrator struct {
	store   Store
	builder *posting.Builder
	refs    *id.Generator
	log     *slog.Logger
	opts    Options
}

// New creates an Orchestrator.
func New(store Store, builder *posting.Builder, refs *id.Generator, log *slog.Logger, opts Options) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if refs == nil {
		refs = id.NewGenerator(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{store: store, builder: builder, refs: refs, log: log, opts: opts}
}

// Commit writes every selected item in order. Each item is its own store
// write; a failing item is logged, recorded and skipped, and the rest of the
// batch still runs. Only a cancelled context stops the batch early.
func (o *Orchestrator) Commit(ctx context.Context, runID string, account model.Account, reviewed []model.ReviewTransaction) Summary {
	var sum Summary
	var records []commitlog.Entry
	log := o.log.With("run", runID, "account", account.Code)

	for i, rt := range reviewed {
		if !rt.Selected {
			continue
		}
		if err := ctx.Err(); err != nil {
			sum.Failures = append(sum.Failures, Failure{Index: i, Date: rt.Candidate.Date, Description: rt.Description(), Err: err})
			records = append(records, o.record(runID, commitlog.ActionFailed, rt, 0, "", err))
			continue
		}

		action, txID, ref, err := o.apply(ctx, account, rt)
		switch {
		case err != nil:
			log.Warn("commit item failed", "index", i+1, "description", rt.Description(), "error", err)
			sum.Failures = append(sum.Failures, Failure{Index: i, Date: rt.Candidate.Date, Description: rt.Description(), Err: err})
			records = append(records, o.record(runID, commitlog.ActionFailed, rt, txID, ref, err))
			continue
		case action == commitlog.ActionSkipped:
			log.Debug("commit item skipped", "index", i+1, "match", rt.MatchType, "bank", rt.BankStatus)
			sum.Skipped++
			records = append(records, o.record(runID, action, rt, txID, ref, nil))
			continue
		case action == commitlog.ActionCleared:
			sum.Cleared++
		case action == commitlog.ActionTipAdjusted:
			sum.TipAdjusted++
		case action == commitlog.ActionCreated:
			sum.Created++
		}
		log.Info("commit item", "index", i+1, "action", action, "tx", txID)
		sum.Committed = append(sum.Committed, i)
		records = append(records, o.record(runID, action, rt, txID, ref, nil))
	}

	o.appendLog(records)
	log.Info("commit finished",
		"cleared", sum.Cleared, "created", sum.Created, "tip_adjusted", sum.TipAdjusted,
		"skipped", sum.Skipped, "failed", len(sum.Failures))
	return sum
}

func (o *Orchestrator) apply(ctx context.Context, account model.Account, rt model.ReviewTransaction) (commitlog.Action, int64, string, error) {
	date := rt.Candidate.Date
	switch {
	case rt.MatchType == model.MatchPending && rt.BankStatus == model.BankPosted:
		if err := o.store.MarkCleared(ctx, rt.MatchedTransactionID, date); err != nil {
			return "", rt.MatchedTransactionID, "", fmt.Errorf("clearing transaction #%d: %w", rt.MatchedTransactionID, err)
		}
		return commitlog.ActionCleared, rt.MatchedTransactionID, "", nil

	case rt.MatchType == model.MatchTipAdjustment:
		if !rt.OriginalAmount.Valid {
			return "", rt.MatchedTransactionID, "", model.ValidationError{Field: "original amount", Description: "missing on tip adjustment"}
		}
		factor, err := posting.TipScaleFactor(rt.OriginalAmount.Decimal, rt.NormalizedAmount)
		if err != nil {
			return "", rt.MatchedTransactionID, "", err
		}
		if err := o.store.ScaleTransaction(ctx, rt.MatchedTransactionID, factor, date); err != nil {
			return "", rt.MatchedTransactionID, "", fmt.Errorf("adjusting transaction #%d: %w", rt.MatchedTransactionID, err)
		}
		return commitlog.ActionTipAdjusted, rt.MatchedTransactionID, "", nil

	case rt.MatchType == model.MatchNew:
		p, err := o.builder.NewEntry(account.ID, rt)
		if err != nil {
			return "", 0, "", err
		}
		if p.Reference, err = o.refs.Reference(p.Date); err != nil {
			return "", 0, "", err
		}
		txID, err := o.store.CreateTransaction(ctx, p)
		if err != nil {
			return "", 0, p.Reference, fmt.Errorf("creating transaction: %w", err)
		}
		return commitlog.ActionCreated, txID, p.Reference, nil
	}
	// matched_cleared (including the pending-at-bank anomaly) and
	// matched_pending that is still pending at the bank.
	return commitlog.ActionSkipped, rt.MatchedTransactionID, "", nil
}

// PostResult is the outcome of a manual posting.
type PostResult struct {
	TransactionID int64
	Reference     string
	Duplicates    []model.LedgerEntry
}

// Post writes a manually built posting. Lines on cashAccountID are checked for
// likely duplicates first; duplicates are reported, not rejected.
func (o *Orchestrator) Post(ctx context.Context, p model.Posting, cashAccountID int64) (PostResult, error) {
	var res PostResult
	if err := p.CheckBalanced(model.BalanceTolerance); err != nil {
		return res, fmt.Errorf("posting %q: %w", p.Description, err)
	}

	if cashAccountID != 0 && o.opts.Duplicates.WindowDays > 0 {
		dups, err := o.duplicates(ctx, p, cashAccountID)
		if err != nil {
			return res, err
		}
		res.Duplicates = dups
		for _, d := range dups {
			o.log.Warn("possible duplicate", "description", p.Description, "existing_tx", d.TransactionID, "existing_date", d.Date.Format(time.DateOnly))
		}
	}

	if p.Reference == "" {
		ref, err := o.refs.Reference(p.Date)
		if err != nil {
			return res, err
		}
		p.Reference = ref
	}
	res.Reference = p.Reference

	txID, err := o.store.CreateTransaction(ctx, p)
	entry := commitlog.Entry{
		Timestamp:   o.opts.Now(),
		Action:      commitlog.ActionPosted,
		Date:        p.Date,
		Description: p.Description,
		Amount:      grossAmount(p),
		Reference:   p.Reference,
	}
	if err != nil {
		entry.Action = commitlog.ActionFailed
		entry.Error = err.Error()
		o.appendLog([]commitlog.Entry{entry})
		return res, fmt.Errorf("creating transaction: %w", err)
	}
	entry.TransactionID = txID
	o.appendLog([]commitlog.Entry{entry})

	o.log.Info("posted", "tx", txID, "reference", p.Reference, "lines", len(p.Lines))
	res.TransactionID = txID
	return res, nil
}

func (o *Orchestrator) duplicates(ctx context.Context, p model.Posting, cashAccountID int64) ([]model.LedgerEntry, error) {
	window := o.opts.Duplicates.WindowDays
	existing, err := o.store.EntriesBetween(ctx, cashAccountID, p.Date.AddDate(0, 0, -window), p.Date.AddDate(0, 0, window))
	if err != nil {
		return nil, fmt.Errorf("checking duplicates: %w", err)
	}
	var dups []model.LedgerEntry
	for _, l := range p.Lines {
		if l.AccountID != cashAccountID {
			continue
		}
		dups = append(dups, posting.FindDuplicates(existing, cashAccountID, l.Amount, p.Date, p.Description, o.opts.Duplicates)...)
	}
	return dups, nil
}

func (o *Orchestrator) record(runID string, action commitlog.Action, rt model.ReviewTransaction, txID int64, ref string, err error) commitlog.Entry {
	e := commitlog.Entry{
		Timestamp:     o.opts.Now(),
		RunID:         runID,
		Action:        action,
		Date:          rt.Candidate.Date,
		Description:   rt.Description(),
		Amount:        rt.NormalizedAmount,
		TransactionID: txID,
		Reference:     ref,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

func (o *Orchestrator) appendLog(entries []commitlog.Entry) {
	if o.opts.CommitLogPath == "" {
		return
	}
	if err := commitlog.Append(o.opts.CommitLogPath, entries); err != nil {
		o.log.Error("writing commit log", "path", o.opts.CommitLogPath, "error", err)
	}
}

// grossAmount is the total of the debit side of a posting.
func grossAmount(p model.Posting) decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		if l.Amount.IsPositive() {
			total = total.Add(l.Amount)
		}
	}
	return total
}
