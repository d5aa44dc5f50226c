package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/commit"
	"github.com/flipledger/flipledger/internal/config"
	"github.com/flipledger/flipledger/internal/id"
	"github.com/flipledger/flipledger/internal/ledger"
	"github.com/flipledger/flipledger/internal/match"
	"github.com/flipledger/flipledger/internal/model"
	"github.com/flipledger/flipledger/internal/posting"
	"github.com/flipledger/flipledger/internal/review"
	"github.com/flipledger/flipledger/internal/workflow"
)

// env is everything a command needs once the project is loaded.
type env struct {
	cfg       *config.Config
	store     *ledger.SQLiteStore
	snapshots *review.SnapshotStore
	log       *slog.Logger
}

func openEnv(opts *rootOptions) (*env, error) {
	path := opts.configPath
	if path == "" {
		path = config.FileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s (run 'flipledger init' first?): %w", path, err)
	}
	store, err := ledger.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, store: store, log: slog.Default()}, nil
}

func (e *env) Close() {
	if e.snapshots != nil {
		_ = e.snapshots.Close()
	}
	_ = e.store.Close()
}

func (e *env) builder(ctx context.Context) (*posting.Builder, error) {
	pc, err := posting.ResolveConfig(ctx, e.store, e.cfg.Posting)
	if err != nil {
		return nil, err
	}
	return posting.NewBuilder(pc, e.store), nil
}

func (e *env) orchestrator(ctx context.Context) (*commit.Orchestrator, error) {
	b, err := e.builder(ctx)
	if err != nil {
		return nil, err
	}
	return commit.New(e.store, b, id.NewGenerator(0), e.log, commit.Options{
		CommitLogPath: e.cfg.CommitLogPath(),
		Duplicates:    posting.DuplicateRuleFromConfig(e.cfg.Matching),
	}), nil
}

// session opens the review snapshot and restores any review in progress.
func (e *env) session(ctx context.Context) (*workflow.Session, error) {
	snaps, err := review.OpenSnapshotStore(e.cfg.SnapshotPath())
	if err != nil {
		return nil, err
	}
	e.snapshots = snaps

	mc, err := match.FromConfig(e.cfg.Matching)
	if err != nil {
		return nil, err
	}
	orch, err := e.orchestrator(ctx)
	if err != nil {
		return nil, err
	}
	s := workflow.NewSession(e.store, snaps, match.New(mc, e.log), orch, e.cfg.Matching, e.log)
	if _, err := s.Restore(); err != nil {
		return nil, fmt.Errorf("restoring review: %w", err)
	}
	return s, nil
}

func (e *env) account(ctx context.Context, code string) (model.Account, error) {
	if code == "" {
		return model.Account{}, model.ValidationError{Field: "account", Description: "an account code is required"}
	}
	a, err := e.store.AccountByCode(ctx, code)
	if errors.Is(err, ledger.ErrNotFound) {
		return model.Account{}, model.ValidationError{Field: "account", Description: fmt.Sprintf("%s is not in the chart of accounts", code)}
	}
	return a, err
}

// cashAccount resolves a bank or credit card account.
func (e *env) cashAccount(ctx context.Context, code string) (model.Account, error) {
	a, err := e.account(ctx, code)
	if err != nil {
		return model.Account{}, err
	}
	if c := a.Class(); c != model.ClassCash && c != model.ClassCreditCard {
		return model.Account{}, model.ValidationError{Field: "account", Description: fmt.Sprintf("%s %s is a %s account, not a bank or credit card", a.Code, a.Name, c)}
	}
	return a, nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, model.ValidationError{Field: field, Description: "required (YYYY-MM-DD)"}
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, model.ValidationError{Field: field, Description: fmt.Sprintf("%q is not YYYY-MM-DD", s)}
	}
	return t, nil
}

func parseDateOrToday(field, s string) (time.Time, error) {
	if s == "" {
		y, m, d := time.Now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return parseDate(field, s)
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.NewReplacer("$", "", ",", "").Replace(s))
	if err != nil {
		return decimal.Zero, model.ValidationError{Field: field, Description: fmt.Sprintf("%q is not a number", s)}
	}
	return d, nil
}

// parseMoney parses an amount in whole cents.
func parseMoney(field, s string) (decimal.Decimal, error) {
	d, err := parseDecimal(field, s)
	if err != nil {
		return decimal.Zero, err
	}
	if !model.IsWholeCents(d) {
		return decimal.Zero, model.ValidationError{Field: field, Description: fmt.Sprintf("%q has more than 2 decimal places", s)}
	}
	return d, nil
}
