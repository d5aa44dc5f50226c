// Package match classifies statement lines against the ledger.
package match

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

// Snapshot is the ledger state read once per reconciliation run.
type Snapshot struct {
	Pending   []model.LedgerEntry
	Cleared   []model.LedgerEntry
	History   []model.LedgerEntry // newest first
	Reference model.ReferenceData
}

// Run is the output of one reconciliation run.
type Run struct {
	ID       string
	Results  []model.ClassificationResult
	Warnings []string
}

// Matcher classifies candidate transactions. It holds no per-run state.
type Matcher struct {
	cfg Config
	log *slog.Logger
}

// New creates a Matcher.
func New(cfg Config, log *slog.Logger) *Matcher {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{cfg: cfg, log: log}
}

// Match classifies every candidate against the snapshot for account. Candidates
// are processed in input order; each ledger line is consumed by at most one
// candidate. Zero-amount candidates produce a warning and no result.
func (m *Matcher) Match(candidates []model.CandidateTransaction, snap Snapshot, account model.Account) Run {
	run := Run{ID: uuid.NewString()}
	class := account.Class()
	today := dateOnly(m.cfg.Now())

	usedPending := make(map[int64]bool)
	usedCleared := make(map[int64]bool)
	seen := make(map[string]int)

	for i, c := range candidates {
		if c.Amount.IsZero() {
			run.Warnings = append(run.Warnings, fmt.Sprintf("line %d %q has a zero amount and was skipped", i+1, c.Description))
			continue
		}
		key := c.Date.Format("2006-01-02") + "|" + c.Description + "|" + c.Amount.String() + "|" + string(c.BankStatus)
		if prev, ok := seen[key]; ok {
			run.Warnings = append(run.Warnings, fmt.Sprintf("line %d duplicates line %d (%s %s)", i+1, prev, c.Description, c.Amount.StringFixed(2)))
		} else {
			seen[key] = i + 1
		}
		if dateOnly(c.Date).After(today) {
			run.Warnings = append(run.Warnings, fmt.Sprintf("line %d %q is dated in the future (%s)", i+1, c.Description, c.Date.Format("2006-01-02")))
		}

		res := m.classify(c, class, snap, usedPending, usedCleared)
		m.log.Debug("classified statement line",
			"line", i+1, "description", c.Description, "amount", c.Amount.String(),
			"match_type", res.MatchType, "confidence", res.Confidence, "matched_line", res.MatchedLineID)
		run.Results = append(run.Results, res)
	}
	return run
}

func (m *Matcher) classify(c model.CandidateTransaction, class model.AccountClass, snap Snapshot, usedPending, usedCleared map[int64]bool) model.ClassificationResult {
	norm := Normalize(c.Amount, class)
	res := model.ClassificationResult{
		Candidate:        c,
		NormalizedAmount: norm,
		BankStatus:       c.BankStatus,
	}
	allowMagnitude := class == model.ClassCreditCard

	if e, conf, ok := m.exact(c, norm, snap.Pending, usedPending, allowMagnitude); ok {
		usedPending[e.LineID] = true
		return matched(res, model.MatchPending, e, conf)
	}
	if e, conf, ok := m.exact(c, norm, snap.Cleared, usedCleared, allowMagnitude); ok {
		usedCleared[e.LineID] = true
		return matched(res, model.MatchCleared, e, conf)
	}
	if e, conf, ok := m.tip(c, norm, snap.Pending, usedPending); ok {
		usedPending[e.LineID] = true
		res = matched(res, model.MatchTipAdjustment, e, conf)
		res.OriginalAmount = decimal.NewNullDecimal(e.Amount)
		return res
	}

	res.MatchType = model.MatchNew
	res.Suggestion = m.suggest(c, snap)
	res.Confidence = m.newConfidence(res.Suggestion)
	return res
}

func matched(res model.ClassificationResult, mt model.MatchType, e model.LedgerEntry, conf model.Confidence) model.ClassificationResult {
	res.MatchType = mt
	res.MatchedLineID = e.LineID
	res.MatchedTransactionID = e.TransactionID
	res.Confidence = conf
	return res
}

type scored struct {
	entry     model.LedgerEntry
	magnitude bool
	days      int
	sim       float64
	diff      decimal.Decimal
}

// exact finds the best unconsumed entry whose amount equals norm to the cent.
// With allowMagnitude, an opposite-sign entry of equal magnitude also counts
// when descriptions are similar enough; such matches rank after signed ones
// and lose one confidence level.
func (m *Matcher) exact(c model.CandidateTransaction, norm decimal.Decimal, entries []model.LedgerEntry, used map[int64]bool, allowMagnitude bool) (model.LedgerEntry, model.Confidence, bool) {
	var best *scored
	for _, e := range entries {
		if used[e.LineID] {
			continue
		}
		s := scored{entry: e, days: daysApart(c.Date, e.Date), sim: Similarity(c.Description, e.Description)}
		switch {
		case e.Amount.Equal(norm):
		case allowMagnitude && e.Amount.Abs().Equal(norm.Abs()) && s.sim >= m.cfg.MagnitudeSimilarity:
			s.magnitude = true
		default:
			continue
		}
		if best == nil || betterExact(s, *best) {
			cp := s
			best = &cp
		}
	}
	if best == nil {
		return model.LedgerEntry{}, "", false
	}

	conf := model.ConfidenceMedium
	if best.days <= m.cfg.DateToleranceDays {
		conf = model.ConfidenceHigh
	}
	if best.magnitude {
		conf = conf.Lower()
	}
	return best.entry, conf, true
}

// betterExact orders exact candidates: signed before magnitude-only, then
// smaller date distance, higher similarity, lower line id.
func betterExact(a, b scored) bool {
	if a.magnitude != b.magnitude {
		return !a.magnitude
	}
	if a.days != b.days {
		return a.days < b.days
	}
	if a.sim != b.sim {
		return a.sim > b.sim
	}
	return a.entry.LineID < b.entry.LineID
}

// tip finds a pending entry that the candidate plausibly extends with a tip or
// surcharge.
func (m *Matcher) tip(c model.CandidateTransaction, norm decimal.Decimal, pending []model.LedgerEntry, used map[int64]bool) (model.LedgerEntry, model.Confidence, bool) {
	rule := m.cfg.Tip
	if !rule.Applies(c.Description) {
		return model.LedgerEntry{}, "", false
	}

	var best *scored
	for _, e := range pending {
		if used[e.LineID] || e.Amount.Sign() != norm.Sign() {
			continue
		}
		days := daysApart(c.Date, e.Date)
		if days > rule.WindowDays || !rule.Qualifies(e.Amount, norm) {
			continue
		}
		s := scored{entry: e, days: days, diff: norm.Abs().Sub(e.Amount.Abs()), sim: Similarity(c.Description, e.Description)}
		if best == nil || betterTip(s, *best) {
			cp := s
			best = &cp
		}
	}
	if best == nil {
		return model.LedgerEntry{}, "", false
	}

	conf := model.ConfidenceMedium
	if best.days == 0 && best.sim >= 0.8 {
		conf = model.ConfidenceHigh
	}
	return best.entry, conf, true
}

func betterTip(a, b scored) bool {
	if !a.diff.Equal(b.diff) {
		return a.diff.LessThan(b.diff)
	}
	if a.days != b.days {
		return a.days < b.days
	}
	return a.entry.LineID < b.entry.LineID
}

// suggest derives classification fields for a new transaction from the most
// similar history entry, falling back to a vendor named in the description.
func (m *Matcher) suggest(c model.CandidateTransaction, snap Snapshot) *model.Suggestion {
	var best *model.LedgerEntry
	bestSim := -1.0
	for i := range snap.History {
		sim := Similarity(c.Description, snap.History[i].Description)
		if sim > bestSim {
			best, bestSim = &snap.History[i], sim
		}
	}
	if best != nil && bestSim >= m.cfg.SuggestionThreshold {
		return suggestionFrom(*best, bestSim)
	}

	for _, v := range snap.Reference.Vendors {
		if !containsName(c.Description, v.Name) {
			continue
		}
		s := &model.Suggestion{VendorID: v.ID, Similarity: max(bestSim, 0), Source: "vendor " + v.Name}
		for _, h := range snap.History {
			if h.VendorID == v.ID {
				s.CategoryAccountID = h.AccountID
				s.JobID = h.JobID
				s.InstallerID = h.InstallerID
				s.Purpose = h.Purpose
				break
			}
		}
		return s
	}
	return nil
}

func suggestionFrom(e model.LedgerEntry, sim float64) *model.Suggestion {
	return &model.Suggestion{
		CategoryAccountID: e.AccountID,
		VendorID:          e.VendorID,
		JobID:             e.JobID,
		InstallerID:       e.InstallerID,
		Purpose:           e.Purpose,
		Similarity:        sim,
		Source:            e.Description,
	}
}

func (m *Matcher) newConfidence(s *model.Suggestion) model.Confidence {
	switch {
	case s == nil:
		return model.ConfidenceLow
	case s.Similarity >= 0.9:
		return model.ConfidenceHigh
	case s.Similarity >= m.cfg.SuggestionThreshold:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysApart(a, b time.Time) int {
	d := dateOnly(a).Sub(dateOnly(b)).Hours() / 24
	return int(math.Abs(math.Round(d)))
}
