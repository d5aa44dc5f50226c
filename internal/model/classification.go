package model

import "github.com/shopspring/decimal"

// MatchType is the outcome of classifying a statement line.
type MatchType string

const (
	MatchPending       MatchType = "matched_pending"
	MatchCleared       MatchType = "matched_cleared"
	MatchTipAdjustment MatchType = "tip_adjustment"
	MatchNew           MatchType = "new"
)

// Confidence grades a classification.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Lower returns the next lower confidence level.
func (c Confidence) Lower() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Suggestion holds best-effort classification fields for a new transaction.
type Suggestion struct {
	CategoryAccountID int64   `json:"categoryAccountId,omitempty"`
	VendorID          int64   `json:"vendorId,omitempty"`
	JobID             int64   `json:"jobId,omitempty"`
	InstallerID       int64   `json:"installerId,omitempty"`
	Purpose           Purpose `json:"purpose,omitempty"`
	Similarity        float64 `json:"similarity"`
	Source            string  `json:"source,omitempty"` // e.g. the history description it came from
}

// ClassificationResult is the matcher's verdict for one candidate.
type ClassificationResult struct {
	Candidate            CandidateTransaction `json:"candidate"`
	NormalizedAmount     decimal.Decimal      `json:"normalizedAmount"`
	MatchType            MatchType            `json:"matchType"`
	BankStatus           BankStatus           `json:"bankStatus"`
	MatchedLineID        int64                `json:"matchedLineId,omitempty"`
	MatchedTransactionID int64                `json:"matchedTransactionId,omitempty"`
	OriginalAmount       decimal.NullDecimal  `json:"originalAmount"`
	Confidence           Confidence           `json:"confidence"`
	Suggestion           *Suggestion          `json:"suggestion,omitempty"`
}

// IsAnomaly reports whether the bank still shows the item as pending while the
// ledger already has it cleared.
func (r ClassificationResult) IsAnomaly() bool {
	return r.BankStatus == BankPending && r.MatchType == MatchCleared
}

// Overrides are user edits applied on top of a classification.
type Overrides struct {
	AccountID   int64  `json:"accountId,omitempty"`
	VendorID    int64  `json:"vendorId,omitempty"`
	JobID       int64  `json:"jobId,omitempty"`
	InstallerID int64  `json:"installerId,omitempty"`
	Description string `json:"description,omitempty"`
	Cleared     *bool  `json:"cleared,omitempty"`
}

// ReviewTransaction is a classification result under user review.
type ReviewTransaction struct {
	ClassificationResult
	Selected  bool      `json:"selected"`
	Overrides Overrides `json:"overrides"`
}

// CategoryAccountID returns the override account, falling back to the suggestion.
func (t ReviewTransaction) CategoryAccountID() int64 {
	if t.Overrides.AccountID != 0 {
		return t.Overrides.AccountID
	}
	if t.Suggestion != nil {
		return t.Suggestion.CategoryAccountID
	}
	return 0
}

// VendorID returns the override vendor, falling back to the suggestion.
func (t ReviewTransaction) VendorID() int64 {
	if t.Overrides.VendorID != 0 {
		return t.Overrides.VendorID
	}
	if t.Suggestion != nil {
		return t.Suggestion.VendorID
	}
	return 0
}

// JobID returns the override job, falling back to the suggestion.
func (t ReviewTransaction) JobID() int64 {
	if t.Overrides.JobID != 0 {
		return t.Overrides.JobID
	}
	if t.Suggestion != nil {
		return t.Suggestion.JobID
	}
	return 0
}

// InstallerID returns the override installer, falling back to the suggestion.
func (t ReviewTransaction) InstallerID() int64 {
	if t.Overrides.InstallerID != 0 {
		return t.Overrides.InstallerID
	}
	if t.Suggestion != nil {
		return t.Suggestion.InstallerID
	}
	return 0
}

// Purpose returns the suggested purpose, defaulting to business.
func (t ReviewTransaction) Purpose() Purpose {
	if t.Suggestion != nil && t.Suggestion.Purpose != "" {
		return t.Suggestion.Purpose
	}
	return PurposeBusiness
}

// Description returns the override description or the raw statement text.
func (t ReviewTransaction) Description() string {
	if t.Overrides.Description != "" {
		return t.Overrides.Description
	}
	return t.Candidate.Description
}

// Cleared returns whether new lines should be posted as cleared.
// Posted bank lines are cleared unless overridden.
func (t ReviewTransaction) Cleared() bool {
	if t.Overrides.Cleared != nil {
		return *t.Overrides.Cleared
	}
	return t.BankStatus == BankPosted
}

// HiddenStats counts classification results suppressed from review.
type HiddenStats struct {
	BothPending    int `json:"bothPending"`    // bank pending, ledger pending
	AlreadyCleared int `json:"alreadyCleared"` // bank posted, ledger cleared
}

// Total returns the number of hidden items.
func (h HiddenStats) Total() int {
	return h.BothPending + h.AlreadyCleared
}
