package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a transaction line as read for matching.
// Zero IDs mean "not linked".
type LedgerEntry struct {
	LineID        int64           `json:"lineId"`
	TransactionID int64           `json:"transactionId"`
	AccountID     int64           `json:"accountId"`
	AccountCode   string          `json:"accountCode"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Cleared       bool            `json:"cleared"`
	VendorID      int64           `json:"vendorId,omitempty"`
	VendorName    string          `json:"vendorName,omitempty"`
	JobID         int64           `json:"jobId,omitempty"`
	JobName       string          `json:"jobName,omitempty"`
	InstallerID   int64           `json:"installerId,omitempty"`
	InstallerName string          `json:"installerName,omitempty"`
	Purpose       Purpose         `json:"purpose,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	Memo          string          `json:"memo,omitempty"`
}

// Vendor is a payee or supplier.
type Vendor struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Job is a contracting job that costs and income can be tagged with.
type Job struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Open bool   `json:"open"`
}

// Installer is a labor subcontractor.
type Installer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// RehabCategory groups rehab costs on a flip (kitchen, roof, ...).
type RehabCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Deal is a real-estate flip with its asset and loan accounts.
type Deal struct {
	ID               int64
	Name             string
	AssetAccountID   int64
	LoanAccountID    int64
	OriginalLoan     decimal.Decimal
	AnnualRate       decimal.Decimal // percent, e.g. 7.25
	TermMonths       int
	CloseDate        time.Time
	FirstPaymentDate time.Time // zero = one month after close
}

// ReferenceData is the active/open reference lists used for suggestions and overrides.
type ReferenceData struct {
	Vendors         []Vendor        `json:"vendors"`
	Jobs            []Job           `json:"jobs"`
	Installers      []Installer     `json:"installers"`
	Accounts        []Account       `json:"accounts"`
	RehabCategories []RehabCategory `json:"rehabCategories"`
}

// VendorByID returns the vendor with the given ID.
func (r ReferenceData) VendorByID(id int64) (Vendor, bool) {
	for _, v := range r.Vendors {
		if v.ID == id {
			return v, true
		}
	}
	return Vendor{}, false
}

// AccountByID returns the account with the given ID.
func (r ReferenceData) AccountByID(id int64) (Account, bool) {
	for _, a := range r.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}
