package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatus is the bank's view of a statement line.
type BankStatus string

const (
	BankPosted  BankStatus = "posted"
	BankPending BankStatus = "pending"
)

// CandidateTransaction is one normalized statement line.
type CandidateTransaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // statement sign, before normalization
	BankStatus  BankStatus      `json:"bankStatus"`
	Reference   string          `json:"reference,omitempty"`
}
