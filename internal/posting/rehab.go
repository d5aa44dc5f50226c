package posting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

// RehabInput describes one rehab cost (or refund) on a flip.
type RehabInput struct {
	CashAccountID   int64
	Date            time.Time
	CostType        CostType
	Amount          decimal.Decimal // magnitude
	Refund          bool
	RehabCategoryID int64
	DealID          int64
	JobID           int64
	VendorID        int64
	InstallerID     int64
	Description     string
}

// Rehab builds a two-line rehab expense: the cost-type account is debited and
// cash credited, reversed for refunds. Labor must name an installer, material
// and service a vendor.
func (b *Builder) Rehab(in RehabInput) (model.Posting, error) {
	if _, err := ParseCostType(string(in.CostType)); err != nil {
		return model.Posting{}, err
	}
	if err := requirePositive("amount", in.Amount); err != nil {
		return model.Posting{}, err
	}
	if in.RehabCategoryID == 0 {
		return model.Posting{}, model.ValidationError{Field: "rehab category", Description: "required"}
	}
	if in.CashAccountID == 0 {
		return model.Posting{}, model.ValidationError{Field: "cash account", Description: "required"}
	}
	switch in.CostType {
	case CostLabor:
		if in.InstallerID == 0 {
			return model.Posting{}, model.ValidationError{Field: "installer", Description: "labor costs require an installer"}
		}
	case CostMaterial, CostService:
		if in.VendorID == 0 {
			return model.Posting{}, model.ValidationError{Field: "vendor", Description: "material and service costs require a vendor"}
		}
	}
	expense, ok := b.cfg.Rehab[in.CostType]
	if !ok || expense == 0 {
		return model.Posting{}, fmt.Errorf("no rehab account configured for cost type %s", in.CostType)
	}

	amount := in.Amount
	if in.Refund {
		amount = amount.Neg()
	}
	desc := in.Description
	if desc == "" {
		desc = fmt.Sprintf("Rehab %s", in.CostType)
		if in.Refund {
			desc += " refund"
		}
	}

	return b.finalize(model.Posting{
		Date:        in.Date,
		Description: desc,
		Lines: []model.PostingLine{
			{
				AccountID:       expense,
				Amount:          amount,
				DealID:          in.DealID,
				RehabCategoryID: in.RehabCategoryID,
				JobID:           in.JobID,
				VendorID:        in.VendorID,
				InstallerID:     in.InstallerID,
			},
			{AccountID: in.CashAccountID, Amount: amount.Neg(), DealID: in.DealID},
		},
	})
}
