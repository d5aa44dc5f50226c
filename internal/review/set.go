// Package review holds classified transactions while the user reviews them.
package review

import (
	"fmt"

	"github.com/flipledger/flipledger/internal/model"
)

// Set is the ordered list of transactions under review.
type Set struct {
	Items []model.ReviewTransaction
}

// NewSet wraps results for review. Everything is selected except the anomaly
// of a bank-pending line whose ledger entry is already cleared.
func NewSet(results []model.ClassificationResult) *Set {
	items := make([]model.ReviewTransaction, len(results))
	for i, r := range results {
		items[i] = model.ReviewTransaction{ClassificationResult: r, Selected: !r.IsAnomaly()}
	}
	return &Set{Items: items}
}

// Len returns the number of items.
func (s *Set) Len() int { return len(s.Items) }

// Get returns the item at index i (0-based).
func (s *Set) Get(i int) (model.ReviewTransaction, error) {
	if err := s.check(i); err != nil {
		return model.ReviewTransaction{}, err
	}
	return s.Items[i], nil
}

// Select sets the selection flag of item i. Anomalies cannot be selected.
func (s *Set) Select(i int, on bool) error {
	if err := s.check(i); err != nil {
		return err
	}
	if on && s.Items[i].IsAnomaly() {
		return model.ValidationError{Field: "selection", Description: fmt.Sprintf("item %d is already cleared in the ledger but pending at the bank; investigate instead of committing", i+1)}
	}
	s.Items[i].Selected = on
	return nil
}

// SelectAll sets the selection flag of every non-anomaly item.
func (s *Set) SelectAll(on bool) {
	for i := range s.Items {
		if !s.Items[i].IsAnomaly() {
			s.Items[i].Selected = on
		}
	}
}

// Override merges the non-zero fields of o into item i's overrides. IDs are
// checked against ref.
func (s *Set) Override(i int, o model.Overrides, ref model.ReferenceData) error {
	if err := s.check(i); err != nil {
		return err
	}
	if o.AccountID != 0 {
		if _, ok := ref.AccountByID(o.AccountID); !ok {
			return model.ValidationError{Field: "account", Description: fmt.Sprintf("#%d is not an active income or expense account", o.AccountID)}
		}
	}
	if o.VendorID != 0 {
		if _, ok := ref.VendorByID(o.VendorID); !ok {
			return model.ValidationError{Field: "vendor", Description: fmt.Sprintf("#%d is not an active vendor", o.VendorID)}
		}
	}
	if o.JobID != 0 && !hasJob(ref, o.JobID) {
		return model.ValidationError{Field: "job", Description: fmt.Sprintf("#%d is not an open job", o.JobID)}
	}
	if o.InstallerID != 0 && !hasInstaller(ref, o.InstallerID) {
		return model.ValidationError{Field: "installer", Description: fmt.Sprintf("#%d is not an active installer", o.InstallerID)}
	}

	cur := &s.Items[i].Overrides
	if o.AccountID != 0 {
		cur.AccountID = o.AccountID
	}
	if o.VendorID != 0 {
		cur.VendorID = o.VendorID
	}
	if o.JobID != 0 {
		cur.JobID = o.JobID
	}
	if o.InstallerID != 0 {
		cur.InstallerID = o.InstallerID
	}
	if o.Description != "" {
		cur.Description = o.Description
	}
	if o.Cleared != nil {
		v := *o.Cleared
		cur.Cleared = &v
	}
	return nil
}

// Selected returns the indexes of selected items in order.
func (s *Set) Selected() []int {
	var out []int
	for i, it := range s.Items {
		if it.Selected {
			out = append(out, i)
		}
	}
	return out
}

// Retain keeps only the items at the given indexes, in order.
func (s *Set) Retain(indexes []int) {
	kept := make([]model.ReviewTransaction, 0, len(indexes))
	for _, i := range indexes {
		if i >= 0 && i < len(s.Items) {
			kept = append(kept, s.Items[i])
		}
	}
	s.Items = kept
}

func (s *Set) check(i int) error {
	if i < 0 || i >= len(s.Items) {
		return model.ValidationError{Field: "item", Description: fmt.Sprintf("%d is out of range 1-%d", i+1, len(s.Items))}
	}
	return nil
}

func hasJob(ref model.ReferenceData, id int64) bool {
	for _, j := range ref.Jobs {
		if j.ID == id {
			return true
		}
	}
	return false
}

func hasInstaller(ref model.ReferenceData, id int64) bool {
	for _, in := range ref.Installers {
		if in.ID == id {
			return true
		}
	}
	return false
}
