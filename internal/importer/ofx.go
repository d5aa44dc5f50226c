package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/model"
)

// OFXParser parses OFX/QFX bank and credit-card statement downloads. OFX only
// carries posted transactions; the FITID becomes the candidate reference.
type OFXParser struct{}

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// Parse reads an OFX response and returns candidate transactions.
func (p *OFXParser) Parse(r io.Reader) ([]model.CandidateTransaction, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing OFX: %w", err)
	}
	if len(resp.Bank) == 0 && len(resp.CreditCard) == 0 {
		return nil, errors.New("OFX has no bank or credit card statements")
	}

	var txns []model.CandidateTransaction
	for _, msg := range append(resp.Bank, resp.CreditCard...) {
		var list *ofxgo.TransactionList
		switch stmt := msg.(type) {
		case *ofxgo.StatementResponse:
			list = stmt.BankTranList
		case *ofxgo.CCStatementResponse:
			list = stmt.BankTranList
		default:
			return nil, fmt.Errorf("unexpected OFX message type %T", msg)
		}
		if list == nil {
			continue
		}

		for _, tr := range list.Transactions {
			amount, err := decimal.NewFromString(tr.TrnAmt.String())
			if err != nil {
				return nil, fmt.Errorf("parsing amount of %s: %w", tr.FiTID, err)
			}
			posted := tr.DtPosted.Time
			txns = append(txns, model.CandidateTransaction{
				Date:        time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
				Description: ofxDescription(string(tr.Name), string(tr.Memo)),
				Amount:      amount,
				BankStatus:  model.BankPosted,
				Reference:   string(tr.FiTID),
			})
		}
	}
	return txns, nil
}

// Some banks leave NAME empty or truncate it and put the rest in MEMO.
func ofxDescription(name, memo string) string {
	name = strings.TrimSpace(name)
	memo = strings.TrimSpace(memo)
	switch {
	case name == "":
		return memo
	case memo == "" || strings.Contains(name, memo):
		return name
	default:
		return name + " " + memo
	}
}
