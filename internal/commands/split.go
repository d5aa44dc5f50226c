package commands

import (
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/flipledger/flipledger/internal/model"
	"github.com/flipledger/flipledger/internal/posting"
)

func newSplitCommand(opts *rootOptions) *cobra.Command {
	var dateStr, total, escrow string
	var dealID int64

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Preview the amortization split of a mortgage payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			deal, err := e.store.Deal(cmd.Context(), dealID)
			if err != nil {
				return err
			}
			date, err := parseDateOrToday("date", dateStr)
			if err != nil {
				return err
			}
			tot, err := parseMoney("total", total)
			if err != nil {
				return err
			}
			s, err := autoSplit(cmd, deal, date, tot, escrow)
			if err != nil {
				return err
			}

			pterm.DefaultSection.Printf("%s payment %d of %d", deal.Name, s.PaymentNumber, deal.TermMonths)
			return pterm.DefaultTable.WithData(pterm.TableData{
				{"Scheduled P&I", s.Payment.StringFixed(2)},
				{"Principal", s.Principal.StringFixed(2)},
				{"Interest", s.Interest.StringFixed(2)},
				{"Escrow", s.Escrow.StringFixed(2)},
				{"Balance after", s.Balance.StringFixed(2)},
				{"Escrow inferred", strconv.FormatBool(s.EscrowInferred)},
			}).Render()
		},
	}
	cmd.Flags().Int64Var(&dealID, "deal", 0, "deal id (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "payment date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&total, "total", "", "total payment (required)")
	cmd.Flags().StringVar(&escrow, "escrow", "", "escrow portion (inferred when omitted)")
	_ = cmd.MarkFlagRequired("deal")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

// autoSplit runs the amortization split, passing escrow only when the flag was given.
func autoSplit(cmd *cobra.Command, deal model.Deal, date time.Time, total decimal.Decimal, escrow string) (posting.Split, error) {
	var escrowPtr *decimal.Decimal
	if cmd.Flags().Changed("escrow") {
		v, err := parseMoney("escrow", escrow)
		if err != nil {
			return posting.Split{}, err
		}
		escrowPtr = &v
	}
	s, err := posting.AutoSplit(deal, date, total, escrowPtr)
	if err != nil {
		return posting.Split{}, err
	}
	printWarnings(s.Warnings)
	return s, nil
}
