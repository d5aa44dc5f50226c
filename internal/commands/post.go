package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flipledger/flipledger/internal/model"
	"github.com/flipledger/flipledger/internal/posting"
)

func newPostCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a manual transaction",
	}
	cmd.AddCommand(
		newPostExpenseCommand(opts),
		newPostAcquisitionCommand(opts),
		newPostSaleCommand(opts),
		newPostRehabCommand(opts),
		newPostMortgageCommand(opts),
	)
	return cmd
}

type buildFunc func(ctx context.Context, e *env, b *posting.Builder, cash model.Account) (model.Posting, error)

// runPost resolves the cash account, builds the posting and writes it.
func runPost(cmd *cobra.Command, opts *rootOptions, cashCode string, build buildFunc) error {
	ctx := cmd.Context()
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	cash, err := e.cashAccount(ctx, cashCode)
	if err != nil {
		return err
	}
	orch, err := e.orchestrator(ctx)
	if err != nil {
		return err
	}
	b, err := e.builder(ctx)
	if err != nil {
		return err
	}
	p, err := build(ctx, e, b, cash)
	if err != nil {
		return err
	}

	res, err := orch.Post(ctx, p, cash.ID)
	if err != nil {
		return err
	}
	for _, d := range res.Duplicates {
		pterm.Warning.Printf("Possible duplicate of transaction #%d on %s: %q %s\n",
			d.TransactionID, d.Date.Format("2006-01-02"), d.Description, d.Amount.StringFixed(2))
	}
	printPosting(ctx, e, p)
	pterm.Success.Printf("Posted transaction #%d (%s)\n", res.TransactionID, res.Reference)
	return nil
}

func printPosting(ctx context.Context, e *env, p model.Posting) {
	data := pterm.TableData{{"Account", "Debit", "Credit", "Memo"}}
	for _, l := range p.Lines {
		name := "#" + strconv.FormatInt(l.AccountID, 10)
		if a, err := e.store.AccountByID(ctx, l.AccountID); err == nil {
			name = a.Code + " " + a.Name
		}
		debit, credit := "", ""
		if l.Amount.IsNegative() {
			credit = l.Amount.Neg().StringFixed(2)
		} else {
			debit = l.Amount.StringFixed(2)
		}
		data = append(data, []string{name, debit, credit, l.Memo})
	}
	pterm.DefaultSection.Printf("%s  %s", p.Date.Format("2006-01-02"), p.Description)
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func newPostExpenseCommand(opts *rootOptions) *cobra.Command {
	var cashCode, categoryCode, dateStr, amountStr, description string
	var vendor, job, installer int64
	var income, cleared bool

	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Post an expense (or with --income, income) against a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd, opts, cashCode, func(ctx context.Context, e *env, b *posting.Builder, cash model.Account) (model.Posting, error) {
				date, err := parseDateOrToday("date", dateStr)
				if err != nil {
					return model.Posting{}, err
				}
				amount, err := parseMoney("amount", amountStr)
				if err != nil {
					return model.Posting{}, err
				}
				if !amount.IsPositive() {
					return model.Posting{}, model.ValidationError{Field: "amount", Description: "must be greater than zero"}
				}
				category, err := e.account(ctx, categoryCode)
				if err != nil {
					return model.Posting{}, err
				}
				if !category.Class().IsCategory() {
					return model.Posting{}, model.ValidationError{Field: "category", Description: fmt.Sprintf("%s is not an income or expense account", category.Code)}
				}
				if !income {
					amount = amount.Neg()
				}
				status := model.BankPending
				if cleared {
					status = model.BankPosted
				}
				return b.NewEntry(cash.ID, model.ReviewTransaction{
					ClassificationResult: model.ClassificationResult{
						Candidate:        model.CandidateTransaction{Date: date, Description: description, Amount: amount, BankStatus: status},
						NormalizedAmount: amount,
						MatchType:        model.MatchNew,
						BankStatus:       status,
					},
					Overrides: model.Overrides{AccountID: category.ID, VendorID: vendor, JobID: job, InstallerID: installer},
				})
			})
		},
	}
	cmd.Flags().StringVar(&cashCode, "account", "", "bank or credit card account code (required)")
	cmd.Flags().StringVar(&categoryCode, "category", "", "income or expense account code (required)")
	cmd.Flags().StringVar(&amountStr, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&description, "description", "", "description (required)")
	cmd.Flags().Int64Var(&vendor, "vendor", 0, "vendor id")
	cmd.Flags().Int64Var(&job, "job", 0, "job id")
	cmd.Flags().Int64Var(&installer, "installer", 0, "installer id")
	cmd.Flags().BoolVar(&income, "income", false, "money in instead of out")
	cmd.Flags().BoolVar(&cleared, "cleared", false, "post as already cleared")
	for _, f := range []string{"account", "category", "amount", "description"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newPostAcquisitionCommand(opts *rootOptions) *cobra.Command {
	var cashCode, dateStr, price, closing, loan, description string
	var dealID int64

	cmd := &cobra.Command{
		Use:   "acquisition",
		Short: "Post the purchase closing of a flip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd, opts, cashCode, func(ctx context.Context, e *env, b *posting.Builder, cash model.Account) (model.Posting, error) {
				in := posting.AcquisitionInput{CashAccountID: cash.ID, Description: description}
				var err error
				if in.Deal, err = e.store.Deal(ctx, dealID); err != nil {
					return model.Posting{}, err
				}
				if in.Date, err = parseDateOrToday("date", dateStr); err != nil {
					return model.Posting{}, err
				}
				if in.PurchasePrice, err = parseMoney("price", price); err != nil {
					return model.Posting{}, err
				}
				if in.ClosingCosts, err = parseMoney("closing", closing); err != nil {
					return model.Posting{}, err
				}
				if in.LoanAmount, err = parseMoney("loan", loan); err != nil {
					return model.Posting{}, err
				}
				return b.Acquisition(in)
			})
		},
	}
	cmd.Flags().Int64Var(&dealID, "deal", 0, "deal id (required)")
	cmd.Flags().StringVar(&cashCode, "account", "", "bank account paying cash to close (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "closing date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&price, "price", "", "purchase price (required)")
	cmd.Flags().StringVar(&closing, "closing", "", "closing costs")
	cmd.Flags().StringVar(&loan, "loan", "", "financed amount")
	cmd.Flags().StringVar(&description, "description", "", "description")
	for _, f := range []string{"deal", "account", "price"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newPostSaleCommand(opts *rootOptions) *cobra.Command {
	var cashCode, dateStr, price, selling, description string
	var dealID int64

	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Post the sale closing of a flip, paying off its loan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd, opts, cashCode, func(ctx context.Context, e *env, b *posting.Builder, cash model.Account) (model.Posting, error) {
				in := posting.SaleInput{CashAccountID: cash.ID, Description: description}
				var err error
				if in.Deal, err = e.store.Deal(ctx, dealID); err != nil {
					return model.Posting{}, err
				}
				if in.Date, err = parseDateOrToday("date", dateStr); err != nil {
					return model.Posting{}, err
				}
				if in.SalePrice, err = parseMoney("price", price); err != nil {
					return model.Posting{}, err
				}
				if in.SellingCosts, err = parseMoney("selling-costs", selling); err != nil {
					return model.Posting{}, err
				}
				return b.Sale(ctx, in)
			})
		},
	}
	cmd.Flags().Int64Var(&dealID, "deal", 0, "deal id (required)")
	cmd.Flags().StringVar(&cashCode, "account", "", "bank account receiving proceeds (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "closing date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&price, "price", "", "sale price (required)")
	cmd.Flags().StringVar(&selling, "selling-costs", "", "commissions and closing costs")
	cmd.Flags().StringVar(&description, "description", "", "description")
	for _, f := range []string{"deal", "account", "price"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newPostRehabCommand(opts *rootOptions) *cobra.Command {
	var cashCode, dateStr, costType, amountStr, description string
	var dealID, categoryID, vendor, installer, job int64
	var refund bool

	cmd := &cobra.Command{
		Use:   "rehab",
		Short: "Post a rehab cost (L labor, M material, S service, I inspection, H holding)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd, opts, cashCode, func(ctx context.Context, e *env, b *posting.Builder, cash model.Account) (model.Posting, error) {
				ct, err := posting.ParseCostType(costType)
				if err != nil {
					return model.Posting{}, err
				}
				date, err := parseDateOrToday("date", dateStr)
				if err != nil {
					return model.Posting{}, err
				}
				amount, err := parseMoney("amount", amountStr)
				if err != nil {
					return model.Posting{}, err
				}
				return b.Rehab(posting.RehabInput{
					CashAccountID:   cash.ID,
					Date:            date,
					CostType:        ct,
					Amount:          amount,
					Refund:          refund,
					RehabCategoryID: categoryID,
					DealID:          dealID,
					JobID:           job,
					VendorID:        vendor,
					InstallerID:     installer,
					Description:     description,
				})
			})
		},
	}
	cmd.Flags().StringVar(&cashCode, "account", "", "bank or credit card account code (required)")
	cmd.Flags().StringVar(&costType, "type", "", "cost type L, M, S, I or H (required)")
	cmd.Flags().StringVar(&amountStr, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "rehab category id (required)")
	cmd.Flags().Int64Var(&dealID, "deal", 0, "deal id")
	cmd.Flags().Int64Var(&vendor, "vendor", 0, "vendor id (material and service)")
	cmd.Flags().Int64Var(&installer, "installer", 0, "installer id (labor)")
	cmd.Flags().Int64Var(&job, "job", 0, "job id")
	cmd.Flags().BoolVar(&refund, "refund", false, "post a refund")
	cmd.Flags().StringVar(&description, "description", "", "description")
	for _, f := range []string{"account", "type", "amount", "category"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newPostMortgageCommand(opts *rootOptions) *cobra.Command {
	var cashCode, dateStr, total, principal, interest, escrow, description string
	var dealID int64
	var auto bool

	cmd := &cobra.Command{
		Use:   "mortgage",
		Short: "Post a mortgage payment split into principal, interest and escrow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd, opts, cashCode, func(ctx context.Context, e *env, b *posting.Builder, cash model.Account) (model.Posting, error) {
				deal, err := e.store.Deal(ctx, dealID)
				if err != nil {
					return model.Posting{}, err
				}
				date, err := parseDateOrToday("date", dateStr)
				if err != nil {
					return model.Posting{}, err
				}
				tot, err := parseMoney("total", total)
				if err != nil {
					return model.Posting{}, err
				}

				var in posting.MortgageInput
				if auto {
					split, err := autoSplit(cmd, deal, date, tot, escrow)
					if err != nil {
						return model.Posting{}, err
					}
					in = split.Input(deal, cash.ID, date, tot)
				} else {
					in = posting.MortgageInput{Deal: deal, CashAccountID: cash.ID, Date: date, Total: tot}
					if in.Principal, err = parseMoney("principal", principal); err != nil {
						return model.Posting{}, err
					}
					if in.Interest, err = parseMoney("interest", interest); err != nil {
						return model.Posting{}, err
					}
					if in.Escrow, err = parseMoney("escrow", escrow); err != nil {
						return model.Posting{}, err
					}
				}
				in.Description = description
				return b.Mortgage(in)
			})
		},
	}
	cmd.Flags().Int64Var(&dealID, "deal", 0, "deal id (required)")
	cmd.Flags().StringVar(&cashCode, "account", "", "bank account paying (required)")
	cmd.Flags().StringVar(&dateStr, "date", "", "payment date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&total, "total", "", "total payment (required)")
	cmd.Flags().StringVar(&principal, "principal", "", "principal portion")
	cmd.Flags().StringVar(&interest, "interest", "", "interest portion")
	cmd.Flags().StringVar(&escrow, "escrow", "", "escrow portion")
	cmd.Flags().BoolVar(&auto, "auto", false, "derive principal and interest from the amortization schedule")
	cmd.Flags().StringVar(&description, "description", "", "description")
	for _, f := range []string{"deal", "account", "total"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
