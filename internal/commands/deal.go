package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flipledger/flipledger/internal/ledger"
	"github.com/flipledger/flipledger/internal/model"
)

func newDealCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Manage flip deals",
	}
	cmd.AddCommand(newDealAddCommand(opts))
	return cmd
}

func newDealAddCommand(opts *rootOptions) *cobra.Command {
	var name, assetCode, loanCode, loanAmount, rate, closeStr, firstStr string
	var term int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a flip deal, creating its asset and loan accounts if needed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			d := model.Deal{Name: name, TermMonths: term}
			if d.CloseDate, err = parseDate("close", closeStr); err != nil {
				return err
			}
			if firstStr != "" {
				if d.FirstPaymentDate, err = parseDate("first-payment", firstStr); err != nil {
					return err
				}
			}
			if d.OriginalLoan, err = parseMoney("loan-amount", loanAmount); err != nil {
				return err
			}
			if d.AnnualRate, err = parseDecimal("rate", rate); err != nil {
				return err
			}

			asset, err := ensureAccount(ctx, e, assetCode, name+" property", model.ClassRealEstateAsset, model.AccountTypeAsset)
			if err != nil {
				return err
			}
			d.AssetAccountID = asset.ID
			if loanCode != "" {
				loan, err := ensureAccount(ctx, e, loanCode, name+" loan", model.ClassRealEstateLoan, model.AccountTypeLiability)
				if err != nil {
					return err
				}
				d.LoanAccountID = loan.ID
			}

			id, err := e.store.CreateDeal(ctx, d)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Added deal #%d %s (asset %s)\n", id, name, asset.Code)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "deal name, usually the property address (required)")
	cmd.Flags().StringVar(&assetCode, "asset", "", "real-estate asset account code, 63xxx (required)")
	cmd.Flags().StringVar(&loanCode, "loan", "", "real-estate loan account code, 64xxx")
	cmd.Flags().StringVar(&loanAmount, "loan-amount", "", "original loan amount")
	cmd.Flags().StringVar(&rate, "rate", "", "annual interest rate in percent")
	cmd.Flags().IntVar(&term, "term", 0, "loan term in months")
	cmd.Flags().StringVar(&closeStr, "close", "", "purchase close date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&firstStr, "first-payment", "", "first loan payment date (default one month after close)")
	for _, f := range []string{"name", "asset", "close"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// ensureAccount returns the account with code, creating it when missing.
func ensureAccount(ctx context.Context, e *env, code, name string, class model.AccountClass, typ model.AccountType) (model.Account, error) {
	if model.ClassifyCode(code) != class {
		return model.Account{}, model.ValidationError{Field: "account", Description: fmt.Sprintf("%s is not a %s code", code, class)}
	}
	a, err := e.store.AccountByCode(ctx, code)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ledger.ErrNotFound) {
		return model.Account{}, err
	}
	a = model.Account{Code: code, Name: name, Type: typ, Purpose: model.PurposeBusiness, Active: true}
	if a.ID, err = e.store.CreateAccount(ctx, a); err != nil {
		return model.Account{}, err
	}
	pterm.Info.Printf("Created account %s %s\n", code, name)
	return a, nil
}
