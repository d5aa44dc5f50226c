package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flipledger/flipledger/internal/commit"
	"github.com/flipledger/flipledger/internal/importer"
	"github.com/flipledger/flipledger/internal/model"
	"github.com/flipledger/flipledger/internal/review"
	"github.com/flipledger/flipledger/internal/workflow"
)

func newReconcileCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a bank or card statement against the ledger",
	}
	cmd.AddCommand(
		newReconcileProcessCommand(opts),
		newReconcileShowCommand(opts),
		newReconcileSelectCommand(opts),
		newReconcileSetCommand(opts),
		newReconcileCommitCommand(opts),
		newReconcileCancelCommand(opts),
		newReconcileStatusCommand(opts),
		newReconcileInboxCommand(opts),
	)
	return cmd
}

// withSession opens the project, restores the review and runs fn.
func withSession(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, e *env, s *workflow.Session) error) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	s, err := e.session(cmd.Context())
	if err != nil {
		return err
	}
	return fn(cmd.Context(), e, s)
}

func newReconcileProcessCommand(opts *rootOptions) *cobra.Command {
	var accountCode, file, format string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Classify a statement file and start a review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, e *env, s *workflow.Session) error {
				account, err := e.cashAccount(ctx, accountCode)
				if err != nil {
					return err
				}
				if format == "" {
					format = formatFor(file)
				}
				candidates, err := importer.DefaultRegistry().ParseFile(format, file)
				if err != nil {
					return err
				}

				snap, err := s.Process(ctx, account, candidates, file)
				if err != nil {
					return err
				}
				printWarnings(snap.Warnings)
				if len(snap.ReviewTransactions) == 0 {
					pterm.Success.Printf("Nothing to review: %d statement lines, %d already reconciled\n", len(candidates), snap.HiddenStats.Total())
					return nil
				}
				printReview(snap)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&accountCode, "account", "", "bank or credit card account code (required)")
	cmd.Flags().StringVar(&file, "file", "", "statement file (required)")
	cmd.Flags().StringVar(&format, "format", "", "statement format: chase, csv or ofx (default from file extension)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func formatFor(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".ofx", ".qfx":
		return "ofx"
	}
	return "csv"
}

func newReconcileShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the review in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(_ context.Context, _ *env, s *workflow.Session) error {
				snap, err := s.Review()
				if err != nil {
					return err
				}
				printWarnings(snap.Warnings)
				printReview(snap)
				return nil
			})
		},
	}
}

func newReconcileSelectCommand(opts *rootOptions) *cobra.Command {
	var off, all bool

	cmd := &cobra.Command{
		Use:   "select [N...]",
		Short: "Select (or with --off, deselect) review items for commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("give item numbers or --all")
			}
			indexes, err := parseIndexes(args)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(_ context.Context, _ *env, s *workflow.Session) error {
				err := s.Update(func(set *review.Set, _ model.ReferenceData) error {
					if all {
						set.SelectAll(!off)
						return nil
					}
					for _, i := range indexes {
						if err := set.Select(i, !off); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
				snap, _ := s.Review()
				pterm.Success.Printf("%d of %d items selected\n", len(snap.Set().Selected()), len(snap.ReviewTransactions))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "deselect instead")
	cmd.Flags().BoolVar(&all, "all", false, "apply to every item")
	return cmd
}

func parseIndexes(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, model.ValidationError{Field: "item", Description: fmt.Sprintf("%q is not a number", a)}
		}
		out = append(out, n-1)
	}
	return out, nil
}

func newReconcileSetCommand(opts *rootOptions) *cobra.Command {
	var accountCode, description, cleared string
	var vendor, job, installer int64

	cmd := &cobra.Command{
		Use:   "set N",
		Short: "Override the classification of one review item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indexes, err := parseIndexes(args)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, e *env, s *workflow.Session) error {
				o := model.Overrides{VendorID: vendor, JobID: job, InstallerID: installer, Description: description}
				if accountCode != "" {
					a, err := e.account(ctx, accountCode)
					if err != nil {
						return err
					}
					o.AccountID = a.ID
				}
				if cleared != "" {
					v, err := strconv.ParseBool(cleared)
					if err != nil {
						return model.ValidationError{Field: "cleared", Description: fmt.Sprintf("%q is not true or false", cleared)}
					}
					o.Cleared = &v
				}
				err := s.Update(func(set *review.Set, ref model.ReferenceData) error {
					return set.Override(indexes[0], o, ref)
				})
				if err != nil {
					return err
				}
				pterm.Success.Printf("Updated item %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&accountCode, "account", "", "category account code")
	cmd.Flags().Int64Var(&vendor, "vendor", 0, "vendor id")
	cmd.Flags().Int64Var(&job, "job", 0, "job id")
	cmd.Flags().Int64Var(&installer, "installer", 0, "installer id")
	cmd.Flags().StringVar(&description, "description", "", "ledger description")
	cmd.Flags().StringVar(&cleared, "cleared", "", "post as cleared: true or false")
	return cmd
}

func newReconcileCommitCommand(opts *rootOptions) *cobra.Command {
	var archive bool

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Write the selected review items to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, e *env, s *workflow.Session) error {
				snap, err := s.Review()
				if err != nil {
					return err
				}
				sum, err := s.Commit(ctx)
				printSummary(sum, snap.ReviewTransactions)
				if err != nil {
					return err
				}
				if archive && s.State() == workflow.StateIdle && importer.InInbox(e.cfg.Dir, snap.SourceFile) {
					if err := importer.MarkProcessed(e.cfg.Dir, filepath.Base(snap.SourceFile)); err != nil {
						return err
					}
					pterm.Info.Printf("Moved %s to import/processed\n", filepath.Base(snap.SourceFile))
				}
				if len(sum.Failures) > 0 {
					return fmt.Errorf("%d items failed", len(sum.Failures))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", true, "move an inbox statement to import/processed after commit")
	return cmd
}

func newReconcileCancelCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Discard the review in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(_ context.Context, _ *env, s *workflow.Session) error {
				if err := s.Cancel(); err != nil {
					return err
				}
				pterm.Success.Println("Review discarded")
				return nil
			})
		},
	}
}

func newReconcileStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the workflow state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(_ context.Context, _ *env, s *workflow.Session) error {
				pterm.Info.Printf("State: %s\n", s.State())
				snap, err := s.Review()
				if errors.Is(err, workflow.ErrNoReview) {
					return nil
				}
				if err != nil {
					return err
				}
				pterm.Info.Printf("Run %s from %s, %d items (%d selected), saved %s\n",
					snap.RunID, snap.SourceFile, len(snap.ReviewTransactions), len(snap.Set().Selected()),
					snap.SavedAt.Local().Format("2006-01-02 15:04"))
				return nil
			})
		},
	}
}

func newReconcileInboxCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "List statement files waiting in import/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			files, err := importer.Scan(e.cfg.Dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				pterm.Info.Println("No statements in import/")
				return nil
			}
			data := pterm.TableData{{"File", "Format", "Size"}}
			for _, f := range files {
				data = append(data, []string{f.Name, formatFor(f.Name), strconv.FormatInt(f.Size, 10)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		pterm.Warning.Println(w)
	}
}

func printReview(snap review.Snapshot) {
	ref := snap.ReferenceData
	data := pterm.TableData{{"#", "Sel", "Date", "Description", "Amount", "Bank", "Match", "Conf", "Category"}}
	for i, rt := range snap.ReviewTransactions {
		sel := " "
		if rt.Selected {
			sel = "x"
		}
		category := "-"
		if id := rt.CategoryAccountID(); id != 0 {
			category = fmt.Sprintf("#%d", id)
			if a, ok := ref.AccountByID(id); ok {
				category = a.Code + " " + a.Name
			}
		}
		if v, ok := ref.VendorByID(rt.VendorID()); ok {
			category += " / " + v.Name
		}
		match := string(rt.MatchType)
		if rt.IsAnomaly() {
			match = pterm.Red("cleared in ledger")
		}
		if rt.MatchType == model.MatchTipAdjustment && rt.OriginalAmount.Valid {
			match += " (was " + rt.OriginalAmount.Decimal.StringFixed(2) + ")"
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			sel,
			rt.Candidate.Date.Format("2006-01-02"),
			rt.Description(),
			rt.NormalizedAmount.StringFixed(2),
			string(rt.BankStatus),
			match,
			string(rt.Confidence),
			category,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if h := snap.HiddenStats; h.Total() > 0 {
		pterm.Info.Printf("Hidden: %d pending on both sides, %d already cleared\n", h.BothPending, h.AlreadyCleared)
	}
}

func printSummary(sum commit.Summary, items []model.ReviewTransaction) {
	pterm.DefaultSection.Println("Commit summary")
	_ = pterm.DefaultTable.WithData(pterm.TableData{
		{"Cleared", strconv.Itoa(sum.Cleared)},
		{"Created", strconv.Itoa(sum.Created)},
		{"Tip adjusted", strconv.Itoa(sum.TipAdjusted)},
		{"Skipped", strconv.Itoa(sum.Skipped)},
		{"Failed", strconv.Itoa(len(sum.Failures))},
	}).Render()
	for _, f := range sum.Failures {
		desc := f.Description
		if desc == "" && f.Index < len(items) {
			desc = items[f.Index].Description()
		}
		pterm.Error.Printf("Item %d %s %q: %v\n", f.Index+1, f.Date.Format("2006-01-02"), desc, f.Err)
	}
}
