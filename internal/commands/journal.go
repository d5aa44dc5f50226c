package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flipledger/flipledger/internal/accounts"
	"github.com/flipledger/flipledger/internal/journal"
	"github.com/flipledger/flipledger/internal/model"
)

func newJournalCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Export and audit the ledger journal",
	}
	cmd.AddCommand(newJournalExportCommand(opts))
	cmd.AddCommand(newJournalCheckCommand(opts))
	return cmd
}

// journalRange parses --from/--to; an empty --from means the beginning of time
// and an empty --to means today.
func journalRange(from, to string) (time.Time, time.Time, error) {
	start := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	if from != "" {
		var err error
		if start, err = parseDate("from", from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	end, err := parseDateOrToday("to", to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, model.ValidationError{Field: "to", Description: "must not be before --from"}
	}
	return start, end, nil
}

func newJournalExportCommand(opts *rootOptions) *cobra.Command {
	var from, to, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write ledger lines as journal CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := journalRange(from, to)
			if err != nil {
				return err
			}
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			entries, err := e.store.Journal(cmd.Context(), start, end)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := journal.WriteEntries(w, entries); err != nil {
				return fmt.Errorf("exporting journal: %w", err)
			}
			if out != "" {
				pterm.Success.Printfln("Wrote %d lines to %s", len(entries), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD (default: all)")
	cmd.Flags().StringVar(&to, "to", "", "last date YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newJournalCheckCommand(opts *rootOptions) *cobra.Command {
	var from, to, file string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Audit the ledger (or an exported journal CSV) for integrity problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := journalRange(from, to)
			if err != nil {
				return err
			}
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			chart, err := e.store.Accounts(ctx)
			if err != nil {
				return err
			}

			var entries []model.LedgerEntry
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("opening %s: %w", file, err)
				}
				defer f.Close()
				if entries, err = journal.ReadEntries(f); err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
			} else if entries, err = e.store.Journal(ctx, start, end); err != nil {
				return err
			}

			problems := journal.Check(entries, accounts.NewService(chart))
			if len(problems) == 0 {
				pterm.Success.Printfln("%d lines checked, no problems", len(entries))
				return nil
			}
			for _, p := range problems {
				pterm.Error.Println(p.Error())
			}
			return model.InvariantError{
				Invariant:   "journal",
				Description: fmt.Sprintf("%d problem(s) in %d lines", len(problems), len(entries)),
			}
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date YYYY-MM-DD (default: all)")
	cmd.Flags().StringVar(&to, "to", "", "last date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&file, "file", "", "check a journal CSV instead of the database")
	return cmd
}
